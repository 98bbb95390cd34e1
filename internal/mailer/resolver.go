package mailer

import (
	"context"
	"log/slog"

	"github.com/mailroomhq/mailroom/internal/metrics"
	"github.com/mailroomhq/mailroom/internal/storage"
)

// ObjectFetcher fetches a stored object by its storage key.
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) (*storage.FetchedObject, error)
}

// refStatus classifies the outcome of resolving one reference.
type refStatus string

const (
	refResolved refStatus = "resolved"
	refSkipped  refStatus = "skipped"
	refFailed   refStatus = "failed"
)

// refResult is the per-reference outcome: resolved with an attachment,
// skipped (no storage id), or failed with a reason.
type refResult struct {
	ref        AttachmentRef
	status     refStatus
	reason     string
	attachment *ResolvedAttachment
}

// Resolver turns attachment references into mail-ready binary parts.
type Resolver struct {
	fetcher ObjectFetcher
	logger  *slog.Logger
}

// NewResolver creates a resolver over the given fetcher.
func NewResolver(fetcher ObjectFetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Resolve fetches each referenced object and returns the resolvable
// subset in input order. Refs without a storage id are skipped; a fetch
// failure drops that ref, is logged with its reason, and never fails the
// resolve as a whole.
func (r *Resolver) Resolve(ctx context.Context, refs []AttachmentRef) []ResolvedAttachment {
	resolved := make([]ResolvedAttachment, 0, len(refs))
	for _, ref := range refs {
		result := r.resolveOne(ctx, ref)
		metrics.AttachmentsResolvedTotal.WithLabelValues(string(result.status)).Inc()

		switch result.status {
		case refResolved:
			resolved = append(resolved, *result.attachment)
		case refFailed:
			r.logger.Error("attachment resolution failed",
				slog.String("id", ref.ID),
				slog.String("reason", result.reason),
			)
		case refSkipped:
			r.logger.Debug("attachment reference without id skipped")
		}
	}
	return resolved
}

// resolveOne resolves a single reference. Caller hints win over stored
// values; stored values fill the gaps.
func (r *Resolver) resolveOne(ctx context.Context, ref AttachmentRef) refResult {
	if ref.ID == "" {
		return refResult{ref: ref, status: refSkipped}
	}

	obj, err := r.fetcher.Fetch(ctx, ref.ID)
	if err != nil {
		return refResult{ref: ref, status: refFailed, reason: err.Error()}
	}

	name := ref.Name
	if name == "" {
		name = obj.Name
	}
	if name == "" {
		name = "附件"
	}
	url := ref.URL
	if url == "" {
		url = obj.URL
	}
	size := ref.Size
	if size == 0 {
		size = obj.SizeBytes
	}

	return refResult{
		ref:    ref,
		status: refResolved,
		attachment: &ResolvedAttachment{
			Name:        name,
			URL:         url,
			SizeBytes:   size,
			ContentType: obj.ContentType,
			Data:        obj.Data,
		},
	}
}
