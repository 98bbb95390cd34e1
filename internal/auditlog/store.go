// Package auditlog keeps the bounded history of sent emails in the
// properties store. The whole log is one JSON document under a single
// deployment-scoped key; every append rewrites it, newest entry first,
// truncated to the 50 most recent.
package auditlog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mailroomhq/mailroom/internal/properties"
)

const (
	// logKey is the deployment-scoped properties key holding the log.
	logKey = "emailLogs"

	// MaxEntries is the retention bound: the log never exceeds this
	// length after a write.
	MaxEntries = 50

	// excerptLen is how many characters of the final body are kept.
	excerptLen = 200

	// defaultListLimit applies when the caller does not cap the listing.
	defaultListLimit = 10

	// dateDisplayLayout renders stored timestamps for display.
	dateDisplayLayout = "2006-01-02 15:04:05"
)

// Entry is one sent-email record as persisted.
type Entry struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"` // first 200 chars of the final body
	Attachments int    `json:"attachments"`
	Timestamp   string `json:"timestamp"` // ISO 8601
}

// RenderedEntry is an Entry prepared for display: the timestamp is
// formatted, the body excerpt is returned verbatim.
type RenderedEntry struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Attachments int    `json:"attachments"`
	Date        string `json:"date"`
}

// Store is the audit log over a properties store.
type Store struct {
	props  properties.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates an audit log store.
func New(props properties.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		props:  props,
		logger: logger,
		now:    time.Now,
	}
}

// Append records a sent email at the head of the log and truncates the
// log to MaxEntries. The whole structure is persisted in one write.
func (s *Store) Append(ctx context.Context, to, subject, finalBody string, attachmentCount int) error {
	entry := Entry{
		To:          to,
		Subject:     subject,
		Body:        excerpt(finalBody),
		Attachments: attachmentCount,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	}

	return s.props.Update(ctx, logKey, func(current string, exists bool) (string, error) {
		var entries []Entry
		if exists && current != "" {
			// A corrupt log is dropped rather than blocking new writes.
			if err := json.Unmarshal([]byte(current), &entries); err != nil {
				s.logger.Warn("discarding unreadable email log", slog.String("error", err.Error()))
				entries = nil
			}
		}

		entries = append([]Entry{entry}, entries...)
		if len(entries) > MaxEntries {
			entries = entries[:MaxEntries]
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
}

// List returns up to max rendered entries, newest first. Retrieval is
// best-effort: any read or parse failure yields an empty list.
func (s *Store) List(ctx context.Context, max int) []RenderedEntry {
	if max <= 0 {
		max = defaultListLimit
	}

	current, exists, err := s.props.Get(ctx, logKey)
	if err != nil {
		s.logger.Warn("failed to read email log", slog.String("error", err.Error()))
		return []RenderedEntry{}
	}
	if !exists || current == "" {
		return []RenderedEntry{}
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(current), &entries); err != nil {
		s.logger.Warn("failed to parse email log", slog.String("error", err.Error()))
		return []RenderedEntry{}
	}

	if len(entries) > max {
		entries = entries[:max]
	}

	rendered := make([]RenderedEntry, 0, len(entries))
	for _, e := range entries {
		rendered = append(rendered, RenderedEntry{
			To:          e.To,
			Subject:     e.Subject,
			Body:        e.Body,
			Attachments: e.Attachments,
			Date:        formatTimestamp(e.Timestamp),
		})
	}
	return rendered
}

// excerpt keeps the first excerptLen characters of the body.
func excerpt(body string) string {
	runes := []rune(body)
	if len(runes) > excerptLen {
		runes = runes[:excerptLen]
	}
	return string(runes)
}

// formatTimestamp renders an ISO 8601 timestamp for display, falling
// back to the raw value when it does not parse.
func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(dateDisplayLayout)
}
