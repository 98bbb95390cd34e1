// Package upload is the file upload gateway: it accepts base64 payloads
// from the front-end, enforces the per-file size ceiling, stores them in
// the current day's attachment folder, and shares them by link.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mailroomhq/mailroom/internal/metrics"
	"github.com/mailroomhq/mailroom/internal/storage"
)

const (
	// MaxFileSize is the per-file ceiling for uploaded attachments.
	MaxFileSize = 25 * 1024 * 1024
	// MaxTotalSize is the advertised per-email total, enforced by the
	// front-end when it assembles the attachment list.
	MaxTotalSize = 50 * 1024 * 1024
)

// Result is the outcome of an upload. On success it carries the stored
// object's reference fields.
type Result struct {
	Success  bool   `json:"success"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Message  string `json:"message"`
}

// Limits reports the size ceilings to the front-end.
type Limits struct {
	MaxSize      int64 `json:"maxSize"`
	MaxTotalSize int64 `json:"maxTotalSize"`
}

// AttachmentStore is the slice of the storage backend the gateway
// needs: access probing, object creation, and link sharing.
type AttachmentStore interface {
	CheckAccess(ctx context.Context) error
	Put(ctx context.Context, folder, filename string, data []byte, contentType string) (*storage.Object, error)
	SetPublicRead(ctx context.Context, key string) error
}

// Service implements the upload gateway over the storage backend.
type Service struct {
	storage AttachmentStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates an upload service.
func NewService(st AttachmentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage: st,
		logger:  logger,
		now:     time.Now,
	}
}

// GetLimits returns the configured size ceilings.
func (s *Service) GetLimits() Limits {
	return Limits{MaxSize: MaxFileSize, MaxTotalSize: MaxTotalSize}
}

// Upload validates and stores one base64 payload. The size ceiling is
// checked from the encoded length before any decoding happens, so
// oversized payloads are rejected without the decode cost. All failures
// come back as a structured Result, never an error.
func (s *Service) Upload(ctx context.Context, fileName, base64Payload, mimeType string) Result {
	if err := s.storage.CheckAccess(ctx); err != nil {
		s.logger.Warn("upload rejected: storage not authorized", slog.String("error", err.Error()))
		metrics.UploadsTotal.WithLabelValues("unauthorized").Inc()
		return Result{Success: false, Message: "未授权访问存储服务"}
	}

	if EstimatedDecodedSize(base64Payload) > MaxFileSize {
		metrics.UploadsTotal.WithLabelValues("too_large").Inc()
		return Result{Success: false, Message: "文件大小超过25MB限制"}
	}

	data, err := base64.StdEncoding.DecodeString(base64Payload)
	if err != nil {
		s.logger.Warn("upload rejected: payload not valid base64",
			slog.String("file", fileName),
			slog.String("error", err.Error()),
		)
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		return Result{Success: false, Message: "文件上传失败：" + err.Error()}
	}

	folder := storage.DateFolder(s.now())
	obj, err := s.storage.Put(ctx, folder, fileName, data, mimeType)
	if err != nil {
		return s.failure(fileName, err)
	}

	if err := s.storage.SetPublicRead(ctx, obj.ID); err != nil {
		return s.failure(fileName, err)
	}

	s.logger.Info("file uploaded",
		slog.String("key", obj.ID),
		slog.Int64("size", obj.SizeBytes),
	)
	metrics.UploadsTotal.WithLabelValues("ok").Inc()

	return Result{
		Success:  true,
		ID:       obj.ID,
		Name:     obj.Name,
		URL:      obj.URL,
		Size:     obj.SizeBytes,
		MimeType: mimeType,
		Message:  "文件上传成功",
	}
}

func (s *Service) failure(fileName string, err error) Result {
	s.logger.Error("upload failed",
		slog.String("file", fileName),
		slog.String("error", err.Error()),
	)
	if errors.Is(err, storage.ErrNotAuthorized) {
		metrics.UploadsTotal.WithLabelValues("unauthorized").Inc()
		return Result{Success: false, Message: "未授权访问存储服务"}
	}
	metrics.UploadsTotal.WithLabelValues("error").Inc()
	return Result{Success: false, Message: "文件上传失败：" + err.Error()}
}

// EstimatedDecodedSize computes the decoded byte count of a base64
// string from its encoded length and padding, without decoding it.
func EstimatedDecodedSize(payload string) int64 {
	n := int64(len(payload))
	var padding int64
	if strings.HasSuffix(payload, "==") {
		padding = 2
	} else if strings.HasSuffix(payload, "=") {
		padding = 1
	}
	return n*3/4 - padding
}
