package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailroomhq/mailroom/internal/auditlog"
	"github.com/mailroomhq/mailroom/internal/metrics"
	"github.com/mailroomhq/mailroom/internal/transport"
)

// defaultRecentLimit applies when the caller does not cap the
// recent-emails listing.
const defaultRecentLimit = 5

// Service runs the send pipeline and the sent-mail listings.
type Service struct {
	sender   transport.Sender
	reader   transport.SentReader // may be nil when no sent mailbox is configured
	resolver *Resolver
	audit    *auditlog.Store
	logger   *slog.Logger
}

// NewService creates a mailer service.
func NewService(sender transport.Sender, reader transport.SentReader, resolver *Resolver, audit *auditlog.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sender:   sender,
		reader:   reader,
		resolver: resolver,
		audit:    audit,
		logger:   logger,
	}
}

// Send runs the full pipeline: validate, resolve attachments, compose
// the manifest, dispatch, and record the audit entry. It is total from
// the caller's perspective: every fault comes back as a SendResult.
func (s *Service) Send(ctx context.Context, req *SendRequest) SendResult {
	if err := ValidateMessage(req.Recipient, req.Subject, req.Body); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("invalid").Inc()
		return SendResult{Success: false, Message: err.Error()}
	}

	resolved := s.resolver.Resolve(ctx, req.Attachments)
	finalBody := ComposeBody(req.Body, resolved)

	attachments := make([]transport.Attachment, 0, len(resolved))
	for _, att := range resolved {
		attachments = append(attachments, transport.Attachment{
			Filename:    att.Name,
			ContentType: att.ContentType,
			Content:     att.Data,
		})
	}

	msg := &transport.Message{
		To:          req.Recipient,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		Subject:     req.Subject,
		Body:        finalBody,
		Attachments: attachments,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("email dispatch failed",
			slog.String("to", req.Recipient),
			slog.String("error", err.Error()),
		)
		metrics.EmailsSentTotal.WithLabelValues("error").Inc()
		return SendResult{Success: false, Message: "发送失败：" + err.Error()}
	}

	// Audit logging is best-effort: a persistence fault never turns a
	// delivered email into a failure.
	if err := s.audit.Append(ctx, req.Recipient, req.Subject, finalBody, len(resolved)); err != nil {
		s.logger.Error("failed to record email log", slog.String("error", err.Error()))
	}

	s.logger.Info("email sent",
		slog.String("to", req.Recipient),
		slog.Int("attachments", len(resolved)),
	)
	metrics.EmailsSentTotal.WithLabelValues("ok").Inc()

	message := "邮件发送成功！"
	if len(resolved) > 0 {
		message += fmt.Sprintf(" (包含%d个附件)", len(resolved))
	}
	return SendResult{Success: true, Message: message}
}

// RecentEmails lists recently sent messages from the sent mailbox,
// falling back to the audit log when the mailbox is unavailable.
func (s *Service) RecentEmails(ctx context.Context, max int) []RecentEmail {
	if max <= 0 {
		max = defaultRecentLimit
	}

	if s.reader != nil {
		sent, err := s.reader.Recent(ctx, max)
		if err == nil {
			emails := make([]RecentEmail, 0, len(sent))
			for _, m := range sent {
				emails = append(emails, RecentEmail{
					To:      m.To,
					Subject: m.Subject,
					Date:    m.Date.UTC().Format(time.RFC3339),
					Body:    m.Body,
				})
			}
			return emails
		}
		s.logger.Warn("sent mailbox unavailable, falling back to email log",
			slog.String("error", err.Error()),
		)
	}

	logs := s.audit.List(ctx, max)
	emails := make([]RecentEmail, 0, len(logs))
	for _, l := range logs {
		emails = append(emails, RecentEmail{
			To:      l.To,
			Subject: l.Subject,
			Date:    l.Date,
			Body:    l.Body,
		})
	}
	return emails
}

// Logs lists the audit log entries, newest first.
func (s *Service) Logs(ctx context.Context, max int) []auditlog.RenderedEntry {
	return s.audit.List(ctx, max)
}
