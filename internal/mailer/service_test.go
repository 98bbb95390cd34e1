package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mailroomhq/mailroom/internal/auditlog"
	"github.com/mailroomhq/mailroom/internal/properties"
	"github.com/mailroomhq/mailroom/internal/storage"
	"github.com/mailroomhq/mailroom/internal/transport"
)

// fakeSender records dispatched messages and optionally fails.
type fakeSender struct {
	sent []*transport.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg *transport.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeReader serves canned sent-mailbox listings or fails.
type fakeReader struct {
	messages []transport.SentMessage
	err      error
}

func (f *fakeReader) Recent(ctx context.Context, max int) ([]transport.SentMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.messages) > max {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func newTestService(sender transport.Sender, reader transport.SentReader, objects map[string]*storage.FetchedObject) (*Service, *auditlog.Store) {
	audit := auditlog.New(properties.NewMemoryStore(), nil)
	resolver := NewResolver(&fakeFetcher{objects: objects}, nil)
	return NewService(sender, reader, resolver, audit, nil), audit
}

func TestSendPipeline(t *testing.T) {
	sender := &fakeSender{}
	service, _ := newTestService(sender, nil, map[string]*storage.FetchedObject{
		"k1": {Object: storage.Object{ID: "k1", Name: "doc.pdf", URL: "https://x", SizeBytes: 1048576, ContentType: "application/pdf"}, Data: []byte("pdf-bytes")},
	})

	result := service.Send(context.Background(), &SendRequest{
		Recipient:   "user@example.com",
		Subject:     "Report",
		Body:        "Hello",
		Attachments: []AttachmentRef{{ID: "k1"}},
	})

	if !result.Success {
		t.Fatalf("Send() failed: %s", result.Message)
	}
	if result.Message != "邮件发送成功！ (包含1个附件)" {
		t.Errorf("Message = %q", result.Message)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("dispatched %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	wantBody := "Hello\n\n---\n📎 附件列表：\n• doc.pdf (1.00 MB) - https://x\n---\n"
	if msg.Body != wantBody {
		t.Errorf("dispatched body = %q, want %q", msg.Body, wantBody)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "doc.pdf" {
		t.Errorf("dispatched attachments = %+v", msg.Attachments)
	}
	if string(msg.Attachments[0].Content) != "pdf-bytes" {
		t.Errorf("attachment content = %q", msg.Attachments[0].Content)
	}

	// The audit entry carries the manifest-bearing body and the count.
	logs := service.Logs(context.Background(), 10)
	if len(logs) != 1 {
		t.Fatalf("audit log has %d entries, want 1", len(logs))
	}
	if logs[0].To != "user@example.com" || logs[0].Attachments != 1 {
		t.Errorf("audit entry = %+v", logs[0])
	}
	if !strings.Contains(logs[0].Body, "附件列表") {
		t.Errorf("audit body excerpt missing manifest: %q", logs[0].Body)
	}
}

func TestSendWithoutAttachments(t *testing.T) {
	sender := &fakeSender{}
	service, _ := newTestService(sender, nil, nil)

	result := service.Send(context.Background(), &SendRequest{
		Recipient: "user@example.com",
		Subject:   "Plain",
		Body:      "No files here",
	})

	if !result.Success || result.Message != "邮件发送成功！" {
		t.Fatalf("Send() = %+v", result)
	}
	if sender.sent[0].Body != "No files here" {
		t.Errorf("body = %q, want unchanged", sender.sent[0].Body)
	}
}

func TestSendValidationFailureSkipsDispatch(t *testing.T) {
	sender := &fakeSender{}
	service, _ := newTestService(sender, nil, nil)

	result := service.Send(context.Background(), &SendRequest{
		Recipient: "bad-address",
		Subject:   "Hi",
		Body:      "Body",
	})

	if result.Success {
		t.Fatal("invalid recipient accepted")
	}
	if result.Message != "收件人邮箱格式不正确" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(sender.sent) != 0 {
		t.Errorf("dispatched %d messages, want 0", len(sender.sent))
	}
	if logs := service.Logs(context.Background(), 10); len(logs) != 0 {
		t.Errorf("failed send must not be logged, got %d entries", len(logs))
	}
}

func TestSendTransportFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	service, _ := newTestService(sender, nil, nil)

	result := service.Send(context.Background(), &SendRequest{
		Recipient: "user@example.com",
		Subject:   "Hi",
		Body:      "Body",
	})

	if result.Success {
		t.Fatal("transport failure reported as success")
	}
	if result.Message != "发送失败：connection refused" {
		t.Errorf("Message = %q", result.Message)
	}
	if logs := service.Logs(context.Background(), 10); len(logs) != 0 {
		t.Errorf("failed send must not be logged, got %d entries", len(logs))
	}
}

func TestRecentEmailsFromMailbox(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reader := &fakeReader{messages: []transport.SentMessage{
		{To: "a@example.com", Subject: "First", Date: when, Body: "hello"},
	}}
	service, _ := newTestService(&fakeSender{}, reader, nil)

	emails := service.RecentEmails(context.Background(), 5)
	if len(emails) != 1 {
		t.Fatalf("RecentEmails() returned %d, want 1", len(emails))
	}
	if emails[0].Date != "2024-03-01T12:00:00Z" {
		t.Errorf("Date = %q", emails[0].Date)
	}
}

func TestRecentEmailsFallsBackToLog(t *testing.T) {
	reader := &fakeReader{err: errors.New("imap down")}
	sender := &fakeSender{}
	service, _ := newTestService(sender, reader, nil)

	for _, subject := range []string{"one", "two"} {
		service.Send(context.Background(), &SendRequest{
			Recipient: "user@example.com",
			Subject:   subject,
			Body:      "Body",
		})
	}

	emails := service.RecentEmails(context.Background(), 5)
	if len(emails) != 2 {
		t.Fatalf("RecentEmails() returned %d, want 2 from the log", len(emails))
	}
	if emails[0].Subject != "two" {
		t.Errorf("fallback order: first subject = %q, want newest", emails[0].Subject)
	}
}

func TestRecentEmailsDefaultLimit(t *testing.T) {
	var messages []transport.SentMessage
	for i := 0; i < 8; i++ {
		messages = append(messages, transport.SentMessage{To: "a@example.com", Subject: "s"})
	}
	service, _ := newTestService(&fakeSender{}, &fakeReader{messages: messages}, nil)

	if got := service.RecentEmails(context.Background(), 0); len(got) != 5 {
		t.Errorf("RecentEmails(0) returned %d, want default 5", len(got))
	}
}
