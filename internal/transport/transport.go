// Package transport holds the mail transport collaborators: an outgoing
// sender (SES) and a sent-mailbox reader (IMAP).
package transport

import (
	"context"
	"time"
)

// Message is an outgoing email handed to a Sender. Cc and Bcc are
// comma-separated address lists; empty strings mean the header is
// omitted entirely.
type Message struct {
	To          string
	Cc          string
	Bcc         string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Attachment is a binary part attached to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Sender delivers outgoing messages.
type Sender interface {
	// Send delivers the message. It returns an error when delivery
	// fails; it never partially delivers.
	Send(ctx context.Context, msg *Message) error
}

// SentMessage is a message read back from the sent mailbox.
type SentMessage struct {
	To      string
	Subject string
	Date    time.Time
	Body    string
}

// SentReader reads recently sent messages from the mail account.
type SentReader interface {
	// Recent returns up to max sent messages, newest first.
	Recent(ctx context.Context, max int) ([]SentMessage, error)
}
