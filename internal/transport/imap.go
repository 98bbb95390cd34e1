package transport

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/mailroomhq/mailroom/internal/config"
)

// sentBodyExcerptLen is the number of characters of the plain body kept
// when listing sent messages.
const sentBodyExcerptLen = 100

// IMAPSentReader reads the account's sent mailbox over IMAP. A fresh
// connection is dialed per call; the listing is an occasional
// user-facing lookup, not a hot path.
type IMAPSentReader struct {
	addr     string
	username string
	password string
	mailbox  string
}

// NewIMAPSentReader creates a sent-mailbox reader from mail
// configuration.
func NewIMAPSentReader(cfg *config.MailConfig) *IMAPSentReader {
	mailbox := cfg.SentMailbox
	if mailbox == "" {
		mailbox = "Sent"
	}
	return &IMAPSentReader{
		addr:     cfg.IMAPAddress,
		username: cfg.IMAPUsername,
		password: cfg.IMAPPassword,
		mailbox:  mailbox,
	}
}

// Recent returns up to max messages from the sent mailbox, newest first.
func (r *IMAPSentReader) Recent(ctx context.Context, max int) ([]SentMessage, error) {
	if r.addr == "" {
		return nil, fmt.Errorf("sent mailbox not configured")
	}
	if max <= 0 {
		max = 5
	}

	c, err := client.DialTLS(r.addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(r.username, r.password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	mbox, err := c.Select(r.mailbox, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.mailbox, err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if mbox.Messages > uint32(max) {
		from = mbox.Messages - uint32(max) + 1
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(from, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, max)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, messages)
	}()

	var sent []SentMessage
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		sent = append(sent, SentMessage{
			To:      formatAddresses(msg.Envelope.To),
			Subject: msg.Envelope.Subject,
			Date:    msg.Envelope.Date,
			Body:    bodyExcerpt(msg.GetBody(section)),
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch sent messages: %w", err)
	}

	// Fetch yields ascending sequence numbers; callers want newest first.
	for i, j := 0, len(sent)-1; i < j; i, j = i+1, j-1 {
		sent[i], sent[j] = sent[j], sent[i]
	}
	return sent, nil
}

// formatAddresses joins envelope addresses into a comma-separated list.
func formatAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		parts = append(parts, a.Address())
	}
	return strings.Join(parts, ", ")
}

// bodyExcerpt extracts the first characters of the plain message body
// from a raw RFC 822 literal.
func bodyExcerpt(literal imap.Literal) string {
	if literal == nil {
		return ""
	}
	msg, err := mail.ReadMessage(literal)
	if err != nil {
		return ""
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return ""
	}

	runes := []rune(strings.TrimSpace(string(body)))
	if len(runes) > sentBodyExcerptLen {
		runes = runes[:sentBodyExcerptLen]
	}
	return string(runes) + "..."
}
