// Package mailer implements the email composition and dispatch pipeline:
// input validation, attachment resolution from storage, attachment
// manifest composition, transport dispatch, and audit logging.
package mailer

// AttachmentRef is a caller-supplied reference to a stored attachment.
// Name, URL, and Size are display hints; the authoritative values are
// re-read from storage during resolution.
type AttachmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// ResolvedAttachment is an attachment fetched from storage and ready to
// be sent. It only lives for the duration of one send.
type ResolvedAttachment struct {
	Name        string
	URL         string
	SizeBytes   int64
	ContentType string
	Data        []byte
}

// SendRequest is one outgoing email as submitted by the caller.
type SendRequest struct {
	Recipient   string          `json:"recipient"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
	Cc          string          `json:"cc,omitempty"`
	Bcc         string          `json:"bcc,omitempty"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// SendResult is the structured outcome of a send. Send never raises:
// every failure is folded into Success=false with a readable message.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RecentEmail is one entry of the recent-emails listing, sourced from
// the sent mailbox or, on transport failure, from the audit log.
type RecentEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Body    string `json:"body"`
}
