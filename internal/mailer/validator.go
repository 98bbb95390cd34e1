package mailer

import (
	"regexp"
	"strings"
)

// recipientPattern accepts local@domain.tld shaped addresses: no
// whitespace, exactly one @, at least one dot after it. Deeper RFC 5322
// compliance is deliberately not attempted.
var recipientPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports a user-correctable input problem. The message
// is surfaced to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateMessage checks recipient, subject, and body in that order and
// returns the first failure; later checks do not run.
func ValidateMessage(recipient, subject, body string) error {
	if recipient == "" || !recipientPattern.MatchString(recipient) {
		return &ValidationError{Field: "recipient", Message: "收件人邮箱格式不正确"}
	}
	if strings.TrimSpace(subject) == "" {
		return &ValidationError{Field: "subject", Message: "邮件主题不能为空"}
	}
	if strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "body", Message: "邮件内容不能为空"}
	}
	return nil
}
