package mailer

import (
	"fmt"
	"strings"
)

const (
	manifestHeader = "\n\n---\n📎 附件列表：\n"
	manifestFooter = "---\n"
)

// ComposeBody appends the attachment manifest to the message body: one
// line per resolved attachment with its name, size in binary megabytes,
// and access URL. With no attachments the body is returned unchanged.
func ComposeBody(body string, resolved []ResolvedAttachment) string {
	if len(resolved) == 0 {
		return body
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString(manifestHeader)
	for _, att := range resolved {
		sizeMB := float64(att.SizeBytes) / (1024 * 1024)
		fmt.Fprintf(&b, "• %s (%.2f MB) - %s\n", att.Name, sizeMB, att.URL)
	}
	b.WriteString(manifestFooter)
	return b.String()
}
