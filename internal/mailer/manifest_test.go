package mailer

import (
	"strings"
	"testing"
)

func TestComposeBodyNoAttachments(t *testing.T) {
	body := "Hello there"
	if got := ComposeBody(body, nil); got != body {
		t.Errorf("ComposeBody() = %q, want body unchanged", got)
	}
	if got := ComposeBody(body, []ResolvedAttachment{}); got != body {
		t.Errorf("ComposeBody() = %q, want body unchanged", got)
	}
}

func TestComposeBodySingleAttachment(t *testing.T) {
	resolved := []ResolvedAttachment{
		{Name: "doc.pdf", SizeBytes: 1048576, URL: "https://x"},
	}

	want := "Hello\n\n---\n📎 附件列表：\n• doc.pdf (1.00 MB) - https://x\n---\n"
	if got := ComposeBody("Hello", resolved); got != want {
		t.Errorf("ComposeBody() = %q, want %q", got, want)
	}
}

func TestComposeBodySizesAndOrder(t *testing.T) {
	resolved := []ResolvedAttachment{
		{Name: "big.zip", SizeBytes: 2 * 1048576, URL: "https://a"},
		{Name: "tiny.txt", SizeBytes: 5242, URL: "https://b"}, // ~0.005 MB
		{Name: "photo.jpg", SizeBytes: 1572864, URL: "https://c"},
	}

	got := ComposeBody("Body", resolved)

	wantLines := []string{
		"• big.zip (2.00 MB) - https://a",
		"• tiny.txt (0.00 MB) - https://b",
		"• photo.jpg (1.50 MB) - https://c",
	}
	idx := 0
	for _, line := range wantLines {
		pos := strings.Index(got[idx:], line)
		if pos < 0 {
			t.Fatalf("manifest missing or out of order: %q\nfull body:\n%s", line, got)
		}
		idx += pos + len(line)
	}

	if !strings.HasSuffix(got, "---\n") {
		t.Errorf("manifest missing closing separator: %q", got)
	}
}
