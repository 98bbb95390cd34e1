package storage

import (
	"testing"
	"time"
)

func TestDateFolder(t *testing.T) {
	when := time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC)
	if got := DateFolder(when); got != "attachments_20240307" {
		t.Errorf("DateFolder() = %q", got)
	}
}

func TestNameFromKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"attachments_20240307/550e8400-e29b-41d4-a716-446655440000_report.pdf", "report.pdf"},
		{"attachments_20240307/abc_file_with_underscores.txt", "file_with_underscores.txt"},
		{"attachments_20240307/nouuidname", "nouuidname"},
		{"plainkey", "plainkey"},
	}
	for _, tt := range tests {
		if got := NameFromKey(tt.key); got != tt.want {
			t.Errorf("NameFromKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"empty", "", ""},
		{"path traversal", "../../etc/passwd", "etcpasswd"},
		{"backslashes", `..\..\secret.txt`, "secret.txt"},
		{"null byte", "file\x00.txt", "file.txt"},
		{"unicode kept", "报告.pdf", "报告.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameBoundsLength(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	in := string(long) + ".txt"

	got := SanitizeFilename(in)
	if len(got) > 255 {
		t.Errorf("sanitized length = %d, want <= 255", len(got))
	}
	if got[len(got)-4:] != ".txt" {
		t.Errorf("extension lost: %q", got[len(got)-8:])
	}
}

func TestPublicURL(t *testing.T) {
	s := &Service{endpointURL: "http://localhost:9000", bucket: "attachments"}
	want := "http://localhost:9000/attachments/attachments_20240307/k"
	if got := s.PublicURL("attachments_20240307/k"); got != want {
		t.Errorf("PublicURL() = %q, want %q", got, want)
	}

	s.publicBaseURL = "https://cdn.example.com"
	want = "https://cdn.example.com/attachments_20240307/k"
	if got := s.PublicURL("attachments_20240307/k"); got != want {
		t.Errorf("PublicURL() with base = %q, want %q", got, want)
	}
}
