package extractor

import (
	"errors"
	"testing"
)

func TestParseContactInfo(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [3]string // name, email, phone
	}{
		{
			name: "full header",
			text: "Jane Doe\njane.doe@example.com | 555-123-4567\nSoftware Engineer",
			want: [3]string{"Jane Doe", "jane.doe@example.com", "555-123-4567"},
		},
		{
			name: "contact on first line",
			text: "  Ada Lovelace ada@engine.org +44 2071234567\nMathematician",
			want: [3]string{"Ada Lovelace", "ada@engine.org", "+44 2071234567"},
		},
		{
			name: "first line too long for a name",
			text: "Experienced engineer building distributed systems at scale\nbob@example.com",
			want: [3]string{"", "bob@example.com", ""},
		},
		{
			name: "nothing found",
			text: "\n\n  \nlowercase only line",
			want: [3]string{"", "", ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContactInfo(tt.text)
			if got.Name != tt.want[0] || got.Email != tt.want[1] || got.Phone != tt.want[2] {
				t.Errorf("ParseContactInfo = %+v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		filename, mime, want string
	}{
		{"cv.pdf", "application/pdf", MimePDF},
		{"cv.docx", "application/octet-stream", MimeDOCX},
		{"cv.txt", "", MimeText},
		{"cv", "text/plain; charset=utf-8", MimeText},
		{"cv.png", "image/png", "image/png"},
	}
	for _, tt := range tests {
		if got := DetectType(tt.filename, tt.mime); got != tt.want {
			t.Errorf("DetectType(%q, %q) = %q, want %q", tt.filename, tt.mime, got, tt.want)
		}
	}
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText("cv.txt", "text/plain", []byte("Jane Doe\njane@example.com"))
	if err != nil || text != "Jane Doe\njane@example.com" {
		t.Errorf("plain text = %q, %v", text, err)
	}
	if _, err := ExtractText("photo.png", "image/png", []byte{0x89}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("png: err = %v, want ErrUnsupportedType", err)
	}
	if _, err := ExtractText("broken.pdf", MimePDF, []byte("not a pdf")); err == nil {
		t.Error("corrupt pdf should fail")
	}
}
