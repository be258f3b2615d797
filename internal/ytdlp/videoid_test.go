package ytdlp

import (
	"errors"
	"testing"

	"tldw/internal/services"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/live/dQw4w9WgXcQ?feature=share", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=x", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		got, err := ExtractVideoID(tt.url)
		if err != nil {
			t.Fatalf("ExtractVideoID(%q) returned error: %v", tt.url, err)
		}
		if got != tt.want {
			t.Fatalf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestExtractVideoIDRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"https://vimeo.com/123456",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/channel/UC123",
	} {
		if _, err := ExtractVideoID(raw); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ExtractVideoID(%q) expected validation error, got %v", raw, err)
		}
	}
}
