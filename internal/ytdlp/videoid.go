package ytdlp

import (
	"net/url"
	"regexp"
	"strings"

	"tldw/internal/services"
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	youtubeHosts   = map[string]bool{
		"youtube.com":       true,
		"www.youtube.com":   true,
		"m.youtube.com":     true,
		"music.youtube.com": true,
	}
	pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}
)

// ExtractVideoID returns the 11-character video ID from a YouTube URL.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", services.Wrap(services.ErrValidation, "ytdlp", "parse url", "url is empty", nil)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ytdlp", "parse url", "invalid url", err)
	}
	host := strings.ToLower(parsed.Hostname())

	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(strings.TrimPrefix(parsed.Path, "/"))
	case youtubeHosts[host]:
		if parsed.Path == "/watch" {
			id = parsed.Query().Get("v")
			break
		}
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(parsed.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(parsed.Path, prefix))
				break
			}
		}
	default:
		return "", services.Wrap(services.ErrValidation, "ytdlp", "parse url", "not a YouTube url: "+host, nil)
	}
	if !videoIDPattern.MatchString(id) {
		return "", services.Wrap(services.ErrValidation, "ytdlp", "parse url", "no video id in url", nil)
	}
	return id, nil
}

// WatchURL is the canonical page for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func firstSegment(path string) string {
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return path
}
