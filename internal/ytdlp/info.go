package ytdlp

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"tldw/internal/captions"
)

// DefaultAspectRatio is reported when yt-dlp does not know the frame shape.
const DefaultAspectRatio = 1.78

// Thumbnail is one entry of yt-dlp's thumbnails list.
type Thumbnail struct {
	URL        string `json:"url"`
	Preference int    `json:"preference"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// VideoInfo is the subset of yt-dlp's JSON the pipeline uses.
type VideoInfo struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	FullTitle         string            `json:"fulltitle"`
	Description       string            `json:"description"`
	Duration          float64           `json:"duration"`
	AspectRatio       float64           `json:"aspect_ratio"`
	WebpageURL        string            `json:"webpage_url"`
	Thumbnails        []Thumbnail       `json:"thumbnails"`
	Subtitles         captions.TrackSet `json:"subtitles"`
	AutomaticCaptions captions.TrackSet `json:"automatic_captions"`

	// Raw is the document as yt-dlp printed it.
	Raw json.RawMessage `json:"-"`
}

// ParseInfo decodes yt-dlp's --dump-single-json output.
func ParseInfo(data []byte) (*VideoInfo, error) {
	var info VideoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp json: %w", err)
	}
	if strings.TrimSpace(info.ID) == "" {
		return nil, fmt.Errorf("decode yt-dlp json: missing id")
	}
	info.Raw = append(json.RawMessage(nil), data...)
	return &info, nil
}

// DisplayTitle prefers the full title.
func (v *VideoInfo) DisplayTitle() string {
	if title := strings.TrimSpace(v.FullTitle); title != "" {
		return title
	}
	return strings.TrimSpace(v.Title)
}

// BestThumbnail returns the URL of the thumbnail with the highest preference.
func (v *VideoInfo) BestThumbnail() string {
	best := ""
	bestPref := math.MinInt
	for _, thumb := range v.Thumbnails {
		if thumb.URL == "" {
			continue
		}
		if thumb.Preference > bestPref {
			best = thumb.URL
			bestPref = thumb.Preference
		}
	}
	return best
}

// Ratio returns the aspect ratio, falling back to DefaultAspectRatio.
func (v *VideoInfo) Ratio() float64 {
	if v.AspectRatio > 0 {
		return v.AspectRatio
	}
	return DefaultAspectRatio
}

// PageURL returns webpage_url or the canonical watch URL.
func (v *VideoInfo) PageURL() string {
	if u := strings.TrimSpace(v.WebpageURL); u != "" {
		return u
	}
	return WatchURL(v.ID)
}

// SelectTrack picks the caption track to download.
func (v *VideoInfo) SelectTrack() (captions.TrackDescriptor, bool) {
	return captions.Select(v.Subtitles, v.AutomaticCaptions)
}
