package captions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatVTT is the only caption format the parser accepts.
const FormatVTT = "vtt"

// ProtocolChunkedManifest marks HLS-style caption tracks that cannot be
// downloaded as a single payload.
const ProtocolChunkedManifest = "m3u8_native"

var (
	manualLanguagePriority    = []string{"en-US", "en-CA", "en"}
	automaticLanguagePriority = []string{"en-orig", "en-US", "en-CA", "en"}
	formatPriority            = []string{FormatVTT}
)

const manualLanguagePrefix = "en-"

// TrackDescriptor describes one downloadable caption alternative.
type TrackDescriptor struct {
	Format   string `json:"ext"`
	Name     string `json:"name,omitempty"`
	URL      string `json:"url"`
	Protocol string `json:"protocol,omitempty"`
}

// LanguageTracks holds the alternatives offered for one language code.
type LanguageTracks struct {
	Language string
	Tracks   []TrackDescriptor
}

// TrackSet is an ordered mapping from language code to caption alternatives.
// Order follows the source document so prefix fallbacks stay deterministic.
type TrackSet []LanguageTracks

// Lookup returns the alternatives for an exact language code.
func (s TrackSet) Lookup(language string) ([]TrackDescriptor, bool) {
	for _, entry := range s {
		if entry.Language == language {
			return entry.Tracks, true
		}
	}
	return nil, false
}

// Languages lists the language codes in source order.
func (s TrackSet) Languages() []string {
	out := make([]string, 0, len(s))
	for _, entry := range s {
		out = append(out, entry.Language)
	}
	return out
}

// UnmarshalJSON decodes a JSON object while keeping its key order.
func (s *TrackSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode track set: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode track set: expected object, got %v", tok)
	}
	var out TrackSet
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode track set: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode track set: unexpected key %v", keyTok)
		}
		var tracks []TrackDescriptor
		if err := dec.Decode(&tracks); err != nil {
			return fmt.Errorf("decode track set %q: %w", key, err)
		}
		out = append(out, LanguageTracks{Language: key, Tracks: tracks})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode track set: %w", err)
	}
	*s = out
	return nil
}

// MarshalJSON encodes the set as a JSON object in its stored order.
func (s TrackSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Language)
		if err != nil {
			return nil, err
		}
		tracks := entry.Tracks
		if tracks == nil {
			tracks = []TrackDescriptor{}
		}
		value, err := json.Marshal(tracks)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Select picks one caption track. Manual subtitles win over automatic
// captions; within the chosen language only named, directly downloadable VTT
// tracks qualify. ok is false when nothing qualifies.
func Select(manual, automatic TrackSet) (TrackDescriptor, bool) {
	tracks := pickManual(manual)
	if len(tracks) == 0 {
		tracks = pickByPriority(automatic, automaticLanguagePriority)
	}
	if len(tracks) == 0 {
		return TrackDescriptor{}, false
	}
	for _, format := range formatPriority {
		for _, track := range tracks {
			if !usable(track) {
				continue
			}
			if strings.EqualFold(track.Format, format) {
				return track, true
			}
		}
	}
	return TrackDescriptor{}, false
}

func pickManual(manual TrackSet) []TrackDescriptor {
	if tracks := pickByPriority(manual, manualLanguagePriority); len(tracks) > 0 {
		return tracks
	}
	for _, entry := range manual {
		if strings.HasPrefix(entry.Language, manualLanguagePrefix) && len(entry.Tracks) > 0 {
			return entry.Tracks
		}
	}
	return nil
}

func pickByPriority(set TrackSet, priority []string) []TrackDescriptor {
	for _, language := range priority {
		if tracks, ok := set.Lookup(language); ok && len(tracks) > 0 {
			return tracks
		}
	}
	return nil
}

func usable(track TrackDescriptor) bool {
	if strings.TrimSpace(track.Name) == "" {
		return false
	}
	return track.Protocol != ProtocolChunkedManifest
}
