package captions

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// UnsupportedFormatError reports a caption format the parser does not handle.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported caption format: %q", e.Format)
}

// MalformedCaptionsError reports a payload that claims to be WebVTT but
// cannot be read as such.
type MalformedCaptionsError struct {
	Line   int
	Reason string
}

func (e *MalformedCaptionsError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed captions (line %d): %s", e.Line, e.Reason)
	}
	return "malformed captions: " + e.Reason
}

const (
	vttSignature = "WEBVTT"
	timingArrow  = "-->"
)

var (
	// Inline markup such as <c>, </c>, <i> and karaoke timestamps <00:00:01.000>.
	inlineTagPattern = regexp.MustCompile(`<[^>]*>`)
	skippedBlocks    = []string{"NOTE", "STYLE", "REGION"}
)

// Parse converts a raw caption payload into cues in payload order. Only the
// "vtt" format is supported; anything else fails with *UnsupportedFormatError.
func Parse(format, payload string) ([]Cue, error) {
	if !strings.EqualFold(strings.TrimSpace(format), FormatVTT) {
		return nil, &UnsupportedFormatError{Format: format}
	}
	return parseVTT(payload)
}

type block struct {
	firstLine int
	lines     []string
}

func parseVTT(payload string) ([]Cue, error) {
	payload = strings.TrimPrefix(payload, "\ufeff")
	payload = strings.ReplaceAll(payload, "\r\n", "\n")
	payload = strings.ReplaceAll(payload, "\r", "\n")

	blocks := splitVTTBlocks(payload)
	if len(blocks) == 0 || !strings.HasPrefix(blocks[0].lines[0], vttSignature) {
		return nil, &MalformedCaptionsError{Line: 1, Reason: "missing WEBVTT signature"}
	}

	cues := make([]Cue, 0, len(blocks)-1)
	for _, b := range blocks[1:] {
		if isSkippedBlock(b.lines[0]) {
			continue
		}
		timingIdx := -1
		for i, line := range b.lines {
			if strings.Contains(line, timingArrow) {
				timingIdx = i
				break
			}
		}
		// A cue identifier may precede the timing line, nothing else may.
		if timingIdx < 0 || timingIdx > 1 {
			continue
		}
		start, end, err := parseTimingLine(b.lines[timingIdx])
		if err != nil {
			return nil, &MalformedCaptionsError{Line: b.firstLine + timingIdx, Reason: err.Error()}
		}
		cues = append(cues, Cue{
			Start: start,
			End:   end,
			Text:  cleanCueText(b.lines[timingIdx+1:]),
		})
	}
	return cues, nil
}

// splitVTTBlocks groups lines separated by empty lines. Lines holding only
// whitespace belong to their block: auto-generated captions use them as
// placeholder display lines.
func splitVTTBlocks(payload string) []block {
	var (
		blocks  []block
		current *block
	)
	for i, line := range strings.Split(payload, "\n") {
		if line == "" {
			if current != nil {
				blocks = append(blocks, *current)
				current = nil
			}
			continue
		}
		if current == nil {
			current = &block{firstLine: i + 1}
		}
		current.lines = append(current.lines, line)
	}
	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks
}

func isSkippedBlock(first string) bool {
	for _, keyword := range skippedBlocks {
		if first == keyword || strings.HasPrefix(first, keyword+" ") || strings.HasPrefix(first, keyword+"\t") {
			return true
		}
	}
	return false
}

func parseTimingLine(line string) (start, end time.Duration, err error) {
	parts := strings.SplitN(line, timingArrow, 2)
	startText := strings.TrimSpace(parts[0])
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("missing end timestamp in %q", line)
	}
	if start, err = ParseTimestamp(startText); err != nil {
		return 0, 0, err
	}
	if end, err = ParseTimestamp(endFields[0]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func cleanCueText(lines []string) string {
	cleaned := make([]string, len(lines))
	for i, line := range lines {
		line = inlineTagPattern.ReplaceAllString(line, "")
		line = html.UnescapeString(line)
		cleaned[i] = strings.TrimSpace(norm.NFC.String(line))
	}
	return strings.Join(cleaned, "\n")
}
