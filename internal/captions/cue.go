package captions

import (
	"strings"
	"time"
)

// Cue is one timed caption unit. Start and End are offsets from the beginning
// of the media. Text may hold several display lines separated by "\n".
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns End-Start. It is negative for inverted cues.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

func (c Cue) lines() []string {
	return strings.Split(c.Text, "\n")
}

// trimBlankLines drops leading and trailing lines that hold only whitespace.
func trimBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
