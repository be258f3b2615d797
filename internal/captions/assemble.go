package captions

import (
	"regexp"
	"strings"
	"time"
)

// AssembleOptions sets the pause lengths that become line and paragraph
// breaks in the transcript.
type AssembleOptions struct {
	ParagraphPause time.Duration
	LinePause      time.Duration
}

// DefaultAssembleOptions returns the stock pause thresholds.
func DefaultAssembleOptions() AssembleOptions {
	return AssembleOptions{
		ParagraphPause: 2 * time.Second,
		LinePause:      time.Second,
	}
}

func (o AssembleOptions) withDefaults() AssembleOptions {
	def := DefaultAssembleOptions()
	if o.ParagraphPause <= 0 {
		o.ParagraphPause = def.ParagraphPause
	}
	if o.LinePause <= 0 {
		o.LinePause = def.LinePause
	}
	return o
}

var spaceRun = regexp.MustCompile(` {2,}`)

// Separator returns the text placed between two cues separated by gap.
func (o AssembleOptions) Separator(gap time.Duration) string {
	o = o.withDefaults()
	switch {
	case gap >= o.ParagraphPause:
		return "\n\n"
	case gap >= o.LinePause:
		return "\n"
	default:
		return " "
	}
}

// Assemble joins deduplicated cues into one transcript, breaking lines and
// paragraphs where the speaker paused.
func Assemble(cues []Cue, opts AssembleOptions) string {
	opts = opts.withDefaults()
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteString(opts.Separator(cue.Start - cues[i-1].End))
		}
		b.WriteString(strings.TrimSpace(strings.ReplaceAll(cue.Text, "\n", " ")))
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
}
