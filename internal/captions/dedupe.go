package captions

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DedupeOptions tunes the rolling-caption reducer. The defaults were tuned
// empirically against auto-generated captions; keep them unless there is
// data showing a better value.
type DedupeOptions struct {
	// RedisplayMaxDuration is the longest cue treated as a flash re-display of
	// text the pending cue already shows.
	RedisplayMaxDuration time.Duration
	// FragmentMaxTokens is the largest token count of a cue that gets appended
	// to the pending cue instead of standing on its own.
	FragmentMaxTokens int
	// StandaloneWordMinChars is the shortest single-word pending cue that is
	// folded forward into the next cue when that cue repeats it.
	StandaloneWordMinChars int
	// OverlapGap is left between a shortened cue and its successor.
	OverlapGap time.Duration
}

// DefaultDedupeOptions returns the tuned defaults.
func DefaultDedupeOptions() DedupeOptions {
	return DedupeOptions{
		RedisplayMaxDuration:   150 * time.Millisecond,
		FragmentMaxTokens:      2,
		StandaloneWordMinChars: 3,
		OverlapGap:             time.Millisecond,
	}
}

func (o DedupeOptions) withDefaults() DedupeOptions {
	def := DefaultDedupeOptions()
	if o.RedisplayMaxDuration <= 0 {
		o.RedisplayMaxDuration = def.RedisplayMaxDuration
	}
	if o.FragmentMaxTokens <= 0 {
		o.FragmentMaxTokens = def.FragmentMaxTokens
	}
	if o.StandaloneWordMinChars <= 0 {
		o.StandaloneWordMinChars = def.StandaloneWordMinChars
	}
	if o.OverlapGap <= 0 {
		o.OverlapGap = def.OverlapGap
	}
	return o
}

// TransitionKind tags the outcome of feeding one cue to the reducer.
type TransitionKind int

const (
	// TransitionStart: there was no pending cue; the input becomes pending.
	TransitionStart TransitionKind = iota
	// TransitionSkip: the input carried no text and was dropped.
	TransitionSkip
	// TransitionMerge: the input was absorbed into the pending cue.
	TransitionMerge
	// TransitionEmit: the pending cue is final; the input becomes pending.
	TransitionEmit
	// TransitionFold: the pending cue was folded forward into the input,
	// which becomes pending. Nothing is emitted.
	TransitionFold
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionStart:
		return "start"
	case TransitionSkip:
		return "skip"
	case TransitionMerge:
		return "merge"
	case TransitionEmit:
		return "emit"
	case TransitionFold:
		return "fold"
	default:
		return "unknown"
	}
}

// Transition is the result of one reducer step. Emitted is only meaningful
// for TransitionEmit. Pending is always the cue to carry into the next step.
type Transition struct {
	Kind    TransitionKind
	Emitted Cue
	Pending Cue
}

// Accumulator is the reducer state: the cue still open for merging and the
// cues already finalized.
type Accumulator struct {
	Pending    Cue
	HasPending bool
	Output     []Cue
}

// floor is the earliest start the pending cue may be widened to without
// overlapping the last finalized cue.
func (a Accumulator) floor() time.Duration {
	if n := len(a.Output); n > 0 {
		return a.Output[n-1].End
	}
	return 0
}

// Step feeds one cue through the transition function and applies the outcome.
func (o DedupeOptions) Step(acc Accumulator, current Cue) (Accumulator, Transition) {
	o = o.withDefaults()
	var t Transition
	if !acc.HasPending {
		t = o.start(current)
	} else {
		t = o.Next(acc.Pending, current, acc.floor())
	}
	switch t.Kind {
	case TransitionStart:
		acc.HasPending = true
	case TransitionSkip, TransitionMerge, TransitionFold:
	case TransitionEmit:
		acc.Output = append(acc.Output, t.Emitted)
	}
	if acc.HasPending {
		acc.Pending = t.Pending
	}
	return acc, t
}

// Flush finalizes the pending cue and returns the output sequence.
func (a Accumulator) Flush() []Cue {
	out := a.Output
	if a.HasPending {
		out = append(out, a.Pending)
	}
	return out
}

// Dedupe collapses rolling-caption redundancy in one forward pass. The result
// is never longer than the input, starts are non-decreasing, and adjacent
// cues overlap by at most OverlapGap.
func Dedupe(cues []Cue, opts DedupeOptions) []Cue {
	opts = opts.withDefaults()
	acc := Accumulator{Output: make([]Cue, 0, len(cues))}
	for _, cue := range cues {
		acc, _ = opts.Step(acc, cue)
	}
	return acc.Flush()
}

func (o DedupeOptions) start(current Cue) Transition {
	current.Text = trimBlankLines(current.Text)
	if current.Text == "" {
		return Transition{Kind: TransitionSkip}
	}
	if current.Start > current.End {
		current.Start, current.End = current.End, current.Start
	}
	return Transition{Kind: TransitionStart, Pending: current}
}

// Next is the pure transition function: given the pending cue, the incoming
// cue, and the floor left by the last emitted cue, it decides what happens.
func (o DedupeOptions) Next(pending, current Cue, floor time.Duration) Transition {
	o = o.withDefaults()

	current.Text = trimBlankLines(current.Text)
	if current.Text == "" {
		return Transition{Kind: TransitionSkip, Pending: pending}
	}

	if current.Duration() < o.RedisplayMaxDuration && strings.Contains(pending.Text, current.Text) {
		return Transition{Kind: TransitionMerge, Pending: widen(pending, current, floor)}
	}

	currentLines := current.lines()
	pendingLines := pending.lines()
	folded := false

	if currentLines[0] == pendingLines[len(pendingLines)-1] {
		rest := strings.Join(currentLines[1:], "\n")
		if len(pendingLines) == 1 && o.isStandaloneWord(pendingLines[0]) {
			folded = true
			current.Text = strings.TrimSpace(currentLines[0] + " " + rest)
		} else {
			current.Text = trimBlankLines(rest)
			if current.Text == "" {
				// Nothing new beyond the repeated line.
				return Transition{Kind: TransitionMerge, Pending: widen(pending, current, floor)}
			}
			if o.isFragment(current.Text) {
				// The remainder stays on its own line so the next rolling cue
				// still matches the pending cue's last line.
				merged := widen(pending, current, floor)
				merged.Text += "\n" + current.Text
				return Transition{Kind: TransitionMerge, Pending: merged}
			}
		}
	} else if o.isFragment(current.Text) {
		merged := widen(pending, current, floor)
		merged.Text = appendFragment(merged.Text, current.Text)
		return Transition{Kind: TransitionMerge, Pending: merged}
	}

	if current.Start > current.End {
		current.Start, current.End = current.End, current.Start
	}
	if current.Start < pending.Start {
		current.Start = pending.Start
		if current.End < current.Start {
			current.End = current.Start
		}
	}
	if current.Start <= pending.End {
		pending.End = max(current.Start-o.OverlapGap, pending.Start, 0)
	}

	if folded {
		current.Start = pending.Start
		return Transition{Kind: TransitionFold, Pending: current}
	}
	return Transition{Kind: TransitionEmit, Emitted: pending, Pending: current}
}

// isFragment reports whether text has at most FragmentMaxTokens space
// separated tokens. Line breaks do not separate tokens.
func (o DedupeOptions) isFragment(text string) bool {
	return spaceTokens(text) <= o.FragmentMaxTokens
}

func spaceTokens(text string) int {
	n := 0
	for _, token := range strings.Split(text, " ") {
		if token != "" {
			n++
		}
	}
	return n
}

func (o DedupeOptions) isStandaloneWord(line string) bool {
	return len(strings.Fields(line)) == 1 && utf8.RuneCountInString(strings.TrimSpace(line)) >= o.StandaloneWordMinChars
}

// widen stretches pending to cover current, never reaching below floor.
func widen(pending, current Cue, floor time.Duration) Cue {
	lo, hi := current.Start, current.End
	if lo > hi {
		lo, hi = hi, lo
	}
	pending.End = max(pending.End, hi)
	pending.Start = max(min(pending.Start, lo), floor)
	return pending
}

func appendFragment(text, fragment string) string {
	if strings.HasPrefix(fragment, " ") {
		return text + fragment
	}
	return text + " " + fragment
}
