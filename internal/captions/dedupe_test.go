package captions

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func cue(start, end int, text string) Cue {
	return Cue{Start: ms(start), End: ms(end), Text: text}
}

func TestDedupeCollapsesNearDuplicate(t *testing.T) {
	out := Dedupe([]Cue{
		cue(1000, 1100, "hello"),
		cue(900, 1000, "hello world"),
	}, DefaultDedupeOptions())
	if len(out) != 1 {
		t.Fatalf("expected a single cue, got %d: %+v", len(out), out)
	}
	if out[0].Start != ms(900) || out[0].End != ms(1100) {
		t.Fatalf("expected union interval 0.9-1.1, got %v-%v", out[0].Start, out[0].End)
	}
}

func TestDedupeExtendsPendingOnRedisplay(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 2000, "one two three four"),
		cue(2000, 2010, "three four"),
		cue(2010, 4000, "five six seven eight"),
	}, DefaultDedupeOptions())
	if len(out) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(out), out)
	}
	if out[0].End != ms(2009) {
		t.Fatalf("expected first cue to end 1ms before the next, got %v", out[0].End)
	}
}

func TestDedupeRollingLineFusion(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 1000, "the\nquick"),
		cue(1000, 2000, "quick\nbrown fox jumps"),
	}, DefaultDedupeOptions())
	if len(out) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(out), out)
	}
	if out[1].Text != "brown fox jumps" {
		t.Fatalf("expected repeated line to be dropped, got %q", out[1].Text)
	}
	text := Assemble(out, DefaultAssembleOptions())
	if text != "the quick brown fox jumps" {
		t.Fatalf("unexpected transcript %q", text)
	}
	if strings.Count(text, "quick") != 1 {
		t.Fatalf("expected quick once, got %q", text)
	}
}

func TestDedupeRollingFusionShortRemainder(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 1000, "the\nquick"),
		cue(1000, 2000, "quick\nbrown fox"),
		cue(2000, 3000, "brown fox\njumps over the dog"),
	}, DefaultDedupeOptions())
	if len(out) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(out), out)
	}
	if out[0].Text != "the\nquick\nbrown fox" || out[0].End != ms(1999) {
		t.Fatalf("expected short remainder on its own line, got %+v", out[0])
	}
	if out[1].Text != "jumps over the dog" {
		t.Fatalf("expected next rolling line to match the remainder, got %q", out[1].Text)
	}
	if text := Assemble(out, DefaultAssembleOptions()); text != "the quick brown fox jumps over the dog" {
		t.Fatalf("unexpected transcript %q", text)
	}
}

func TestDedupeFoldsStandaloneWordForward(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 1000, "hello"),
		cue(1000, 3000, "hello\nworld is big"),
	}, DefaultDedupeOptions())
	if len(out) != 1 {
		t.Fatalf("expected the single word to fold forward, got %+v", out)
	}
	if out[0].Text != "hello world is big" {
		t.Fatalf("unexpected text %q", out[0].Text)
	}
	if out[0].Start != 0 || out[0].End != ms(3000) {
		t.Fatalf("expected folded cue to span 0-3s, got %v-%v", out[0].Start, out[0].End)
	}
}

func TestDedupeShortWordIsNotStandalone(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 1000, "ok"),
		cue(1000, 3000, "ok\nworld is big"),
	}, DefaultDedupeOptions())
	if len(out) != 2 {
		t.Fatalf("expected 2 cues, got %+v", out)
	}
	if out[0].Text != "ok" || out[1].Text != "world is big" {
		t.Fatalf("unexpected texts %q / %q", out[0].Text, out[1].Text)
	}
}

func TestDedupeAppendsShortFragment(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 2000, "this is a sentence"),
		cue(2000, 3000, "right here"),
	}, DefaultDedupeOptions())
	if len(out) != 1 {
		t.Fatalf("expected fragment to merge, got %+v", out)
	}
	if out[0].Text != "this is a sentence right here" {
		t.Fatalf("unexpected text %q", out[0].Text)
	}
	if out[0].End != ms(3000) {
		t.Fatalf("expected end to extend to 3s, got %v", out[0].End)
	}
}

func TestDedupeFragmentCountsSpaceSeparatedTokens(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 2000, "this is a sentence"),
		cue(2000, 3000, "right here\nnow"),
	}, DefaultDedupeOptions())
	if len(out) != 1 {
		t.Fatalf("expected two-token cue spanning lines to merge, got %+v", out)
	}
	if out[0].Text != "this is a sentence right here\nnow" || out[0].End != ms(3000) {
		t.Fatalf("unexpected merged cue %+v", out[0])
	}
}

func TestSpaceTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"word", 1},
		{"right here", 2},
		{"right here\nnow", 2},
		{"two  spaces", 2},
		{"a b c", 3},
	}
	for _, tc := range cases {
		if got := spaceTokens(tc.text); got != tc.want {
			t.Fatalf("spaceTokens(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestDedupeRepairsIntervals(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 3000, "alpha beta gamma"),
		cue(2000, 4000, "delta epsilon zeta"),
		cue(7000, 5000, "eta theta iota"),
	}, DefaultDedupeOptions())
	if len(out) != 3 {
		t.Fatalf("expected 3 cues, got %+v", out)
	}
	if out[0].End != ms(1999) {
		t.Fatalf("expected overlap trimmed to 1.999s, got %v", out[0].End)
	}
	if out[2].Start != ms(5000) || out[2].End != ms(7000) {
		t.Fatalf("expected inverted cue to be swapped, got %v-%v", out[2].Start, out[2].End)
	}
}

func TestDedupeSkipsBlankCues(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 500, " \n"),
		cue(500, 1000, "first real cue here"),
		cue(1000, 1500, "\n \n"),
		cue(1500, 2500, "second real cue here"),
	}, DefaultDedupeOptions())
	if len(out) != 2 {
		t.Fatalf("expected blank cues dropped, got %+v", out)
	}
}

func TestDedupeRollingCaptionsFixture(t *testing.T) {
	cues, err := Parse(FormatVTT, rollingCaptions())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	out := Dedupe(cues, DefaultDedupeOptions())
	want := []Cue{
		cue(0, 2359, "hello everyone and welcome to the"),
		cue(2360, 5009, "show today we are going"),
		cue(5010, 8000, "to talk about go"),
		cue(11000, 13000, "so first things first"),
	}
	if len(out) != len(want) {
		t.Fatalf("expected %d cues, got %d: %+v", len(want), len(out), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("cue %d: got %+v want %+v", i, out[i], want[i])
		}
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	fixture, err := Parse(FormatVTT, rollingCaptions())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	cases := []struct {
		name string
		cues []Cue
	}{
		{"rolling captions", fixture},
		{"single word rolling remainder", []Cue{
			cue(0, 2000, "the quick brown"),
			cue(2000, 4000, "the quick brown\nfox"),
		}},
		{"utterance ending on one word", []Cue{
			cue(0, 2000, "we are going to"),
			cue(2000, 2010, "we are going to"),
			cue(2010, 4000, "we are going to\ntalk about go"),
			cue(4000, 4010, "talk about go"),
			cue(4010, 5000, "talk about go\ntoday"),
			cue(8000, 10000, "next topic starts here"),
		}},
		{"two line fragment", []Cue{
			cue(0, 2000, "this is a sentence"),
			cue(2000, 3000, "right here\nnow"),
			cue(3000, 5000, "and something else entirely"),
		}},
	}
	for _, tc := range cases {
		once := Dedupe(tc.cues, DefaultDedupeOptions())
		twice := Dedupe(once, DefaultDedupeOptions())
		if len(once) != len(twice) {
			t.Fatalf("%s: second pass changed length: %+v -> %+v", tc.name, once, twice)
		}
		for i := range once {
			if once[i] != twice[i] {
				t.Fatalf("%s: second pass changed cue %d: %+v -> %+v", tc.name, i, once[i], twice[i])
			}
		}
	}
}

func TestDedupeFoldsSingleWordRollingRemainder(t *testing.T) {
	out := Dedupe([]Cue{
		cue(0, 2000, "the quick brown"),
		cue(2000, 4000, "the quick brown\nfox"),
	}, DefaultDedupeOptions())
	if len(out) != 1 {
		t.Fatalf("expected one cue, got %+v", out)
	}
	if out[0].Start != 0 || out[0].End != ms(4000) || out[0].Text != "the quick brown\nfox" {
		t.Fatalf("unexpected cue %+v", out[0])
	}
}

func TestDedupeOrderAndOverlapInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	words := []string{"go", "is", "a", "small", "language", "with", "channels", "and", "interfaces"}
	for round := 0; round < 200; round++ {
		n := 1 + rng.IntN(40)
		cues := make([]Cue, 0, n)
		at := 1000
		for i := 0; i < n; i++ {
			at += rng.IntN(1500)
			length := rng.IntN(3000) - 300
			lines := 1 + rng.IntN(2)
			parts := make([]string, 0, lines)
			for l := 0; l < lines; l++ {
				count := 1 + rng.IntN(4)
				tokens := make([]string, 0, count)
				for w := 0; w < count; w++ {
					tokens = append(tokens, words[rng.IntN(len(words))])
				}
				parts = append(parts, strings.Join(tokens, " "))
			}
			if i > 0 && rng.IntN(3) == 0 {
				prev := strings.Split(cues[i-1].Text, "\n")
				parts[0] = prev[len(prev)-1]
			}
			cues = append(cues, cue(at, at+length, strings.Join(parts, "\n")))
		}

		out := Dedupe(cues, DefaultDedupeOptions())
		if len(out) > len(cues) {
			t.Fatalf("round %d: output longer than input", round)
		}
		for i := 1; i < len(out); i++ {
			if out[i].Start < out[i-1].Start {
				t.Fatalf("round %d: start order violated at %d: %+v", round, i, out)
			}
			if out[i].Start-out[i-1].End < -time.Millisecond {
				t.Fatalf("round %d: overlap at %d: %+v", round, i, out)
			}
		}
		for i, c := range out {
			if c.End < c.Start {
				t.Fatalf("round %d: inverted cue %d: %+v", round, i, c)
			}
		}
	}
}

func TestNextTransitionKinds(t *testing.T) {
	opts := DefaultDedupeOptions()
	pending := cue(0, 2000, "the rain in spain")

	cases := []struct {
		name    string
		current Cue
		want    TransitionKind
	}{
		{"blank", cue(2000, 3000, "  \n "), TransitionSkip},
		{"redisplay", cue(2000, 2050, "in spain"), TransitionMerge},
		{"fragment", cue(2000, 3000, "falls mainly"), TransitionMerge},
		{"new content", cue(2000, 3000, "falls mainly on the plain"), TransitionEmit},
		{"rolling", cue(2000, 3000, "the rain in spain\nfalls mainly on"), TransitionEmit},
		{"rolling remainder", cue(2000, 3000, "the rain in spain\nfalls"), TransitionMerge},
		{"fragment across lines", cue(2000, 3000, "falls\nmainly"), TransitionMerge},
	}
	for _, tc := range cases {
		got := opts.Next(pending, tc.current, 0)
		if got.Kind != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got.Kind, tc.want)
		}
	}

	fold := opts.Next(cue(0, 1000, "spain"), cue(1000, 2000, "spain\nis sunny today"), 0)
	if fold.Kind != TransitionFold {
		t.Fatalf("expected fold, got %s", fold.Kind)
	}
	if fold.Pending.Text != "spain is sunny today" || fold.Pending.Start != 0 {
		t.Fatalf("unexpected folded cue %+v", fold.Pending)
	}
}

func TestStepAccumulatesOutput(t *testing.T) {
	opts := DefaultDedupeOptions()
	var acc Accumulator
	var kinds []TransitionKind
	for _, c := range []Cue{
		cue(0, 1000, "first cue text"),
		cue(1000, 2000, "second cue text"),
		cue(2000, 2100, "cue text"),
	} {
		var tr Transition
		acc, tr = opts.Step(acc, c)
		kinds = append(kinds, tr.Kind)
	}
	want := []TransitionKind{TransitionStart, TransitionEmit, TransitionMerge}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("step %d: got %s want %s", i, kinds[i], want[i])
		}
	}
	if len(acc.Output) != 1 || !acc.HasPending {
		t.Fatalf("unexpected accumulator %+v", acc)
	}
	if out := acc.Flush(); len(out) != 2 {
		t.Fatalf("expected 2 cues after flush, got %d", len(out))
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	if out := Dedupe(nil, DedupeOptions{}); len(out) != 0 {
		t.Fatalf("expected empty output, got %+v", out)
	}
}
