package captions

import (
	"errors"
	"testing"
)

func TestBuildTranscriptRollingCaptions(t *testing.T) {
	text, stats, err := BuildTranscript(FormatVTT, rollingCaptions(), DefaultOptions())
	if err != nil {
		t.Fatalf("BuildTranscript returned error: %v", err)
	}
	if text != rollingTranscript {
		t.Fatalf("unexpected transcript:\n%q\nwant:\n%q", text, rollingTranscript)
	}
	if stats.ParsedCues != 6 || stats.FinalCues != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Characters != len(rollingTranscript) {
		t.Fatalf("expected %d characters, got %d", len(rollingTranscript), stats.Characters)
	}
}

func TestBuildTranscriptRejectsUnsupportedFormat(t *testing.T) {
	_, _, err := BuildTranscript("srv3", "<timedtext/>", DefaultOptions())
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestBuildTranscriptHeaderOnly(t *testing.T) {
	text, stats, err := BuildTranscript(FormatVTT, "WEBVTT\n\n", DefaultOptions())
	if err != nil {
		t.Fatalf("BuildTranscript returned error: %v", err)
	}
	if text != "" || stats.ParsedCues != 0 {
		t.Fatalf("expected empty transcript, got %q %+v", text, stats)
	}
}
