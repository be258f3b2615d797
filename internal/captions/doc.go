// Package captions turns raw WebVTT caption payloads into clean transcripts.
//
// Auto-generated captions are delivered as rolling cues: each cue re-displays
// the previous cue's last line while scrolling in new words, so the raw cue
// stream repeats most of its text and overlaps in time. The package selects a
// caption track from the available alternatives, parses the chosen payload
// into cues, folds the rolling duplicates away in a single forward pass, and
// assembles the result into prose with paragraph breaks at speech pauses.
//
// Everything here is pure and synchronous. Callers own fetching, caching,
// and bounding the size of the input.
package captions
