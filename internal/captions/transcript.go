package captions

// Options bundles the tunables of the whole pipeline.
type Options struct {
	Dedupe   DedupeOptions
	Assemble AssembleOptions
}

// DefaultOptions returns the stock pipeline settings.
func DefaultOptions() Options {
	return Options{
		Dedupe:   DefaultDedupeOptions(),
		Assemble: DefaultAssembleOptions(),
	}
}

// Stats reports how much the pipeline reduced the input.
type Stats struct {
	ParsedCues int
	FinalCues  int
	Characters int
}

// BuildTranscript runs parse, dedupe, and assemble over one payload.
func BuildTranscript(format, payload string, opts Options) (string, Stats, error) {
	cues, err := Parse(format, payload)
	if err != nil {
		return "", Stats{}, err
	}
	deduped := Dedupe(cues, opts.Dedupe)
	text := Assemble(deduped, opts.Assemble)
	return text, Stats{
		ParsedCues: len(cues),
		FinalCues:  len(deduped),
		Characters: len(text),
	}, nil
}
