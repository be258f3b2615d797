package preflight

import (
	"context"

	"tldw/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the optional checks.
type Options struct {
	// LLM pings the summarization provider.
	LLM bool
	// Watch checks the watcher's input and output directories.
	Watch bool
}

// RunAll executes the applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail})
	}

	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if opts.Watch {
		results = append(results, CheckDirectoryAccess("Watch input", cfg.Watch.InputDir))
		if cfg.Watch.OutputDir != cfg.Watch.InputDir {
			results = append(results, CheckDirectoryAccess("Watch output", cfg.Watch.OutputDir))
		}
	}

	if opts.LLM {
		results = append(results, CheckLLM(ctx, "Summarization LLM", cfg.GetLLM()))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
