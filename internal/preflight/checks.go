package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"tldw/internal/cache"
	"tldw/internal/config"
	"tldw/internal/deps"
	"tldw/internal/summary"
)

// CheckLLM verifies that the summarization provider is reachable and the key
// is valid. It uses a 30-second budget.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	summarizer, err := summary.NewFromConfig(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := summarizer.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable (%s)", cfg.Provider, summarizer.Model())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCache opens the cache database and counts its entries.
func CheckCache(ctx context.Context, cfg *config.Config) Result {
	const name = "Cache"
	store, err := cache.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	entries, err := store.List(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d videos)", store.Path(), len(entries))}
}

// CheckSystemDeps evaluates the external binaries tldw runs. Both the status
// command and the long-running commands use this list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(ctx, []deps.Requirement{deps.YtDlp(cfg.YtDlpBinary())})
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
