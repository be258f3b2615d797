package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tldw/internal/captions"
	"tldw/internal/logging"
)

// Converter turns one caption file into a transcript file.
type Converter struct {
	OutputDir string
	Options   captions.Options
	Logger    *slog.Logger
}

// OutputPath is where the transcript for inputPath is written.
func (c *Converter) OutputPath(inputPath string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(c.OutputDir, base+".txt")
}

// Handle satisfies Handler.
func (c *Converter) Handle(ctx context.Context, path string) error {
	_, err := c.Convert(ctx, path)
	return err
}

// Convert reads path, builds the transcript, and writes it next to the other
// outputs. It returns the written path.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read captions: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	text, stats, err := captions.BuildTranscript(format, string(data), c.Options)
	if err != nil {
		return "", fmt.Errorf("build transcript for %s: %w", filepath.Base(path), err)
	}

	out := c.OutputPath(path)
	if err := writeFileAtomic(out, []byte(text+"\n")); err != nil {
		return "", err
	}
	logging.NewComponentLogger(c.Logger, "watcher").Info("transcript written",
		logging.String("input", path),
		logging.String("output", out),
		logging.Int("parsed_cues", stats.ParsedCues),
		logging.Int("final_cues", stats.FinalCues),
	)
	return out, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close transcript: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename transcript: %w", err)
	}
	return nil
}
