package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tldw/internal/config"
	"tldw/internal/logging"
	"tldw/internal/preflight"
	"tldw/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var inputDir string
	var outputDir string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert caption files dropped into a folder into transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sameDir := cfg.Watch.OutputDir == cfg.Watch.InputDir
			if dir := strings.TrimSpace(inputDir); dir != "" {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return fmt.Errorf("resolve input directory: %w", err)
				}
				cfg.Watch.InputDir = expanded
			}
			if dir := strings.TrimSpace(outputDir); dir != "" {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				cfg.Watch.OutputDir = expanded
			} else if sameDir {
				cfg.Watch.OutputDir = cfg.Watch.InputDir
			}
			if cfg.Watch.InputDir == "" {
				return errors.New("watch input directory is not set (use --input or watch.input_dir)")
			}
			for _, dir := range []string{cfg.Watch.InputDir, cfg.Watch.OutputDir} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create watch directory %q: %w", dir, err)
				}
			}

			logger := logging.NewComponentLogger(ctx.log(), "watch")
			converter := &watcher.Converter{
				OutputDir: cfg.Watch.OutputDir,
				Options:   cfg.PipelineOptions(),
				Logger:    ctx.log(),
			}

			if once {
				return convertExisting(cmd, converter, cfg.Watch.InputDir)
			}

			lock, err := acquireLock(cfg.LockPath("watch"), "watcher")
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			if err := runPreflight(cmd.Context(), cfg, preflight.Options{Watch: true}, logger); err != nil {
				return err
			}

			w, err := watcher.New(cfg.Watch.InputDir, converter.Handle, cfg.Watch.MaxConcurrent, watcher.WithLogger(ctx.log()))
			if err != nil {
				return err
			}
			defer w.Close()

			queued, err := w.Scan()
			if err != nil {
				return err
			}
			logger.Info("queued existing caption files", logging.Int("count", queued))

			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, cmd.Context().Err()) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "Directory to watch (overrides watch.input_dir)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for transcripts (overrides watch.output_dir)")
	cmd.Flags().BoolVar(&once, "once", false, "Convert files already present and exit")
	return cmd
}

// convertExisting handles --once: a single synchronous pass over the folder.
func convertExisting(cmd *cobra.Command, converter *watcher.Converter, inputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("scan input directory: %w", err)
	}
	var failures []string
	converted := 0
	out := cmd.OutOrStdout()
	for _, entry := range entries {
		if entry.IsDir() || !watcher.IsCaptionFile(entry.Name()) {
			continue
		}
		written, err := converter.Convert(cmd.Context(), filepath.Join(inputDir, entry.Name()))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		converted++
		fmt.Fprintf(out, "%s -> %s\n", entry.Name(), written)
	}
	fmt.Fprintf(out, "Converted %d file(s)\n", converted)
	if len(failures) > 0 {
		return fmt.Errorf("%d file(s) failed:\n  %s", len(failures), strings.Join(failures, "\n  "))
	}
	return nil
}
