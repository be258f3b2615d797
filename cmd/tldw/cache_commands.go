package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tldw/internal/cache"
	"tldw/internal/ytdlp"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune cached videos, transcripts, and summaries",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func openCache(ctx *commandContext) (*cache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []cache.Entry{}
			}
			if handled, err := writeStructured(cmd, ctx.outputFormat(), entries); handled {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.VideoID,
					truncateTitle(e.Title, 48),
					yesNo(e.HasTranscript),
					strconv.Itoa(e.Summaries),
					formatUpdated(e.UpdatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Video", "Title", "Transcript", "Summaries", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <video-id|url>...",
		Short: "Remove cached data for specific videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			for _, arg := range args {
				id := strings.TrimSpace(arg)
				if strings.Contains(id, "/") {
					if id, err = ytdlp.ExtractVideoID(id); err != nil {
						return err
					}
				}
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(out, "Removed %s\n", id)
				} else {
					fmt.Fprintf(out, "%s was not cached\n", id)
				}
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the cache without --yes")
			}
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached video(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the cache")
	return cmd
}

func truncateTitle(title string, limit int) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}

func formatUpdated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
