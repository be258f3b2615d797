package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tldw/internal/captions"
	"tldw/internal/digest"
)

type fileTranscript struct {
	Path       string `json:"path" yaml:"path"`
	Transcript string `json:"transcript" yaml:"transcript"`
	ParsedCues int    `json:"parsed_cues" yaml:"parsed_cues"`
	FinalCues  int    `json:"final_cues" yaml:"final_cues"`
	Characters int    `json:"characters" yaml:"characters"`
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var format string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "transcript [url]",
		Short: "Print the normalized transcript of a video or caption file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath = strings.TrimSpace(filePath)
			switch {
			case filePath != "" && len(args) > 0:
				return errors.New("pass either a url or --file, not both")
			case filePath != "":
				return runFileTranscript(cmd, ctx, filePath, format)
			case len(args) == 0:
				return errors.New("a video url or --file is required")
			}

			p, err := ctx.buildPipeline(pipelineOptions{noCache: noCache})
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.service.Transcript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeTranscriptResult(cmd, ctx, result)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read captions from a local file instead of YouTube")
	cmd.Flags().StringVar(&format, "format", "", "Caption format of --file (defaults to the file extension)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the cached transcript")
	return cmd
}

func runFileTranscript(cmd *cobra.Command, ctx *commandContext, path, format string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read captions: %w", err)
	}
	if strings.TrimSpace(format) == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	text, stats, err := captions.BuildTranscript(format, string(data), cfg.PipelineOptions())
	if err != nil {
		return err
	}
	result := fileTranscript{
		Path:       path,
		Transcript: text,
		ParsedCues: stats.ParsedCues,
		FinalCues:  stats.FinalCues,
		Characters: stats.Characters,
	}
	if handled, err := writeStructured(cmd, ctx.outputFormat(), result); handled {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func writeTranscriptResult(cmd *cobra.Command, ctx *commandContext, result *digest.TranscriptResult) error {
	if handled, err := writeStructured(cmd, ctx.outputFormat(), result); handled {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Transcript)
	return nil
}
