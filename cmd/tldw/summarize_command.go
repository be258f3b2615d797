package main

import (
	"github.com/spf13/cobra"
)

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize a YouTube video from its captions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.buildPipeline(pipelineOptions{noCache: noCache, summarize: true})
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.service.Summarize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if handled, err := writeStructured(cmd, ctx.outputFormat(), result); handled {
				return err
			}
			renderSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached results and refresh them")
	return cmd
}
