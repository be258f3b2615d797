package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tldw/internal/preflight"
)

type statusReport struct {
	ConfigPath string            `json:"config_path" yaml:"config_path"`
	Provider   string            `json:"llm_provider" yaml:"llm_provider"`
	Model      string            `json:"llm_model" yaml:"llm_model"`
	APIBind    string            `json:"api_bind" yaml:"api_bind"`
	Checks     []statusCheckView `json:"checks" yaml:"checks"`
	Healthy    bool              `json:"healthy" yaml:"healthy"`
}

type statusCheckView struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail" yaml:"detail"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check dependencies, directories, and the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{
				LLM:   checkLLM,
				Watch: cfg.Watch.InputDir != "",
			})
			results = append(results, preflight.CheckCache(cmd.Context(), cfg))

			llm := cfg.GetLLM()
			report := statusReport{
				ConfigPath: ctx.configPath,
				Provider:   llm.Provider,
				Model:      llm.Model,
				APIBind:    cfg.Paths.APIBind,
				Healthy:    len(preflight.Failed(results)) == 0,
			}
			for _, r := range results {
				report.Checks = append(report.Checks, statusCheckView{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
			}

			if handled, err := writeStructured(cmd, ctx.outputFormat(), report); handled {
				if err != nil {
					return err
				}
				return healthError(report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, report.ConfigPath, colorize))
			fmt.Fprintln(out, renderStatusLine("LLM", statusInfo, strings.TrimSpace(report.Provider+" "+report.Model), colorize))
			fmt.Fprintln(out, renderStatusLine("API bind", statusInfo, report.APIBind, colorize))
			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, c := range report.Checks {
				kind := statusOK
				if !c.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(c.Name, kind, c.Detail, colorize))
			}
			return healthError(report)
		},
	}

	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Also ping the LLM provider")
	return cmd
}

func healthError(report statusReport) error {
	if report.Healthy {
		return nil
	}
	var names []string
	for _, c := range report.Checks {
		if !c.Passed {
			names = append(names, c.Name)
		}
	}
	return fmt.Errorf("%d check(s) failed: %s", len(names), strings.Join(names, ", "))
}
