package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"tldw/internal/api"
	"tldw/internal/config"
	"tldw/internal/logging"
	"tldw/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var checkLLM bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := logging.NewComponentLogger(ctx.log(), "serve")

			lock, err := acquireLock(cfg.LockPath("serve"), "server")
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			if err := runPreflight(cmd.Context(), cfg, preflight.Options{LLM: checkLLM}, logger); err != nil {
				return err
			}

			summarizeEnabled := cfg.ValidateLLM() == nil
			if !summarizeEnabled {
				logging.WarnWithContext(logger, "llm not configured; summarize requests will fail", "serve_llm_missing",
					logging.String(logging.FieldErrorHint, "set llm.api_key or the provider's API key environment variable"),
					logging.String(logging.FieldImpact, "only transcript requests will succeed"),
				)
			}
			p, err := ctx.buildPipeline(pipelineOptions{summarize: summarizeEnabled})
			if err != nil {
				return err
			}
			defer p.Close()

			address := strings.TrimSpace(bind)
			if address == "" {
				address = cfg.Paths.APIBind
			}
			server := api.New(p.service, api.Options{
				Bind:               address,
				AllowedOrigins:     cfg.API.AllowedOrigins,
				RateLimitPerMinute: cfg.API.RateLimitPerMinute,
				Token:              cfg.API.Token,
				Logger:             ctx.log(),
			})

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if err := server.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", server.Addr())

			<-runCtx.Done()
			server.Stop()
			logger.Info("api server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides paths.api_bind)")
	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Ping the LLM provider before serving")
	return cmd
}

// runPreflight logs every check and fails when any required check did.
func runPreflight(ctx context.Context, cfg *config.Config, opts preflight.Options, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, cfg, opts)
	for _, r := range results {
		if r.Passed {
			logger.Info("preflight check passed", logging.String("check", r.Name), logging.String("detail", r.Detail))
		}
	}
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String(logging.FieldErrorHint, r.Detail),
		)
		names = append(names, r.Name)
	}
	return errors.New("preflight failed: " + strings.Join(names, ", "))
}
