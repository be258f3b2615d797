package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"tldw/internal/cache"
	"tldw/internal/config"
	"tldw/internal/digest"
	"tldw/internal/logging"
	"tldw/internal/summary"
	"tldw/internal/ytdlp"
)

type commandContext struct {
	configFlag *string
	outputFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, outputFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		outputFlag: outputFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) outputFormat() outputFormat {
	if c.outputFlag == nil {
		return outputText
	}
	format, _ := parseOutputFormat(*c.outputFlag)
	return format
}

// log returns the configured logger, falling back to a stderr console logger.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger, _ = logging.NewFromConfig(nil)
		}
		c.logger = logger
	})
	return c.logger
}

// pipeline bundles the digest service with the resources it holds open.
type pipeline struct {
	service *digest.Service
	store   *cache.Store
}

func (p *pipeline) Close() error {
	if p == nil || p.store == nil {
		return nil
	}
	return p.store.Close()
}

type pipelineOptions struct {
	noCache   bool
	summarize bool
}

func (c *commandContext) buildPipeline(opts pipelineOptions) (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.log()

	fetcher, err := ytdlp.New(cfg.YtDlpBinary(), cfg.YtDlp.TimeoutSeconds)
	if err != nil {
		return nil, err
	}
	downloader := ytdlp.NewDownloader(cfg.YtDlp.CaptionTimeoutSeconds, cfg.YtDlp.CaptionRetries)

	var summarizer digest.Summarizer
	if opts.summarize {
		if err := cfg.ValidateLLM(); err != nil {
			return nil, err
		}
		s, err := summary.NewFromConfig(cfg.GetLLM())
		if err != nil {
			return nil, err
		}
		summarizer = s
	}

	store, err := cache.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	service := digest.New(fetcher, downloader, summarizer,
		digest.WithStore(store),
		digest.WithLogger(logger),
		digest.WithMaxVideoDuration(time.Duration(cfg.YtDlp.MaxVideoSeconds)*time.Second),
		digest.WithPipelineOptions(cfg.PipelineOptions()),
		digest.WithNoCache(opts.noCache),
	)
	return &pipeline{service: service, store: store}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
