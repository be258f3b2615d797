package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable. The LLM credentials are not
// required here; commands that summarize call ValidateLLM.
func (c *Config) Validate() error {
	if err := c.validateYtDlp(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateLLMSettings(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateLLM reports whether summarization can run with the configured provider.
func (c *Config) ValidateLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/tldw/config.toml"
	}
	envVars := strings.Join(c.llmKeyEnvVars(), " or ")
	return fmt.Errorf("llm.api_key is required for provider %q. Set %s or edit %s (create with 'tldw config init')", c.LLM.Provider, envVars, defaultPath)
}

func (c *Config) validateYtDlp() error {
	if strings.TrimSpace(c.YtDlp.Binary) == "" {
		return errors.New("ytdlp.binary must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"ytdlp.timeout_seconds":         c.YtDlp.TimeoutSeconds,
		"ytdlp.max_video_seconds":       c.YtDlp.MaxVideoSeconds,
		"ytdlp.caption_timeout_seconds": c.YtDlp.CaptionTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.YtDlp.CaptionRetries < 0 {
		return errors.New("ytdlp.caption_retries must be >= 0")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if err := ensurePositiveMap(map[string]int{
		"captions.redisplay_max_ms":          c.Captions.RedisplayMaxMS,
		"captions.fragment_max_tokens":       c.Captions.FragmentMaxTokens,
		"captions.standalone_word_min_chars": c.Captions.StandaloneWordMinChars,
		"captions.overlap_gap_ms":            c.Captions.OverlapGapMS,
		"captions.paragraph_pause_ms":        c.Captions.ParagraphPauseMS,
		"captions.line_pause_ms":             c.Captions.LinePauseMS,
	}); err != nil {
		return err
	}
	if c.Captions.ParagraphPauseMS <= c.Captions.LinePauseMS {
		return errors.New("captions.paragraph_pause_ms must be greater than captions.line_pause_ms")
	}
	return nil
}

func (c *Config) validateLLMSettings() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter:
		if strings.TrimSpace(c.LLM.BaseURL) == "" {
			return errors.New("llm.base_url must be set for provider openrouter")
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOpenRouter, ProviderGemini, c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must be set")
	}
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":      c.LLM.TimeoutSeconds,
		"llm.max_transcript_chars": c.LLM.MaxTranscriptChars,
	})
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitPerMinute < -1 {
		return errors.New("api.rate_limit_per_minute must be positive, or -1 to disable limiting")
	}
	for _, origin := range c.API.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("api.allowed_origins: %q must be an http(s) origin or *", origin)
		}
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.MaxConcurrent <= 0 {
		return errors.New("watch.max_concurrent must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
