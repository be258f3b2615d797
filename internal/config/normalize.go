package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYtDlp()
	c.normalizeCaptions()
	c.normalizeLLM()
	c.normalizeAPI()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeYtDlp() {
	c.YtDlp.Binary = strings.TrimSpace(c.YtDlp.Binary)
	if c.YtDlp.Binary == "" {
		c.YtDlp.Binary = defaultYtDlpBinary
	}
	if c.YtDlp.TimeoutSeconds == 0 {
		c.YtDlp.TimeoutSeconds = defaultYtDlpTimeoutSeconds
	}
	if c.YtDlp.MaxVideoSeconds == 0 {
		c.YtDlp.MaxVideoSeconds = defaultMaxVideoSeconds
	}
	if c.YtDlp.CaptionTimeoutSeconds == 0 {
		c.YtDlp.CaptionTimeoutSeconds = defaultCaptionTimeoutSeconds
	}
}

func (c *Config) normalizeCaptions() {
	if c.Captions.RedisplayMaxMS == 0 {
		c.Captions.RedisplayMaxMS = defaultRedisplayMaxMS
	}
	if c.Captions.FragmentMaxTokens == 0 {
		c.Captions.FragmentMaxTokens = defaultFragmentMaxTokens
	}
	if c.Captions.StandaloneWordMinChars == 0 {
		c.Captions.StandaloneWordMinChars = defaultStandaloneWordMinChar
	}
	if c.Captions.OverlapGapMS == 0 {
		c.Captions.OverlapGapMS = defaultOverlapGapMS
	}
	if c.Captions.ParagraphPauseMS == 0 {
		c.Captions.ParagraphPauseMS = defaultParagraphPauseMS
	}
	if c.Captions.LinePauseMS == 0 {
		c.Captions.LinePauseMS = defaultLinePauseMS
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenRouter
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	switch c.LLM.Provider {
	case ProviderOpenRouter:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenRouterBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultOpenRouterModel
		}
	case ProviderGemini:
		if c.LLM.Model == "" {
			c.LLM.Model = defaultGeminiModel
		}
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxTranscriptChars == 0 {
		c.LLM.MaxTranscriptChars = defaultMaxTranscriptChars
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, name := range c.llmKeyEnvVars() {
			if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) llmKeyEnvVars() []string {
	switch c.LLM.Provider {
	case ProviderGemini:
		return []string{"TLDW_LLM_API_KEY", "GEMINI_API_KEY"}
	default:
		return []string{"TLDW_LLM_API_KEY", "OPENROUTER_API_KEY"}
	}
}

func (c *Config) normalizeAPI() {
	if c.API.AllowedOrigins == nil {
		c.API.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...)
	}
	origins := make([]string, 0, len(c.API.AllowedOrigins))
	seen := make(map[string]struct{}, len(c.API.AllowedOrigins))
	for _, origin := range c.API.AllowedOrigins {
		normalized := strings.TrimRight(strings.TrimSpace(origin), "/")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		origins = append(origins, normalized)
	}
	c.API.AllowedOrigins = origins
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		c.API.Token = strings.TrimSpace(os.Getenv("TLDW_API_TOKEN"))
	}
	if c.API.RateLimitPerMinute == 0 {
		c.API.RateLimitPerMinute = defaultRateLimitPerMinute
	}
}

func (c *Config) normalizeWatch() error {
	var err error
	if c.Watch.InputDir, err = expandPath(strings.TrimSpace(c.Watch.InputDir)); err != nil {
		return fmt.Errorf("watch.input_dir: %w", err)
	}
	if strings.TrimSpace(c.Watch.OutputDir) == "" {
		c.Watch.OutputDir = c.Watch.InputDir
	}
	if c.Watch.OutputDir, err = expandPath(strings.TrimSpace(c.Watch.OutputDir)); err != nil {
		return fmt.Errorf("watch.output_dir: %w", err)
	}
	if c.Watch.MaxConcurrent == 0 {
		c.Watch.MaxConcurrent = defaultWatchMaxConcurrent
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
