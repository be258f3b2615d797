package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tldw/internal/captions"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
}

// YtDlp contains configuration for the yt-dlp metadata extractor and caption downloads.
type YtDlp struct {
	Binary                string `toml:"binary"`
	TimeoutSeconds        int    `toml:"timeout_seconds"`
	MaxVideoSeconds       int    `toml:"max_video_seconds"`
	CaptionTimeoutSeconds int    `toml:"caption_timeout_seconds"`
	CaptionRetries        int    `toml:"caption_retries"`
}

// Captions contains the tunables of the caption normalization pipeline.
type Captions struct {
	// RedisplayMaxMS is the longest cue treated as a flash re-display. Default: 150
	RedisplayMaxMS int `toml:"redisplay_max_ms"`
	// FragmentMaxTokens is the largest cue appended to its predecessor. Default: 2
	FragmentMaxTokens int `toml:"fragment_max_tokens"`
	// StandaloneWordMinChars is the shortest single word folded forward. Default: 3
	StandaloneWordMinChars int `toml:"standalone_word_min_chars"`
	OverlapGapMS           int `toml:"overlap_gap_ms"`
	ParagraphPauseMS       int `toml:"paragraph_pause_ms"`
	LinePauseMS            int `toml:"line_pause_ms"`
}

// LLM contains summarization provider settings.
type LLM struct {
	Provider           string `toml:"provider"`
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	Model              string `toml:"model"`
	Referer            string `toml:"referer"`
	Title              string `toml:"title"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	MaxTranscriptChars int    `toml:"max_transcript_chars"`
}

// API contains HTTP server settings.
type API struct {
	AllowedOrigins     []string `toml:"allowed_origins"`
	RateLimitPerMinute int      `toml:"rate_limit_per_minute"`
	// Token, when set, is required as a bearer token on summarize and transcript requests.
	Token string `toml:"token"`
}

// Watch contains configuration for the caption drop-folder watcher.
type Watch struct {
	InputDir      string `toml:"input_dir"`
	OutputDir     string `toml:"output_dir"`
	MaxConcurrent int    `toml:"max_concurrent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tldw.
//
// Configuration sections by subsystem:
//   - Paths: cache and log directories, API bind address
//   - YtDlp: metadata extraction and caption download limits
//   - Captions: deduplication and assembly thresholds
//   - LLM: summarization provider settings
//   - API: CORS origins and rate limiting
//   - Watch: drop-folder conversion
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	YtDlp    YtDlp    `toml:"ytdlp"`
	Captions Captions `toml:"captions"`
	LLM      LLM      `toml:"llm"`
	API      API      `toml:"api"`
	Watch    Watch    `toml:"watch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tldw/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tldw.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CachePath returns the SQLite database path inside the cache directory.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.CacheDir, "tldw.db")
}

// LockPath returns the single-instance lock file for long-running commands.
func (c *Config) LockPath(name string) string {
	return filepath.Join(c.Paths.CacheDir, name+".lock")
}

// YtDlpBinary returns the yt-dlp executable name or path.
func (c *Config) YtDlpBinary() string {
	if binary := strings.TrimSpace(c.YtDlp.Binary); binary != "" {
		return binary
	}
	return defaultYtDlpBinary
}

// DedupeOptions maps [captions] onto the deduplicator's options.
func (c *Config) DedupeOptions() captions.DedupeOptions {
	return captions.DedupeOptions{
		RedisplayMaxDuration:   time.Duration(c.Captions.RedisplayMaxMS) * time.Millisecond,
		FragmentMaxTokens:      c.Captions.FragmentMaxTokens,
		StandaloneWordMinChars: c.Captions.StandaloneWordMinChars,
		OverlapGap:             time.Duration(c.Captions.OverlapGapMS) * time.Millisecond,
	}
}

// AssembleOptions maps [captions] onto the assembler's options.
func (c *Config) AssembleOptions() captions.AssembleOptions {
	return captions.AssembleOptions{
		ParagraphPause: time.Duration(c.Captions.ParagraphPauseMS) * time.Millisecond,
		LinePause:      time.Duration(c.Captions.LinePauseMS) * time.Millisecond,
	}
}

// PipelineOptions returns the full caption pipeline settings.
func (c *Config) PipelineOptions() captions.Options {
	return captions.Options{
		Dedupe:   c.DedupeOptions(),
		Assemble: c.AssembleOptions(),
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tldw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/tldw"
	}
	return filepath.Join(home, ".cache", "tldw")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved summarization provider settings.
type LLMConfig struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	Referer            string
	Title              string
	TimeoutSeconds     int
	MaxTranscriptChars int
}

// GetLLM returns the summarization provider settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:           strings.TrimSpace(c.LLM.Provider),
		APIKey:             strings.TrimSpace(c.LLM.APIKey),
		BaseURL:            strings.TrimSpace(c.LLM.BaseURL),
		Model:              strings.TrimSpace(c.LLM.Model),
		Referer:            strings.TrimSpace(c.LLM.Referer),
		Title:              strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds:     c.LLM.TimeoutSeconds,
		MaxTranscriptChars: c.LLM.MaxTranscriptChars,
	}
}
