package config

const (
	defaultLogDir                = "~/.local/share/tldw/logs"
	defaultAPIBind               = "127.0.0.1:5000"
	defaultYtDlpBinary           = "yt-dlp"
	defaultYtDlpTimeoutSeconds   = 60
	defaultMaxVideoSeconds       = 9000
	defaultCaptionTimeoutSeconds = 30
	defaultCaptionRetries        = 3
	defaultRedisplayMaxMS        = 150
	defaultFragmentMaxTokens     = 2
	defaultStandaloneWordMinChar = 3
	defaultOverlapGapMS          = 1
	defaultParagraphPauseMS      = 2000
	defaultLinePauseMS           = 1000
	defaultLLMTimeoutSeconds     = 120
	defaultMaxTranscriptChars    = 400000
	defaultRateLimitPerMinute    = 5
	defaultWatchMaxConcurrent    = 2
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"

	// ProviderOpenRouter selects the OpenAI-compatible chat completions client.
	ProviderOpenRouter = "openrouter"
	// ProviderGemini selects the Google Gemini client.
	ProviderGemini = "gemini"

	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel   = "google/gemini-3-flash-preview"
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultLLMReferer        = "https://tldw.tube"
	defaultLLMTitle          = "tldw"
)

var defaultAllowedOrigins = []string{"https://tldw.tube", "http://localhost:5173"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		YtDlp: YtDlp{
			Binary:                defaultYtDlpBinary,
			TimeoutSeconds:        defaultYtDlpTimeoutSeconds,
			MaxVideoSeconds:       defaultMaxVideoSeconds,
			CaptionTimeoutSeconds: defaultCaptionTimeoutSeconds,
			CaptionRetries:        defaultCaptionRetries,
		},
		Captions: Captions{
			RedisplayMaxMS:         defaultRedisplayMaxMS,
			FragmentMaxTokens:      defaultFragmentMaxTokens,
			StandaloneWordMinChars: defaultStandaloneWordMinChar,
			OverlapGapMS:           defaultOverlapGapMS,
			ParagraphPauseMS:       defaultParagraphPauseMS,
			LinePauseMS:            defaultLinePauseMS,
		},
		LLM: LLM{
			Provider:           ProviderOpenRouter,
			Referer:            defaultLLMReferer,
			Title:              defaultLLMTitle,
			TimeoutSeconds:     defaultLLMTimeoutSeconds,
			MaxTranscriptChars: defaultMaxTranscriptChars,
		},
		API: API{
			AllowedOrigins:     append([]string(nil), defaultAllowedOrigins...),
			RateLimitPerMinute: defaultRateLimitPerMinute,
		},
		Watch: Watch{
			MaxConcurrent: defaultWatchMaxConcurrent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
