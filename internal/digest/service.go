package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tldw/internal/cache"
	"tldw/internal/captions"
	"tldw/internal/logging"
	"tldw/internal/services"
	"tldw/internal/summary"
	"tldw/internal/ytdlp"
)

// ErrCaptionsUnavailable is returned when a video has no usable caption track.
var ErrCaptionsUnavailable = fmt.Errorf("%w: captions are not available", services.ErrNotFound)

// InfoFetcher resolves video metadata.
type InfoFetcher interface {
	Info(ctx context.Context, videoURL string) (*ytdlp.VideoInfo, error)
}

// CaptionDownloader fetches a caption payload.
type CaptionDownloader interface {
	Download(ctx context.Context, track captions.TrackDescriptor) (string, error)
}

// Summarizer produces a summary and names the model behind it.
type Summarizer interface {
	Summarize(ctx context.Context, req summary.Request) (summary.Summary, error)
	Model() string
}

// Store is the subset of the cache the service reads and writes.
type Store interface {
	PutInfo(ctx context.Context, videoID, title string, infoJSON []byte) error
	Info(ctx context.Context, videoID string) (*cache.InfoRecord, error)
	PutTranscript(ctx context.Context, rec cache.TranscriptRecord) error
	Transcript(ctx context.Context, videoID string) (*cache.TranscriptRecord, error)
	PutSummary(ctx context.Context, videoID, model string, sum summary.Summary) error
	Summary(ctx context.Context, videoID, model string) (*cache.SummaryRecord, error)
}

// Result is the payload returned for a summarized video.
type Result struct {
	VideoID      string          `json:"video_id" yaml:"video_id"`
	Title        string          `json:"title" yaml:"title"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	AspectRatio  float64         `json:"aspect_ratio" yaml:"aspect_ratio"`
	WebpageURL   string          `json:"webpage_url" yaml:"webpage_url"`
	Summary      summary.Summary `json:"summary" yaml:"summary"`
	Model        string          `json:"model,omitempty" yaml:"model,omitempty"`
}

// TranscriptResult is the payload returned for a transcript request.
type TranscriptResult struct {
	VideoID    string `json:"video_id" yaml:"video_id"`
	Title      string `json:"title" yaml:"title"`
	WebpageURL string `json:"webpage_url" yaml:"webpage_url"`
	Transcript string `json:"transcript" yaml:"transcript"`
	ParsedCues int    `json:"parsed_cues" yaml:"parsed_cues"`
	FinalCues  int    `json:"final_cues" yaml:"final_cues"`
	Cached     bool   `json:"cached" yaml:"cached"`
}

// Option configures the service.
type Option func(*Service)

// WithStore enables caching.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxVideoDuration rejects videos at or above limit. Zero disables the check.
func WithMaxVideoDuration(limit time.Duration) Option {
	return func(s *Service) {
		s.maxDuration = limit
	}
}

// WithPipelineOptions sets the caption pipeline tunables.
func WithPipelineOptions(opts captions.Options) Option {
	return func(s *Service) {
		s.pipeline = opts
	}
}

// WithNoCache makes the service ignore cached entries. Fresh results are
// still written back.
func WithNoCache(noCache bool) Option {
	return func(s *Service) {
		s.noCache = noCache
	}
}

// Service coordinates metadata, captions, and summarization.
type Service struct {
	info        InfoFetcher
	downloader  CaptionDownloader
	summarizer  Summarizer
	store       Store
	logger      *slog.Logger
	maxDuration time.Duration
	pipeline    captions.Options
	noCache     bool
}

// New constructs a Service. summarizer may be nil for transcript-only use.
func New(info InfoFetcher, downloader CaptionDownloader, summarizer Summarizer, opts ...Option) *Service {
	s := &Service{
		info:       info,
		downloader: downloader,
		summarizer: summarizer,
		pipeline:   captions.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "digest")
	return s
}

// Summarize produces a summary for the video at videoURL.
func (s *Service) Summarize(ctx context.Context, videoURL string) (*Result, error) {
	if s.summarizer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "digest", "summarize", "no summarizer configured", nil)
	}
	videoID, err := ytdlp.ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}
	ctx = services.WithVideoID(ctx, videoID)
	logger := logging.WithContext(ctx, s.logger)

	info, err := s.videoInfo(ctx, videoID, videoURL)
	if err != nil {
		return nil, err
	}
	result := &Result{
		VideoID:      videoID,
		Title:        info.Title,
		ThumbnailURL: info.BestThumbnail(),
		AspectRatio:  info.Ratio(),
		WebpageURL:   info.PageURL(),
		Model:        s.summarizer.Model(),
	}
	if result.Title == "" {
		result.Title = info.DisplayTitle()
	}

	if sum, ok := s.cachedSummary(ctx, videoID); ok {
		logger.Info("summary served from cache", logging.String("model", result.Model))
		result.Summary = sum
		return result, nil
	}

	transcript, err := s.transcript(ctx, videoID, info)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	sum, err := s.summarizer.Summarize(services.WithStage(ctx, "summarize"), summary.Request{
		Title:       info.DisplayTitle(),
		Description: info.Description,
		Transcript:  transcript.Transcript,
	})
	if err != nil {
		logging.ErrorWithContext(logger, "summarization failed", "summary_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the [llm] settings and provider status"),
		)
		return nil, err
	}
	logger.Info("summary generated",
		logging.String("model", result.Model),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("key_points", len(sum.KeyPoints)),
	)
	if s.store != nil {
		if err := s.store.PutSummary(ctx, videoID, result.Model, sum); err != nil {
			logging.WarnWithContext(logger, "failed to cache summary", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the next request will call the model again"),
			)
		}
	}
	result.Summary = sum
	return result, nil
}

// Transcript produces the normalized transcript for the video at videoURL.
func (s *Service) Transcript(ctx context.Context, videoURL string) (*TranscriptResult, error) {
	videoID, err := ytdlp.ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}
	ctx = services.WithVideoID(ctx, videoID)
	info, err := s.videoInfo(ctx, videoID, videoURL)
	if err != nil {
		return nil, err
	}
	out, err := s.transcript(ctx, videoID, info)
	if err != nil {
		return nil, err
	}
	out.Title = info.DisplayTitle()
	out.WebpageURL = info.PageURL()
	return out, nil
}

func (s *Service) videoInfo(ctx context.Context, videoID, videoURL string) (*ytdlp.VideoInfo, error) {
	ctx = services.WithStage(ctx, "info")
	logger := logging.WithContext(ctx, s.logger)

	var info *ytdlp.VideoInfo
	if s.store != nil && !s.noCache {
		rec, err := s.store.Info(ctx, videoID)
		if err != nil {
			logging.WarnWithContext(logger, "failed to read cached video info", "cache_read_failed", logging.Error(err))
		} else if rec != nil {
			if cached, err := ytdlp.ParseInfo(rec.InfoJSON); err == nil {
				info = cached
				logger.Debug("video info served from cache")
			}
		}
	}
	if info == nil {
		started := time.Now()
		fetched, err := s.info.Info(ctx, videoURL)
		if err != nil {
			return nil, err
		}
		info = fetched
		logger.Info("video info fetched",
			logging.String("title", info.DisplayTitle()),
			logging.Duration("elapsed", time.Since(started)),
		)
		if s.store != nil && len(info.Raw) > 0 {
			if err := s.store.PutInfo(ctx, videoID, info.DisplayTitle(), info.Raw); err != nil {
				logging.WarnWithContext(logger, "failed to cache video info", "cache_write_failed", logging.Error(err))
			}
		}
	}

	if s.maxDuration > 0 && time.Duration(info.Duration*float64(time.Second)) >= s.maxDuration {
		return nil, services.Wrap(services.ErrValidation, "digest", "info",
			fmt.Sprintf("video is too long: %s (limit %s)", formatSeconds(info.Duration), s.maxDuration), nil)
	}
	return info, nil
}

func (s *Service) transcript(ctx context.Context, videoID string, info *ytdlp.VideoInfo) (*TranscriptResult, error) {
	ctx = services.WithStage(ctx, "captions")
	logger := logging.WithContext(ctx, s.logger)

	if s.store != nil && !s.noCache {
		rec, err := s.store.Transcript(ctx, videoID)
		if err != nil {
			logging.WarnWithContext(logger, "failed to read cached transcript", "cache_read_failed", logging.Error(err))
		} else if rec != nil {
			return &TranscriptResult{
				VideoID:    videoID,
				Transcript: rec.Transcript,
				ParsedCues: rec.ParsedCues,
				FinalCues:  rec.FinalCues,
				Cached:     true,
			}, nil
		}
	}

	track, ok := info.SelectTrack()
	if !ok {
		logging.WarnWithContext(logger, "no usable caption track", "captions_unavailable",
			logging.Any("subtitle_languages", info.Subtitles.Languages()),
			logging.Any("automatic_languages", info.AutomaticCaptions.Languages()),
			logging.String(logging.FieldImpact, "video cannot be summarized"),
		)
		return nil, fmt.Errorf("%w for video %s", ErrCaptionsUnavailable, videoID)
	}
	payload, err := s.downloader.Download(ctx, track)
	if err != nil {
		return nil, err
	}
	text, stats, err := captions.BuildTranscript(track.Format, payload, s.pipeline)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "digest", "captions", "caption payload could not be parsed", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w for video %s", ErrCaptionsUnavailable, videoID)
	}
	logger.Info("transcript built",
		logging.String("track", track.Name),
		logging.Int("parsed_cues", stats.ParsedCues),
		logging.Int("final_cues", stats.FinalCues),
		logging.Int("characters", stats.Characters),
	)

	if s.store != nil {
		rec := cache.TranscriptRecord{
			VideoID:    videoID,
			TrackURL:   track.URL,
			Language:   track.Name,
			Transcript: text,
			ParsedCues: stats.ParsedCues,
			FinalCues:  stats.FinalCues,
		}
		if err := s.store.PutTranscript(ctx, rec); err != nil {
			logging.WarnWithContext(logger, "failed to cache transcript", "cache_write_failed", logging.Error(err))
		}
	}
	return &TranscriptResult{
		VideoID:    videoID,
		Transcript: text,
		ParsedCues: stats.ParsedCues,
		FinalCues:  stats.FinalCues,
	}, nil
}

func (s *Service) cachedSummary(ctx context.Context, videoID string) (summary.Summary, bool) {
	if s.store == nil || s.noCache {
		return summary.Summary{}, false
	}
	rec, err := s.store.Summary(ctx, videoID, s.summarizer.Model())
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to read cached summary", "cache_read_failed", logging.Error(err))
		return summary.Summary{}, false
	}
	if rec == nil {
		return summary.Summary{}, false
	}
	return rec.Summary, true
}

func formatSeconds(seconds float64) string {
	return (time.Duration(seconds) * time.Second).String()
}
