package summary

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"tldw/internal/config"
	"tldw/internal/services"
	"tldw/internal/services/gemini"
	"tldw/internal/services/llm"
)

// Request is the material handed to the model.
type Request struct {
	Title       string
	Description string
	Transcript  string
}

// Topic is one section of the video.
type Topic struct {
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
}

// Summary is the structured digest returned to callers and cached.
type Summary struct {
	TLDR      string   `json:"tldr" yaml:"tldr"`
	KeyPoints []string `json:"key_points" yaml:"key_points"`
	Topics    []Topic  `json:"topics" yaml:"topics"`
}

// Completer sends a system and user prompt and returns the raw JSON reply.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// HealthChecker is implemented by completers that can verify their credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Summarizer produces summaries through a Completer.
type Summarizer struct {
	completer          Completer
	maxTranscriptChars int
	model              string
}

// New constructs a Summarizer. maxTranscriptChars <= 0 disables truncation.
func New(completer Completer, model string, maxTranscriptChars int) *Summarizer {
	return &Summarizer{completer: completer, model: model, maxTranscriptChars: maxTranscriptChars}
}

// NewFromConfig wires the provider selected by [llm].provider.
func NewFromConfig(cfg config.LLMConfig) (*Summarizer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", config.ProviderOpenRouter:
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Referer:        cfg.Referer,
			Title:          cfg.Title,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
		return New(client, client.Model(), cfg.MaxTranscriptChars), nil
	case config.ProviderGemini:
		client := gemini.NewClient(gemini.Config{
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
		return New(client, client.Model(), cfg.MaxTranscriptChars), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "summary", "provider", fmt.Sprintf("unknown provider %q", cfg.Provider), nil)
	}
}

// Model names the model used for summaries; it is stored next to cached results.
func (s *Summarizer) Model() string {
	return s.model
}

// HealthCheck pings the provider when it supports it.
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	checker, ok := s.completer.(HealthChecker)
	if !ok {
		return nil
	}
	return checker.HealthCheck(ctx)
}

// Summarize asks the model for a digest of req.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (Summary, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return Summary{}, services.Wrap(services.ErrValidation, "summary", "prepare", "transcript is empty", nil)
	}
	content, err := s.completer.CompleteJSON(ctx, SystemPrompt, BuildUserPrompt(req, s.maxTranscriptChars))
	if err != nil {
		return Summary{}, err
	}
	var parsed Summary
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		return Summary{}, services.Wrap(services.ErrExternalTool, "summary", "decode", "model returned invalid JSON", err)
	}
	parsed = parsed.normalized()
	if parsed.TLDR == "" && len(parsed.KeyPoints) == 0 {
		return Summary{}, services.Wrap(services.ErrExternalTool, "summary", "decode", "model returned an empty summary", nil)
	}
	return parsed, nil
}

// BuildUserPrompt lays out title, description, and transcript for the model.
func BuildUserPrompt(req Request, maxTranscriptChars int) string {
	var b strings.Builder
	if title := strings.TrimSpace(req.Title); title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		b.WriteString("Description:\n")
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	b.WriteString("Transcript:\n")
	b.WriteString(Truncate(strings.TrimSpace(req.Transcript), maxTranscriptChars))
	return b.String()
}

// Truncate limits text to maxChars runes, appending a marker when it cuts.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	count := 0
	for i := range text {
		if count == maxChars {
			return text[:i] + truncationMarker
		}
		count++
	}
	return text
}

func (s Summary) normalized() Summary {
	out := Summary{TLDR: strings.TrimSpace(s.TLDR)}
	for _, point := range s.KeyPoints {
		if point = strings.TrimSpace(point); point != "" {
			out.KeyPoints = append(out.KeyPoints, point)
		}
	}
	for _, topic := range s.Topics {
		topic.Title = strings.TrimSpace(topic.Title)
		topic.Summary = strings.TrimSpace(topic.Summary)
		if topic.Title == "" && topic.Summary == "" {
			continue
		}
		out.Topics = append(out.Topics, topic)
	}
	return out
}
