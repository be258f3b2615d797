package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"tldw/internal/services"
)

const defaultModel = "gemini-2.5-flash"

// Config captures the Gemini connection settings.
type Config struct {
	// APIKey may hold several comma-separated keys.
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// generator is the subset of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client generates JSON completions with Gemini.
type Client struct {
	model   string
	keys    []string
	timeout time.Duration

	mu         sync.Mutex
	currentKey int
	newGen     func(ctx context.Context, apiKey string) (generator, error)
}

// Option customizes the client.
type Option func(*Client)

// withGenerator replaces the SDK client factory in tests.
func withGenerator(factory func(ctx context.Context, apiKey string) (generator, error)) Option {
	return func(c *Client) {
		c.newGen = factory
	}
}

// NewClient constructs a Gemini client.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		model:  strings.TrimSpace(cfg.Model),
		keys:   splitKeys(cfg.APIKey),
		newGen: newSDKGenerator,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if cfg.TimeoutSeconds > 0 {
		c.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newSDKGenerator(ctx context.Context, apiKey string) (generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// HealthCheck issues a fast ping to verify the key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("gemini health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("gemini health: unexpected response")
	}
	return nil
}

// CompleteJSON sends the prompts and returns the model's JSON text.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "complete", "system and user prompts required", nil)
	}
	if len(c.keys) == 0 {
		return "", services.Wrap(services.ErrConfiguration, "gemini", "complete", "api key required", nil)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	}
	contents := genai.Text(userPrompt)

	var lastErr error
	for range c.keys {
		key := c.key()
		gen, err := c.newGen(ctx, key)
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			c.rotateKey()
			continue
		}
		result, err := gen.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			if isQuotaError(err) {
				c.rotateKey()
				lastErr = err
				continue
			}
			return "", classify(err)
		}
		text := responseText(result)
		if text == "" {
			return "", services.Wrap(services.ErrExternalTool, "gemini", "complete", "empty response", nil)
		}
		return text, nil
	}
	return "", services.Wrap(services.ErrRateLimited, "gemini", "complete", "all API keys exhausted", lastErr)
}

func (c *Client) key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[c.currentKey]
}

func (c *Client) rotateKey() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentKey = (c.currentKey + 1) % len(c.keys)
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "gemini", "complete", "request timed out", err)
	case errors.Is(err, context.Canceled):
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "PERMISSION_DENIED") {
		return services.Wrap(services.ErrConfiguration, "gemini", "complete", "credentials rejected", err)
	}
	return services.Wrap(services.ErrExternalTool, "gemini", "complete", "", err)
}
