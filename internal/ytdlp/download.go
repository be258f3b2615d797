package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tldw/internal/captions"
	"tldw/internal/retry"
	"tldw/internal/services"
)

// maxCaptionBytes bounds a single caption payload.
const maxCaptionBytes = 32 << 20

// Downloader fetches caption payloads.
type Downloader struct {
	httpClient *http.Client
	retry      retry.Policy
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(policy retry.Policy) DownloaderOption {
	return func(d *Downloader) {
		d.retry = policy
	}
}

// NewDownloader constructs a Downloader. timeoutSeconds bounds each attempt and
// attempts is the total number of tries.
func NewDownloader(timeoutSeconds, attempts int, opts ...DownloaderOption) *Downloader {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	policy := retry.DefaultPolicy()
	if attempts > 0 {
		policy.Attempts = attempts
	}
	d := &Downloader{
		httpClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		retry:      policy,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download returns the caption payload for track.
func (d *Downloader) Download(ctx context.Context, track captions.TrackDescriptor) (string, error) {
	if strings.TrimSpace(track.URL) == "" {
		return "", services.Wrap(services.ErrValidation, "ytdlp", "download captions", "track has no url", nil)
	}
	var lastErr error
	for attempt := 1; attempt <= d.retry.MaxAttempts(); attempt++ {
		body, err := d.fetchOnce(ctx, track.URL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		delay, ok := d.retry.Delay(ctx, err, attempt, nil)
		if !ok {
			break
		}
		if err := d.retry.Sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}
	return "", classifyDownload(lastErr)
}

func (d *Downloader) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionBytes))
	if err != nil {
		return "", fmt.Errorf("read captions: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", retry.NewStatusError("download captions", resp, body)
	}
	return string(body), nil
}

func classifyDownload(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "ytdlp", "download captions", "", err)
	}
	var statusErr *retry.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			return services.Wrap(services.ErrNotFound, "ytdlp", "download captions", "caption track missing", err)
		case http.StatusTooManyRequests:
			return services.Wrap(services.ErrRateLimited, "ytdlp", "download captions", "", err)
		}
	}
	return services.Wrap(services.ErrTransient, "ytdlp", "download captions", "", err)
}
