package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"tldw/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a yt-dlp client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Info fetches metadata for a single video without downloading it.
func (c *Client) Info(ctx context.Context, videoURL string) (*VideoInfo, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, services.Wrap(services.ErrValidation, "ytdlp", "info", "url is empty", nil)
	}
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	args := []string{"--dump-single-json", "--skip-download", "--no-playlist", "--no-warnings", "--", videoURL}
	out, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "ytdlp", "info", fmt.Sprintf("yt-dlp exceeded %s", c.timeout), err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "info", "yt-dlp failed", err)
	}
	info, err := ParseInfo(out)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "info", "", err)
	}
	return info, nil
}

// Version reports `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.exec.Run(ctx, c.binary, []string{"--version"})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "version", "", err)
	}
	return strings.TrimSpace(string(out)), nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, lastLine(msg))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
