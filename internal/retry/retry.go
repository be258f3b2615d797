package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAttempts  = 5
	DefaultBaseDelay = 1 * time.Second
	DefaultMaxDelay  = 10 * time.Second
)

// Policy describes how many times and how long to wait between attempts.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Sleeper replaces the real timer in tests.
	Sleeper func(time.Duration)
}

// DefaultPolicy returns 5 attempts with a 1s..10s exponential backoff.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, BaseDelay: DefaultBaseDelay, MaxDelay: DefaultMaxDelay}
}

// MaxAttempts never returns less than one.
func (p Policy) MaxAttempts() int {
	if p.Attempts <= 0 {
		return 1
	}
	return p.Attempts
}

// Backoff returns the delay before the attempt following attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base < 0 {
		base = DefaultBaseDelay
	}
	if base == 0 {
		return 0
	}
	maxDelay := p.maxDelay()
	if attempt <= 0 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return p.Cap(delay)
}

// Cap clamps delay into [0, MaxDelay].
func (p Policy) Cap(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if maxDelay := p.maxDelay(); delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (p Policy) maxDelay() time.Duration {
	if p.MaxDelay > 0 {
		return p.MaxDelay
	}
	return DefaultMaxDelay
}

// Sleep waits for delay or until ctx is done.
func (p Policy) Sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("retry: nil context")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Sleeper != nil {
		p.Sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return e.Op + ": http " + strconv.Itoa(e.StatusCode) + ": " + body
}

// NewStatusError captures resp's status and Retry-After header.
func NewStatusError(op string, resp *http.Response, body []byte) *StatusError {
	retryAfter, _ := ParseRetryAfter(resp.Header.Get("Retry-After"))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body), RetryAfter: retryAfter}
}

// RetryableStatus reports whether an HTTP status is worth another attempt.
func RetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// Delay decides whether err warrants another attempt and how long to wait.
// Callers pass extra for errors only they know to be retryable.
func (p Policy) Delay(ctx context.Context, err error, attempt int, extra func(error) bool) (time.Duration, bool) {
	if err == nil || attempt >= p.MaxAttempts() {
		return 0, false
	}
	if ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	if extra != nil && extra(err) {
		return p.Backoff(attempt), true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if !RetryableStatus(statusErr.StatusCode) {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return p.Cap(statusErr.RetryAfter), true
		}
		return p.Backoff(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.Backoff(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return p.Backoff(attempt), true
	}
	return 0, false
}

// ParseRetryAfter accepts delta-seconds or an HTTP date.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
