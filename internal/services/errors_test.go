package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"tldw/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "ytdlp", "info", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ytdlp", "info", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.Wrap(services.ErrValidation, "digest", "url", "bad", nil), http.StatusBadRequest},
		{services.Wrap(services.ErrNotFound, "digest", "captions", "none", nil), http.StatusNotFound},
		{services.Wrap(services.ErrRateLimited, "api", "", "", nil), http.StatusTooManyRequests},
		{services.Wrap(services.ErrTimeout, "ytdlp", "info", "", nil), http.StatusGatewayTimeout},
		{fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{services.Wrap(services.ErrExternalTool, "llm", "", "", nil), http.StatusBadGateway},
		{services.Wrap(services.ErrTransient, "cache", "", "", nil), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !services.IsRetryable(services.Wrap(services.ErrTransient, "", "", "", nil)) {
		t.Fatal("expected transient errors to be retryable")
	}
	if services.IsRetryable(services.Wrap(services.ErrValidation, "", "", "", nil)) {
		t.Fatal("expected validation errors not to be retryable")
	}
}
