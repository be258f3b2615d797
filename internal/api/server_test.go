package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tldw/internal/digest"
	"tldw/internal/services"
	"tldw/internal/summary"
)

type stubPipeline struct {
	err     error
	lastURL string
	reqID   string
}

func (p *stubPipeline) Summarize(ctx context.Context, url string) (*digest.Result, error) {
	p.lastURL = url
	p.reqID, _ = services.RequestIDFromContext(ctx)
	if p.err != nil {
		return nil, p.err
	}
	return &digest.Result{VideoID: "abc", Title: "T", AspectRatio: 1.78, Summary: summary.Summary{TLDR: "short"}}, nil
}

func (p *stubPipeline) Transcript(_ context.Context, url string) (*digest.TranscriptResult, error) {
	p.lastURL = url
	if p.err != nil {
		return nil, p.err
	}
	return &digest.TranscriptResult{VideoID: "abc", Transcript: "hello"}, nil
}

func newTestServer(p Pipeline, opts Options) http.Handler {
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"https://tldw.tube"}
	}
	return New(p, opts).Handler()
}

func post(h http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	h := newTestServer(&stubPipeline{}, Options{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "healthy" {
		t.Fatalf("unexpected body %v", body)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestSummarizeSuccess(t *testing.T) {
	p := &stubPipeline{}
	h := newTestServer(p, Options{})
	w := post(h, "/api/summarize", `{"url":" https://youtu.be/abc "}`, map[string]string{"X-Request-ID": "req-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["video_id"] != "abc" || body["aspect_ratio"] != 1.78 {
		t.Fatalf("unexpected body %v", body)
	}
	if p.lastURL != "https://youtu.be/abc" {
		t.Fatalf("expected trimmed url, got %q", p.lastURL)
	}
	if p.reqID != "req-1" || w.Header().Get("X-Request-ID") != "req-1" {
		t.Fatalf("expected request id to propagate, got %q / %q", p.reqID, w.Header().Get("X-Request-ID"))
	}
}

func TestMissingURL(t *testing.T) {
	h := newTestServer(&stubPipeline{}, Options{})
	for _, body := range []string{``, `{}`, `{"url":""}`} {
		w := post(h, "/api/summarize", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		if got := decodeBody(t, w)["error"]; got != "Missing URL in request body" {
			t.Fatalf("body %q: unexpected error %v", body, got)
		}
	}
	if w := post(h, "/api/transcript", `not json`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", w.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.Wrap(services.ErrValidation, "ytdlp", "parse url", "bad", nil), http.StatusBadRequest},
		{digest.ErrCaptionsUnavailable, http.StatusNotFound},
		{services.Wrap(services.ErrTimeout, "llm", "complete", "", nil), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := newTestServer(&stubPipeline{err: tc.err}, Options{})
		w := post(h, "/api/summarize", `{"url":"https://youtu.be/abc"}`, nil)
		if w.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, w.Code)
		}
		if msg, _ := decodeBody(t, w)["error"].(string); !strings.HasPrefix(msg, "An error occurred: ") {
			t.Fatalf("unexpected error message %q", msg)
		}
	}
}

func TestTranscriptRoute(t *testing.T) {
	h := newTestServer(&stubPipeline{}, Options{})
	w := post(h, "/api/transcript", `{"url":"https://youtu.be/abc"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["transcript"] != "hello" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	h := newTestServer(&stubPipeline{}, Options{RateLimitPerMinute: 2})
	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"url":"https://youtu.be/abc"}`))
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}
	for i := range 2 {
		if code := send("10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := send("10.0.0.1:2000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := send("10.0.0.2:1000"); code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", code)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	l := newRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	if ok, _ := l.allow("ip"); !ok {
		t.Fatal("expected first request to pass")
	}
	ok, wait := l.allow("ip")
	if ok || wait != time.Minute {
		t.Fatalf("expected rejection with 1m wait, got %v %v", ok, wait)
	}
	now = now.Add(61 * time.Second)
	if ok, _ := l.allow("ip"); !ok {
		t.Fatal("expected request after window to pass")
	}
}

func TestCORS(t *testing.T) {
	h := newTestServer(&stubPipeline{}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/summarize", nil)
	req.Header.Set("Origin", "https://tldw.tube")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://tldw.tube" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Fatalf("unexpected allow methods %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}

func TestBearerToken(t *testing.T) {
	h := newTestServer(&stubPipeline{}, Options{Token: "secret"})
	if w := post(h, "/api/summarize", `{"url":"u"}`, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := post(h, "/api/summarize", `{"url":"u"}`, map[string]string{"Authorization": "Bearer wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}
	if w := post(h, "/api/summarize", `{"url":"u"}`, map[string]string{"Authorization": "Bearer secret"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestStartAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := New(&stubPipeline{}, Options{Bind: "127.0.0.1:0"})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	srv.Stop()
}
