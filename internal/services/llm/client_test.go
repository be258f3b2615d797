package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tldw/internal/retry"
	"tldw/internal/services"
)

func completionHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func noSleep() Option {
	return WithRetryPolicy(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Sleeper: func(time.Duration) {}})
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, `{"ok":true}`))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestCompleteJSONSendsHeadersAndPrompts(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Title") != "tldw" || r.Header.Get("HTTP-Referer") != "https://tldw.tube" {
			t.Errorf("unexpected attribution headers %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		completionHandler(t, "```json\n{\"tldr\":\"short\"}\n```")(w, r)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, Model: "m", Referer: "https://tldw.tube", Title: "tldw"})
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if got.Model != "m" || len(got.Messages) != 2 || got.Messages[1].Content != "user" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.ResponseFormat["type"] != jsonResponseType {
		t.Fatalf("expected json response format, got %v", got.ResponseFormat)
	}
	var parsed struct {
		TLDR string `json:"tldr"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil || parsed.TLDR != "short" {
		t.Fatalf("unexpected decode %q %v", parsed.TLDR, err)
	}
}

func TestCompleteJSONRequiresKey(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCompleteJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		completionHandler(t, `{"ok":true}`)(w, r)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, noSleep())
	if _, err := client.CompleteJSON(context.Background(), "s", "u"); err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestCompleteJSONRetriesEmptyContent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			completionHandler(t, "  ")(w, r)
			return
		}
		completionHandler(t, `{"ok":true}`)(w, r)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, noSleep())
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestCompleteJSONClassifiesFailures(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusBadRequest, services.ErrExternalTool},
		{http.StatusTooManyRequests, services.ErrRateLimited},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))
		client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, noSleep())
		_, err := client.CompleteJSON(context.Background(), "s", "u")
		server.Close()
		if !errors.Is(err, tc.marker) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.marker, err)
		}
	}
}

func TestDecodeLLMJSONExtractsObjectFromProse(t *testing.T) {
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON("Sure! Here you go: {\"ok\": true} Hope that helps.", &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if !parsed.OK {
		t.Fatal("expected ok=true")
	}
	if err := DecodeLLMJSON("no json here", &parsed); err == nil {
		t.Fatal("expected error for payload without JSON")
	}
	if err := DecodeLLMJSON("   ", &parsed); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
