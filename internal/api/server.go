package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"tldw/internal/digest"
	"tldw/internal/logging"
)

// Pipeline is the work the API exposes.
type Pipeline interface {
	Summarize(ctx context.Context, videoURL string) (*digest.Result, error)
	Transcript(ctx context.Context, videoURL string) (*digest.TranscriptResult, error)
}

// Options configures the server.
type Options struct {
	Bind               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	Token              string
	Logger             *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	bind     string
	pipeline Pipeline
	logger   *slog.Logger
	token    string
	cors     corsPolicy

	summarizeLimit  *rateLimiter
	transcriptLimit *rateLimiter

	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

// New constructs a Server. RateLimitPerMinute < 0 disables limiting.
func New(pipeline Pipeline, opts Options) *Server {
	srv := &Server{
		bind:     strings.TrimSpace(opts.Bind),
		pipeline: pipeline,
		logger:   logging.NewComponentLogger(opts.Logger, "api-server"),
		token:    opts.Token,
		cors:     newCORSPolicy(opts.AllowedOrigins),
	}
	if opts.RateLimitPerMinute > 0 {
		srv.summarizeLimit = newRateLimiter(opts.RateLimitPerMinute, time.Minute)
		srv.transcriptLimit = newRateLimiter(opts.RateLimitPerMinute, time.Minute)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", srv.handleHealth)
	mux.HandleFunc("POST /api/summarize", srv.guard(srv.summarizeLimit, srv.handleSummarize))
	mux.HandleFunc("POST /api/transcript", srv.guard(srv.transcriptLimit, srv.handleTranscript))
	mux.HandleFunc("OPTIONS /api/", srv.handlePreflight)

	srv.handler = srv.withRequestID(srv.withCORS(mux))
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Summaries can take minutes when the model is slow.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Start binds the listener and serves in the background until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
