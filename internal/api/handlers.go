package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tldw/internal/logging"
	"tldw/internal/services"
)

const maxRequestBytes = 64 << 10

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	url, ok := s.readURL(w, r)
	if !ok {
		return
	}
	started := time.Now()
	result, err := s.pipeline.Summarize(r.Context(), url)
	if err != nil {
		s.fail(w, r, "summarize", err)
		return
	}
	s.log(r).Info("summary served",
		logging.String(logging.FieldVideoID, result.VideoID),
		logging.Duration("elapsed", time.Since(started)),
	)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	url, ok := s.readURL(w, r)
	if !ok {
		return
	}
	result, err := s.pipeline.Transcript(r.Context(), url)
	if err != nil {
		s.fail(w, r, "transcript", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) readURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Could not read request body")
		return "", false
	}
	var req urlRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "Request body must be a JSON object")
			return "", false
		}
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "Missing URL in request body")
		return "", false
	}
	return req.URL, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := services.HTTPStatus(err)
	logger := s.log(r)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logger, "request failed", "api_"+op+"_failed",
			logging.Int("status", status),
			logging.Error(err),
		)
	} else {
		logger.Info("request rejected", logging.String("op", op), logging.Int("status", status), logging.Error(err))
	}
	if errors.Is(err, services.ErrRateLimited) {
		w.Header().Set("Retry-After", "60")
	}
	s.writeError(w, status, "An error occurred: "+err.Error())
}

func (s *Server) log(r *http.Request) *slog.Logger {
	return logging.WithContext(r.Context(), s.logger)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
