package api

import (
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tldw/internal/services"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

type corsPolicy struct {
	origins   []string
	anyOrigin bool
}

func newCORSPolicy(origins []string) corsPolicy {
	return corsPolicy{origins: origins, anyOrigin: slices.Contains(origins, "*")}
}

func (p corsPolicy) allowed(origin string) bool {
	if origin == "" {
		return false
	}
	return p.anyOrigin || slices.Contains(p.origins, strings.TrimRight(origin, "/"))
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.cors.allowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
			h.Set("Access-Control-Expose-Headers", requestIDHeader)
		}
		next.ServeHTTP(w, r)
	})
}

// guard applies bearer auth and the per-IP limiter in front of next.
func (s *Server) guard(limiter *rateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
				s.writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		if limiter != nil {
			if ok, retryAfter := limiter.allow(clientIP(r)); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
