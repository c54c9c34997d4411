package api

import (
	"encoding/json/v2"
	"log/slog"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/ratelimit"
)

// rateLimitedPrefix is the path prefix subject to rate limiting.
const rateLimitedPrefix = "/api/v1/"

// RateLimitMiddleware limits /api/v1 requests per client IP. Rejected requests
// get 429 with the usual error envelope.
func (s *Server) RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, rateLimitedPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !limiter.Allow(key) {
				s.logger.Warn("Rate limit exceeded", "ip", key, "path", r.URL.Path)
				writeEnvelopeError(w, domainerrors.CodeRateLimited, "Too many requests. Please try again later.", s.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeEnvelopeError writes an error envelope for middleware that runs before huma.
func writeEnvelopeError(w http.ResponseWriter, code domainerrors.Code, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code.HTTPStatus())

	envelope := Envelope{
		Version: envelopeVersion,
		Error:   message,
		Code:    string(code),
		Message: message,
	}
	if err := json.MarshalWrite(w, envelope); err != nil {
		logger.Error("Failed to encode error envelope", "error", err)
	}
}
