package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gorgio/shortlink-be/internal/cache"
)

// securityHeaders sets the usual hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// requestSizeLimit caps request bodies; none of the API payloads are large.
func requestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit enforces a fixed per-IP request budget per minute, counted in
// Redis so multiple instances share the budget. Without Redis it passes
// everything through.
func rateLimit(c *cache.Cache, maxPerMinute int) func(http.Handler) http.Handler {
	const window = time.Minute
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.Enabled() || maxPerMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := r.RemoteAddr
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					ip = strings.TrimSpace(xff[:idx])
				} else {
					ip = strings.TrimSpace(xff)
				}
			}

			count, err := c.IncrRate(r.Context(), ip, window)
			if err != nil {
				// Rate limiting is advisory; a cache hiccup must not
				// take the API down.
				log.Error().Err(err).Msg("Rate limiter unavailable, letting request through")
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(maxPerMinute) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxPerMinute))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			if count > int64(maxPerMinute) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
