package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Limiter is satisfied by ratelimiter.RateLimiter.
type Limiter interface {
	Allow(namespace, key string) (bool, time.Duration)
}

// RateLimit throttles requests per authenticated user, or per client IP for
// anonymous requests, under namespace. Rejected requests get 429 and a
// Retry-After header in whole seconds.
func RateLimit(limiter Limiter, namespace string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserIDFromContext(r.Context())
			if key == "" {
				key = clientIP(r)
			}

			allowed, retryAfter := limiter.Allow(namespace, key)
			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeError(w, "Too many requests, please slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
