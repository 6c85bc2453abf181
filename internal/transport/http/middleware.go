package http

import (
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"ecomcli/internal/errors"
)

// RateLimit applies a token-bucket limit across all requests. Zero or
// negative rps disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				render.Render(w, r, &errors.APIError{
					StatusCode: http.StatusTooManyRequests,
					ErrorCode:  "RATE_LIMIT_EXCEEDED",
					Message:    "Rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
