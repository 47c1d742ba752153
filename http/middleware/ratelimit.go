package middleware

import (
	"net/http"

	resp "counsellor-matching/http/response"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once limiter has no tokens left. The
// limiter is shared by every route it wraps.
func RateLimit(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			resp.ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, please retry shortly")
			return
		}
		next(w, r)
	}
}
