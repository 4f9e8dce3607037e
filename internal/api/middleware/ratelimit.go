package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bookdesk/platform/internal/api/response"
	"github.com/bookdesk/platform/internal/core"
	"github.com/bookdesk/platform/internal/model"
)

// rateLimiter decides whether one request is admitted.
type rateLimiter interface {
	Check(ctx context.Context, id *core.Identity, endpoint string) (*model.RateLimitDecision, error)
}

// RateLimit enforces per-identity fixed-window quotas. Every response
// carries the limit headers; rejected requests get 429 with Retry-After.
// The limiter fails open on counter errors.
func RateLimit(limiter rateLimiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := core.IdentityFromContext(r.Context())

			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				endpoint = rctx.RoutePattern()
			}

			decision, err := limiter.Check(r.Context(), id, endpoint)
			if err != nil {
				logger.Error().Err(err).Str("endpoint", endpoint).Msg("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter(time.Now())))
				response.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
