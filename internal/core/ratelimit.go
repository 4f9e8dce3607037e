package core

import (
	"context"
	"errors"
	"time"

	"github.com/bookdesk/platform/internal/model"
	"github.com/bookdesk/platform/internal/store"
)

// RateCounterStore is the counter surface the rate limiter needs.
type RateCounterStore interface {
	IncrementRateCounter(ctx context.Context, identifier, endpoint string, windowStart time.Time) (int, error)
	CustomRateLimit(ctx context.Context, keyID string) (*int, error)
}

// RateLimitService enforces fixed-window request quotas per caller.
type RateLimitService struct {
	store        RateCounterStore
	defaultLimit int
	window       time.Duration
}

// NewRateLimitService creates a new RateLimitService.
func NewRateLimitService(store RateCounterStore, defaultLimit int, window time.Duration) *RateLimitService {
	return &RateLimitService{store: store, defaultLimit: defaultLimit, window: window}
}

// Check admits or rejects one request for the identity. The counter is
// incremented unconditionally in a single atomic statement and the request
// is admitted iff the incremented count is within the limit, so under
// concurrency at most `limit` requests per window ever see Allowed.
func (s *RateLimitService) Check(ctx context.Context, id *Identity, endpoint string) (*model.RateLimitDecision, error) {
	limit := s.defaultLimit
	if id != nil && id.RateLimit != nil {
		limit = *id.RateLimit
	} else if id != nil && id.Kind == IdentityAPIKey {
		custom, err := s.store.CustomRateLimit(ctx, id.APIKeyID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if custom != nil {
			limit = *custom
		}
	}

	now := time.Now().UTC()
	windowStart := now.Truncate(s.window)

	identifier := "ip:unknown"
	if id != nil && id.RateIdentifier != "" {
		identifier = id.RateIdentifier
	}

	count, err := s.store.IncrementRateCounter(ctx, identifier, endpoint, windowStart)
	if err != nil {
		return nil, err
	}

	decision := &model.RateLimitDecision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(0, limit-count),
		Reset:     windowStart.Add(s.window),
	}
	if !decision.Allowed {
		rateLimitRejections.Inc()
	}
	return decision, nil
}

// Window returns the configured window length.
func (s *RateLimitService) Window() time.Duration {
	return s.window
}
