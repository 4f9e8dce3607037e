package store

import (
	"context"
	"fmt"
	"time"
)

// IncrementRateCounter atomically bumps the counter for one (identifier,
// endpoint, window) bucket and returns the new count. The upsert is a
// single statement so two concurrent requests can never observe the same
// count; the limiter admits a request iff the returned count is within
// budget.
func (s *Store) IncrementRateCounter(ctx context.Context, identifier, endpoint string, windowStart time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`INSERT INTO rate_limit_counters (identifier, endpoint, window_start, count)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (identifier, endpoint, window_start)
		 DO UPDATE SET count = rate_limit_counters.count + 1
		 RETURNING count`,
		identifier, endpoint, windowStart,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment rate counter: %w", err)
	}
	return count, nil
}
