package store

import (
	"context"
	"fmt"
	"time"
)

// SweepExpired deletes expired authorization codes and tokens, plus
// rate-limit windows older than one full window in the past. Garbage
// collection only: expiry is already enforced on every lookup.
func (s *Store) SweepExpired(ctx context.Context, window time.Duration) (int64, error) {
	var total int64

	for _, table := range []string{"auth_codes", "access_tokens", "refresh_tokens"} {
		tag, err := s.db.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= now()`, table))
		if err != nil {
			return total, fmt.Errorf("sweep %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}

	tag, err := s.db.Exec(ctx,
		`DELETE FROM rate_limit_counters WHERE window_start < now() - $1::interval`,
		fmt.Sprintf("%d seconds", int(window.Seconds())),
	)
	if err != nil {
		return total, fmt.Errorf("sweep rate counters: %w", err)
	}
	total += tag.RowsAffected()

	return total, nil
}
