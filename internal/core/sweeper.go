package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredSweeper is the store surface the sweeper needs.
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context, window time.Duration) (int64, error)
}

// Sweeper periodically deletes expired codes, tokens, and stale rate
// counter windows. Expiry is always enforced at read time; the sweeper
// only reclaims storage.
type Sweeper struct {
	store      ExpiredSweeper
	interval   time.Duration
	rateWindow time.Duration
	logger     zerolog.Logger
}

// NewSweeper creates a new Sweeper.
func NewSweeper(store ExpiredSweeper, interval, rateWindow time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{store: store, interval: interval, rateWindow: rateWindow, logger: logger}
}

// Run sweeps on a ticker until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			deleted, err := s.store.SweepExpired(ctx, s.rateWindow)
			if err != nil {
				s.logger.Error().Err(err).Msg("failed to sweep expired credentials")
				continue
			}
			if deleted > 0 {
				s.logger.Debug().Int64("deleted", deleted).Msg("swept expired credentials")
			}
		}
	}
}
