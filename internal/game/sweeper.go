package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically deletes sessions past their TTL. Expiry is advisory:
// nothing gates reads on it, the sweeper just reclaims codes and storage.
type Sweeper struct {
	svc      *Service
	logger   zerolog.Logger
	interval time.Duration
}

// NewSweeper builds the expiry sweep worker.
func NewSweeper(svc *Service, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		svc:      svc,
		logger:   logger.With().Str("component", "expiry_sweeper").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Sweeper) tick(ctx context.Context) {
	count, err := w.svc.CleanupExpired(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("expiry sweep failed")
		return
	}
	if count > 0 {
		w.logger.Info().Int("deleted", count).Msg("expired games swept")
	}
}
