// Package sweeper runs the periodic retention pass over the session ledger,
// hard-deleting sessions whose expiry fell outside the retention window.
// Rotation never deletes rows, so without the sweep the ledger grows without
// bound.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/centralauth/centralauth/internal/api/metrics"
	"github.com/centralauth/centralauth/internal/core/ports"
)

const (
	defaultInterval  = 24 * time.Hour
	defaultRetention = 7 * 24 * time.Hour
)

// Sweeper deletes expired sessions on a fixed interval. It only touches rows
// already terminal, so it can run alongside live refresh traffic and on any
// number of replicas without coordination.
type Sweeper struct {
	ledger    ports.SessionLedger
	interval  time.Duration
	retention time.Duration
	log       zerolog.Logger
}

func New(ledger ports.SessionLedger, interval, retention time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	if retention < 0 {
		retention = defaultRetention
	}
	return &Sweeper{ledger: ledger, interval: interval, retention: retention, log: log}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)
	count, err := s.ledger.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if count > 0 {
		metrics.SessionsSweptTotal.Add(float64(count))
		s.log.Info().Int64("deleted", count).Time("cutoff", cutoff).Msg("session sweep completed")
	}
}
