package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSweepInterval = 5 * time.Minute
	DefaultCallMaxAge    = 30 * time.Minute
)

// Sweeper periodically reclaims calls nobody ended and forgets idle rate
// limiter entries.
type Sweeper struct {
	calls     *CallStore
	limiter   *RateLimiter
	interval  time.Duration
	maxAge    time.Duration
	onExpired func([]domain.Call)
}

func NewSweeper(calls *CallStore, limiter *RateLimiter, interval, maxAge time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultCallMaxAge
	}
	return &Sweeper{calls: calls, limiter: limiter, interval: interval, maxAge: maxAge}
}

// OnExpired registers fn to receive the calls reclaimed by each sweep.
// Must be set before Run.
func (s *Sweeper) OnExpired(fn func([]domain.Call)) { s.onExpired = fn }

// Run blocks until ctx is cancelled. A failing iteration is logged and the
// loop keeps going.
func (s *Sweeper) Run(ctx context.Context) error {
	log.Info().Str("module", "app.sweeper").Dur("interval", s.interval).Dur("max_age", s.maxAge).Msg("sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(); err != nil {
				log.Error().Err(err).Str("module", "app.sweeper").Msg("sweep failed")
			}
		}
	}
}

// SweepOnce runs a single iteration and returns how many calls it reclaimed.
func (s *Sweeper) SweepOnce() (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panic: %v", r)
		}
	}()

	expired := s.calls.SweepExpired(s.maxAge)
	if s.limiter != nil {
		if pruned := s.limiter.Prune(); pruned > 0 {
			log.Debug().Str("module", "app.sweeper").Int("users", pruned).Msg("rate limiter pruned")
		}
	}
	if len(expired) > 0 && s.onExpired != nil {
		s.onExpired(expired)
	}
	return len(expired), nil
}
