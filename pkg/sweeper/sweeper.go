package sweeper

import (
	"sync"
	"time"

	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/metrics"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// Sweepable is a store that can evict its expired entries in bulk
type Sweepable interface {
	Sweep(now int64) int
}

// Target names a sweepable store for logging and metrics
type Target struct {
	Name  string
	Store Sweepable
}

// Sweeper periodically evicts expired entries from TTL'd stores. Lazy
// expiry on read remains the correctness mechanism; the sweeper only bounds
// memory growth between reads.
type Sweeper struct {
	targets  []Target
	interval time.Duration
	logger   zerolog.Logger
	mu       sync.Mutex
	stopCh   chan struct{}
}

// NewSweeper creates a sweeper over the given targets
func NewSweeper(interval time.Duration, targets ...Target) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		targets:  targets,
		interval: interval,
		logger:   log.WithComponent("sweeper"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop
func (s *Sweeper) Start() {
	go s.run()
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Sweeper started")

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info().Msg("Sweeper stopped")
			return
		}
	}
}

// sweep performs one eviction cycle
func (s *Sweeper) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := types.NowMS()
	for _, target := range s.targets {
		evicted := target.Store.Sweep(now)
		if evicted > 0 {
			metrics.SweepEvictionsTotal.WithLabelValues(target.Name).Add(float64(evicted))
			s.logger.Debug().
				Str("store", target.Name).
				Int("evicted", evicted).
				Msg("Evicted expired entries")
		}
	}
}
