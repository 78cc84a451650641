package lifecycle

import (
	"context"
	"time"

	"github.com/Caspar241/releasehub/internal/log"
	"github.com/Caspar241/releasehub/internal/metrics"
)

// Sweeper periodically persists expired snooze reversions. Readers
// already see lapsed snoozes as pending; the sweep just catches up the
// stored rows so list queries and stats match.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *log.Logger
	metrics  *metrics.Metrics
	stopChan chan struct{}
	done     chan struct{}
}

// SweeperConfig holds configuration for the snooze sweeper.
type SweeperConfig struct {
	Manager  *Manager
	Interval time.Duration // How often to sweep (default: 5 minutes)
	Logger   *log.Logger
	Metrics  *metrics.Metrics // optional, nil uses the process-wide instance
}

// NewSweeper creates a snooze sweeper.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.DefaultLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.GetDefault()
	}
	return &Sweeper{
		manager:  cfg.Manager,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or the context ends.
// The first sweep runs immediately.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("starting snooze sweeper", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.done)

	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("stopping snooze sweeper")
			return
		case <-ctx.Done():
			s.logger.Info("context cancelled, stopping snooze sweeper")
			return
		}
	}
}

// Stop stops the sweeper and waits for the loop to exit.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	swept, err := s.manager.SweepExpiredSnoozes(ctx)
	if err != nil {
		s.logger.WithError(err).Error("snooze sweep failed")
		return
	}
	s.metrics.SnoozeSweeps.Inc()
	s.metrics.SnoozesReverted.Add(float64(swept))
}
