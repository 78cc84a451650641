package routine

import (
	"context"
	"time"

	"github.com/Caspar241/releasehub/internal/log"
)

// Runner ticks the scheduler on a fixed interval. The tick itself is
// idempotent per ISO week, so the interval only bounds how quickly a
// new week's batch appears, not how many batches it gets.
type Runner struct {
	scheduler *Scheduler
	interval  time.Duration
	logger    *log.Logger
	stopChan  chan struct{}
	done      chan struct{}
}

// RunnerConfig holds configuration for the tick runner.
type RunnerConfig struct {
	Scheduler *Scheduler
	Interval  time.Duration // How often to tick (default: 1 hour)
	Logger    *log.Logger
}

// NewRunner creates a tick runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Interval == 0 {
		cfg.Interval = 1 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = log.DefaultLogger()
	}
	return &Runner{
		scheduler: cfg.Scheduler,
		interval:  cfg.Interval,
		logger:    cfg.Logger,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the tick loop until Stop is called or the context ends.
// The first tick runs immediately.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("starting routine tick runner", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.done)

	r.tick(ctx)

	for {
		select {
		case <-ticker.C:
			r.tick(ctx)
		case <-r.stopChan:
			r.logger.Info("stopping routine tick runner")
			return
		case <-ctx.Done():
			r.logger.Info("context cancelled, stopping routine tick runner")
			return
		}
	}
}

// Stop stops the runner and waits for the loop to exit.
func (r *Runner) Stop() {
	close(r.stopChan)
	<-r.done
}

func (r *Runner) tick(ctx context.Context) {
	if _, err := r.scheduler.Tick(ctx, time.Now()); err != nil {
		r.logger.WithError(err).Error("routine tick failed")
	}
}
