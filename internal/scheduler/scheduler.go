package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sentinel-labs/sentinel/internal/services"
)

// Scheduler drives the background loops: the trigger sweep, the workflow
// state sync, and the dashboard clock tick. Each loop runs on its own
// ticker and stops when the context is cancelled.
type Scheduler struct {
	sweep  *services.SweepService
	sync   *services.SyncService
	clock  *services.Clock
	logger *log.Logger

	sweepInterval time.Duration
	syncInterval  time.Duration
	tickInterval  time.Duration

	wg sync.WaitGroup
}

// New creates a scheduler. sync may be nil when the workflow integration
// is disabled.
func New(sweep *services.SweepService, syncSvc *services.SyncService, clock *services.Clock, sweepInterval, syncInterval, tickInterval time.Duration) *Scheduler {
	return &Scheduler{
		sweep:         sweep,
		sync:          syncSvc,
		clock:         clock,
		logger:        log.New(log.Writer(), "[Scheduler] ", log.LstdFlags),
		sweepInterval: sweepInterval,
		syncInterval:  syncInterval,
		tickInterval:  tickInterval,
	}
}

// Start launches the background loops. It returns immediately; use Wait
// after cancelling the context to drain them.
func (s *Scheduler) Start(ctx context.Context) {
	s.run(ctx, s.tickInterval, func(context.Context) {
		s.clock.Tick()
	})
	s.run(ctx, s.sweepInterval, func(ctx context.Context) {
		if created, err := s.sweep.Sweep(ctx); err != nil {
			s.logger.Printf("Sweep failed: %v", err)
		} else if created > 0 {
			s.logger.Printf("Sweep created %d event(s)", created)
		}
	})
	if s.sync != nil {
		s.run(ctx, s.syncInterval, func(ctx context.Context) {
			if updated, err := s.sync.Reconcile(ctx); err != nil {
				s.logger.Printf("Workflow sync failed: %v", err)
			} else if updated > 0 {
				s.logger.Printf("Workflow sync updated %d event(s)", updated)
			}
		})
	}
}

// Wait blocks until all loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}
