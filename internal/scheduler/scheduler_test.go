package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/sentinel-labs/sentinel/internal/services"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestSchedulerLoops(t *testing.T) {
	t.Run("Tick loop advances the clock", func(t *testing.T) {
		clock := services.NewClock()
		pinned := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		clock.Set(pinned)

		st := store.NewMemoryStore()
		sweep := services.NewSweepService(st, clock, nil)

		ctx, cancel := context.WithCancel(context.Background())
		s := New(sweep, nil, clock, time.Hour, time.Hour, 10*time.Millisecond)
		s.Start(ctx)

		assert.Eventually(t, func() bool {
			return clock.Now().After(pinned)
		}, time.Second, 10*time.Millisecond)

		cancel()
		s.Wait()
	})

	t.Run("Zero intervals start nothing", func(t *testing.T) {
		clock := services.NewClock()
		st := store.NewMemoryStore()
		sweep := services.NewSweepService(st, clock, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s := New(sweep, nil, clock, 0, 0, 0)
		s.Start(ctx)
		s.Wait() // returns immediately since no loop was launched
	})
}
