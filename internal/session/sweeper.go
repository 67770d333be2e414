package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper evicts idle sessions.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// RunSweeper sweeps s every interval until ctx is cancelled. It returns once
// the scheduler has stopped.
func RunSweeper(ctx context.Context, s Sweeper, interval, maxIdle time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc("@every "+interval.String(), func() {
		if n := s.Sweep(maxIdle); n > 0 {
			slog.Info("idle sessions evicted", "count", n, "max_idle", maxIdle.String())
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}

	c.Start()
	slog.Info("session sweeper started", "interval", interval.String())

	<-ctx.Done()

	<-c.Stop().Done()
	slog.Info("session sweeper stopped")
	return nil
}
