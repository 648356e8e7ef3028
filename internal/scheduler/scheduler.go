package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const runTimeout = 10 * time.Minute

// DigestRunner sends the daily digest and reports how many were delivered.
type DigestRunner interface {
	Run(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner DigestRunner
	logger *slog.Logger
}

// New parses the five-field schedule in the given location. Overlapping runs
// are skipped rather than queued.
func New(schedule string, location *time.Location, runner DigestRunner, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}

	scheduler := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		runner: runner,
		logger: logger,
	}
	if _, err := scheduler.cron.AddFunc(schedule, scheduler.runDigest); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}
	return scheduler, nil
}

func (scheduler *Scheduler) Start() {
	scheduler.cron.Start()
}

// Stop prevents new runs and waits for a running digest to finish or for ctx
// to end.
func (scheduler *Scheduler) Stop(ctx context.Context) {
	done := scheduler.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (scheduler *Scheduler) Next() time.Time {
	entries := scheduler.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (scheduler *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	started := time.Now()
	delivered, err := scheduler.runner.Run(ctx)
	if err != nil {
		scheduler.logger.Error("digest run failed", "error", err, "delivered", delivered)
		return
	}
	scheduler.logger.Info("digest run completed",
		"delivered", delivered,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}
