// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Scheduler runs Jobs on fixed intervals.
type Scheduler struct {
	s       gocron.Scheduler
	log     *zap.Logger
	timeout time.Duration
	observe func(job string, err error)
}

// NewScheduler creates a scheduler whose job runs are each bounded by timeout.
func NewScheduler(logger *zap.Logger, timeout time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{s: s, log: logger, timeout: timeout}, nil
}

// Observe sets a callback invoked after every job run, e.g. to count
// outcomes. It must be called before Start.
func (sc *Scheduler) Observe(fn func(job string, err error)) {
	sc.observe = fn
}

// Add registers j. Jobs with a non-positive interval are skipped.
// A run that is still going when the next one is due is not overlapped.
func (sc *Scheduler) Add(j Job) error {
	if j.Interval <= 0 {
		sc.log.Info("job disabled", zap.String("job", j.Name))
		return nil
	}
	_, err := sc.s.NewJob(
		gocron.DurationJob(j.Interval),
		gocron.NewTask(func() { sc.run(j) }),
		gocron.WithName(j.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", j.Name, err)
	}
	return nil
}

func (sc *Scheduler) run(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), sc.timeout)
	defer cancel()
	start := time.Now()
	err := j.Run(ctx)
	if sc.observe != nil {
		sc.observe(j.Name, err)
	}
	if err != nil {
		sc.log.Warn("job failed", zap.String("job", j.Name), zap.Error(err))
		return
	}
	sc.log.Debug("job finished", zap.String("job", j.Name), zap.Duration("took", time.Since(start)))
}

// Start begins running registered jobs.
func (sc *Scheduler) Start() {
	sc.s.Start()
	sc.log.Info("scheduler started", zap.Int("jobs", len(sc.s.Jobs())))
}

// Stop waits for running jobs and shuts the scheduler down.
func (sc *Scheduler) Stop() error {
	return sc.s.Shutdown()
}
