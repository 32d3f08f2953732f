package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "dayos/internal/log"
)

// Job is one scheduled unit of work. now is read from the runner's clock
// when the entry fires.
type Job func(ctx context.Context, now time.Time) error

// Runner schedules jobs with standard 5-field cron specs in a fixed zone.
// Overlapping runs of the same entry are skipped, and a panicking job is
// logged instead of taking the process down.
type Runner struct {
	cron  *cron.Cron
	clock func() time.Time
	ctx   context.Context
}

// NewRunner builds a runner evaluating specs in loc. A nil clock means
// time.Now.
func NewRunner(loc *time.Location, clock func() time.Time) *Runner {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	logger := cronLogger{}
	return &Runner{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		clock: clock,
		ctx:   context.Background(),
	}
}

// Add registers job under name. An invalid spec is reported immediately.
func (r *Runner) Add(name, spec string, job Job) error {
	_, err := r.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(r.ctx, r.clock()); err != nil {
			appLog.Error("scheduled job failed", err, "job", name)
			return
		}
		appLog.Debug("scheduled job finished", "job", name, "took", time.Since(start).String())
	})
	if err != nil {
		return fmt.Errorf("reminder: schedule %s %q: %w", name, spec, err)
	}
	appLog.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start runs the scheduler in the background until ctx is cancelled. Jobs
// receive ctx.
func (r *Runner) Start(ctx context.Context) {
	r.ctx = ctx
	r.cron.Start()
	go func() {
		<-ctx.Done()
		r.Stop()
	}()
}

// Stop halts scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

// cronLogger routes cron's internal logging through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
