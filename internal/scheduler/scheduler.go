package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refreshable reloads whatever screen it backs. ok is false when there was
// nothing to reload.
type Refreshable interface {
	Refresh(ctx context.Context) (ok bool)
}

// RefreshFunc adapts a function to Refreshable.
type RefreshFunc func(ctx context.Context) bool

// Refresh calls f.
func (f RefreshFunc) Refresh(ctx context.Context) bool { return f(ctx) }

// RefreshJob is a cron job that re-opens the active screen.
type RefreshJob struct {
	name    string
	target  Refreshable
	timeout time.Duration
	log     *slog.Logger
}

// NewRefreshJob builds a job bounded by timeout per run.
func NewRefreshJob(name string, target Refreshable, timeout time.Duration, logger *slog.Logger) *RefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshJob{name: name, target: target, timeout: timeout, log: logger}
}

// Run implements cron.Job.
func (j *RefreshJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	if !j.target.Refresh(ctx) {
		j.log.Debug("refresh skipped", slog.String("job", j.name))
		return
	}
	j.log.Debug("refresh finished", slog.String("job", j.name), slog.Duration("took", time.Since(start)))
}

// Scheduler runs the periodic refresh jobs.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
	jobs int
}

// New creates a scheduler. Specs accept an optional seconds field and the
// @every / @hourly descriptors.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cl := cronLogger{log: logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{cron: c, log: logger}
}

// Add registers job under spec. An empty spec leaves the job unscheduled.
func (s *Scheduler) Add(spec string, job cron.Job) error {
	if spec == "" {
		s.log.Warn("no cron spec provided, job not scheduled")
		return nil
	}
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("scheduler: add job (spec %q): %w", spec, err)
	}
	s.jobs++
	s.log.Info("job scheduled", slog.String("spec", spec))
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int { return s.jobs }

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", slog.Int("jobs", s.jobs))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out, jobs may still be running")
	}
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)...)
}
