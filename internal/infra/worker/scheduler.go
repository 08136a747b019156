// Package worker runs the sanctions sync job once or on a cron schedule and
// exposes its health and job metrics.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// JobResult is what a job reports back to the scheduler.
type JobResult struct {
	RunID        string
	TablesLoaded int
}

// Job performs one sync run.
type Job func(ctx context.Context) (JobResult, error)

type SchedulerConfig struct {
	// Schedule is a standard five-field cron expression or descriptor.
	Schedule string
	Timezone string
	// Timeout bounds each run.
	Timeout time.Duration
}

// Scheduler executes a Job with a timeout, recording metrics and health.
// Scheduled runs never overlap; a tick that fires while a run is in flight
// is skipped.
type Scheduler struct {
	cfg     SchedulerConfig
	loc     *time.Location
	job     Job
	logger  *slog.Logger
	metrics *WorkerMetrics
	health  *HealthServer
}

// NewScheduler validates the timezone. health may be nil.
func NewScheduler(cfg SchedulerConfig, job Job, logger *slog.Logger, metrics *WorkerMetrics, health *HealthServer) (*Scheduler, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	return &Scheduler{
		cfg:     cfg,
		loc:     loc,
		job:     job,
		logger:  logger,
		metrics: metrics,
		health:  health,
	}, nil
}

// RunOnce executes the job a single time.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.metrics.RecordJobRun("started")
	s.logger.Info("sync job started")

	res, err := s.job(ctx)
	s.metrics.RecordJobDuration(time.Since(start).Seconds())
	s.metrics.RecordTablesLoaded(res.TablesLoaded)

	report := RunReport{RunID: res.RunID, FinishedAt: time.Now()}
	if err != nil {
		s.metrics.RecordJobRun("failure")
		report.Status = "failure"
		report.Error = err.Error()
		s.setLastRun(report)
		s.logger.Error("sync job failed",
			slog.String("run_id", res.RunID),
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)))
		return err
	}

	s.metrics.RecordJobRun("success")
	s.metrics.RecordLastSuccess()
	report.Status = "success"
	s.setLastRun(report)
	s.logger.Info("sync job completed",
		slog.String("run_id", res.RunID),
		slog.Int("tables_loaded", res.TablesLoaded),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Start registers the job on the cron schedule and blocks until ctx is
// canceled and any in-flight run has returned.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.SkipIfStillRunning(&cronLogger{logger: s.logger, metrics: s.metrics})),
	)

	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		_ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()

	if s.health != nil {
		s.health.SetReady(true)
	}
	s.logger.Info("worker started",
		slog.String("schedule", s.cfg.Schedule),
		slog.String("timezone", s.loc.String()))

	<-ctx.Done()

	if s.health != nil {
		s.health.SetReady(false)
	}
	s.logger.Info("worker stopping, waiting for running job")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) setLastRun(r RunReport) {
	if s.health != nil {
		s.health.SetLastRun(r)
	}
}

// cronLogger adapts slog to cron.Logger and counts skipped ticks.
type cronLogger struct {
	logger  *slog.Logger
	metrics *WorkerMetrics
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		l.metrics.RecordJobRun("skipped")
		l.logger.Warn("sync job still running, skipping scheduled run")
		return
	}
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
