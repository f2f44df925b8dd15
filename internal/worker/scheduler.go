package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler runs the evaluation job periodically.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *EvaluationJob
	interval  time.Duration
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler for job. Runs never overlap: a run still
// in progress when the next tick fires causes that tick to be skipped.
func NewScheduler(job *EvaluationJob, logger zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		job:       job,
		interval:  job.config.Interval,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the evaluation job, runs it once immediately, and starts
// the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.logger.Debug().Msg("scheduler: running alert evaluation")
		s.job.Run(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling evaluation job: %w", err)
	}

	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
	s.scheduler.StartAsync()
	return nil
}

// Stop cancels a run in progress and stops future runs.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// IsRunning reports whether the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	return s.scheduler.IsRunning()
}
