package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one unit of scheduled work
type Job func(ctx context.Context) error

// Scheduler runs a job immediately and then on every interval tick.
// Runs never overlap: a tick that fires while the job is busy is dropped.
type Scheduler struct {
	job      Job
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(job Job, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		job:      job,
		interval: interval,
		logger:   logger,
	}
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.Run(ctx)
	}()
}

// Stop stops the scheduler and waits for the current run to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

// Run is the scheduler loop. It blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	s.runJob(ctx, 1)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for run := 2; ; run++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, run)
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, run int) {
	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed",
			zap.Int("run", run),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}
	s.logger.Info("scheduled run finished",
		zap.Int("run", run),
		zap.Duration("took", time.Since(start)))
}
