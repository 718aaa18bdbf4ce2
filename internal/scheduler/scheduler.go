// Package scheduler runs periodic housekeeping for the embedded SQL store
// on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Maintainer performs one round of housekeeping
type Maintainer interface {
	Optimize() error
}

// Scheduler manages the maintenance schedule
type Scheduler struct {
	target   Maintainer
	schedule cron.Schedule // nil when disabled
	expr     string
	logger   *zap.Logger
	tick     time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	cancel   context.CancelFunc // Cancel function for running jobs
	wg       sync.WaitGroup     // Tracks the loop and spawned job goroutines
	nextRun  time.Time
	lastRun  time.Time
	jobBusy  bool
}

// Parser accepts standard five-field expressions and descriptors like @daily
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New creates a scheduler for expr. An empty expr disables maintenance.
func New(target Maintainer, expr string, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		target: target,
		expr:   expr,
		logger: logger,
		tick:   time.Minute,
		now:    time.Now,
	}
	if expr == "" {
		return s, nil
	}

	schedule, err := Parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", expr, err)
	}
	s.schedule = schedule
	return s, nil
}

// Enabled reports whether a schedule is configured
func (s *Scheduler) Enabled() bool {
	return s.schedule != nil
}

// NextRun returns the next planned run, zero if not running
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRun
}

// LastRun returns when maintenance last started, zero if never
func (s *Scheduler) LastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// Start starts the scheduler. It does nothing when disabled or already
// running.
func (s *Scheduler) Start() {
	if !s.Enabled() {
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.nextRun = s.schedule.Next(s.now())

	// Create cancellable context for all spawned jobs
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	stop := s.stopChan
	s.mu.Unlock()

	s.logger.Info("maintenance scheduled", zap.String("schedule", s.expr), zap.Time("next_run", s.NextRun()))

	s.wg.Add(1)
	go s.run(ctx, stop)
}

// Stop stops the scheduler and waits for a running job to complete
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)

	if s.cancel != nil {
		s.cancel()
	}
	s.nextRun = time.Time{}
	s.mu.Unlock()

	s.wg.Wait()
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.checkDue(ctx)
		}
	}
}

// checkDue starts a job when the next run time has passed. A job still in
// progress causes the slot to be skipped.
func (s *Scheduler) checkDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	if !s.running || now.Before(s.nextRun) {
		s.mu.Unlock()
		return
	}
	s.nextRun = s.schedule.Next(now)
	if s.jobBusy {
		s.mu.Unlock()
		s.logger.Warn("maintenance still running, skipping slot")
		return
	}
	s.jobBusy = true
	s.lastRun = now
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.jobBusy = false
			s.mu.Unlock()
		}()
		s.runJob(ctx)
	}()
}

// runJob executes one maintenance pass
func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		s.logger.Info("maintenance cancelled before start")
		return
	}

	start := s.now()
	if err := s.target.Optimize(); err != nil {
		s.logger.Warn("maintenance failed", zap.Error(err))
		return
	}
	s.logger.Info("maintenance complete",
		zap.Duration("elapsed", s.now().Sub(start)),
		zap.Time("next_run", s.NextRun()),
	)
}
