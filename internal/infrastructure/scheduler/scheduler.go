// Package scheduler runs periodic background jobs next to the API server.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/pkg/logger"
	"github.com/alem-hub/wellness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job is a unit of periodic work.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler stops.
	Run(ctx context.Context) error
}

// Schedule defines when a job should run.
type Schedule interface {
	Next(t time.Time) time.Time
	String() string
}

// IntervalSchedule runs a job at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// Every creates an IntervalSchedule.
func Every(interval time.Duration) IntervalSchedule {
	return IntervalSchedule{Interval: interval}
}

// Next returns the next scheduled time.
func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval)
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName   string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Manual    bool
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Scheduler.
type Config struct {
	Logger *zap.Logger
	Clock  timeutil.Clock

	// Tick is how often due jobs are checked (default 1s).
	Tick time.Duration
}

// Scheduler runs registered jobs on their schedules. A job never overlaps
// with itself: a due run is skipped while the previous one is in flight.
type Scheduler struct {
	mu     sync.Mutex
	logger *zap.Logger
	clock  timeutil.Clock
	tick   time.Duration

	jobs    map[string]*scheduledJob
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type scheduledJob struct {
	job      Job
	schedule Schedule
	nextRun  time.Time
	busy     bool
	last     *JobResult
	runs     int64
	failures int64
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.NewSystemClock(time.UTC)
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &Scheduler{
		logger: cfg.Logger.With(logger.Component("scheduler")),
		clock:  cfg.Clock,
		tick:   cfg.Tick,
		jobs:   make(map[string]*scheduledJob),
	}
}

// Register adds a job. Its first run is one schedule step from now.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, job.Name())
	}
	s.jobs[job.Name()] = &scheduledJob{
		job:      job,
		schedule: schedule,
		nextRun:  schedule.Next(s.clock.Now()),
	}

	s.logger.Info("job registered", zap.String("job", job.Name()), zap.String("schedule", schedule.String()))
	return nil
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerAlreadyRunning
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue starts every job whose next run has passed.
func (s *Scheduler) runDue(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sj := range s.jobs {
		if sj.busy || now.Before(sj.nextRun) {
			continue
		}
		sj.busy = true
		sj.nextRun = sj.schedule.Next(now)

		s.wg.Add(1)
		go func(sj *scheduledJob) {
			defer s.wg.Done()
			s.execute(ctx, sj, false)
		}(sj)
	}
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.Lock()
	sj, exists := s.jobs[jobName]
	if exists && sj.busy {
		s.mu.Unlock()
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobBusy, jobName)
	}
	if exists {
		sj.busy = true
	}
	s.mu.Unlock()

	if !exists {
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}
	result := s.execute(ctx, sj, true)
	return result, result.Err
}

func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob, manual bool) JobResult {
	name := sj.job.Name()
	start := s.clock.Now()
	began := time.Now()

	err := sj.job.Run(ctx)

	result := JobResult{
		JobName:   name,
		StartedAt: start,
		Duration:  time.Since(began),
		Err:       err,
		Manual:    manual,
	}

	s.mu.Lock()
	sj.busy = false
	sj.runs++
	if err != nil {
		sj.failures++
	}
	sj.last = &result
	s.mu.Unlock()

	fields := []zap.Field{zap.String("job", name), logger.Latency(result.Duration), zap.Bool("manual", manual)}
	if err != nil {
		s.logger.Error("job failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Debug("job completed", fields...)
	}
	return result
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	NextRun  time.Time  `json:"nextRun"`
	Runs     int64      `json:"runs"`
	Failures int64      `json:"failures"`
	LastRun  *time.Time `json:"lastRun,omitempty"`
	LastErr  string     `json:"lastError,omitempty"`
}

// Info returns the state of a job.
func (s *Scheduler) Info(jobName string) (JobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sj, exists := s.jobs[jobName]
	if !exists {
		return JobInfo{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}

	info := JobInfo{
		Name:     jobName,
		Schedule: sj.schedule.String(),
		NextRun:  sj.nextRun,
		Runs:     sj.runs,
		Failures: sj.failures,
	}
	if sj.last != nil {
		at := sj.last.StartedAt
		info.LastRun = &at
		if sj.last.Err != nil {
			info.LastErr = sj.last.Err.Error()
		}
	}
	return info, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrNilJob                  = errors.New("job cannot be nil")
	ErrNilSchedule             = errors.New("schedule cannot be nil")
	ErrJobAlreadyExists        = errors.New("job already exists")
	ErrJobNotFound             = errors.New("job not found")
	ErrJobBusy                 = errors.New("job is already running")
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")
	ErrSchedulerNotRunning     = errors.New("scheduler is not running")
)
