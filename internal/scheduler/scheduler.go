// Package scheduler runs periodic background tasks using gocron.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ErrInvalidInterval is returned for tasks with a non-positive interval.
var ErrInvalidInterval = errors.New("task interval must be positive")

// TaskFunc is the work performed on every run of a task.
type TaskFunc func(ctx context.Context) error

// Task is a named job executed at a fixed interval.
type Task struct {
	Name     string
	Interval time.Duration
	Run      TaskFunc
}

// Scheduler manages periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a scheduler. gocron logs through the given logger.
func New(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Add registers a task. Tasks may be added before or after Start.
func (s *Scheduler) Add(task Task) error {
	if task.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, task.Name)
	}
	if task.Run == nil {
		return fmt.Errorf("task %q has no function", task.Name)
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(task.Interval),
		gocron.NewTask(func() { s.runTask(task) }),
		gocron.WithName(task.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error("Failed to schedule task", "task_name", task.Name, "interval", task.Interval, "error", err)
		return fmt.Errorf("failed to schedule task %q: %w", task.Name, err)
	}

	s.logger.Debug("Scheduled task", "task_name", task.Name, "interval", task.Interval)
	return nil
}

func (s *Scheduler) runTask(task Task) {
	startTime := time.Now()
	if err := task.Run(s.ctx); err != nil {
		s.logger.Error("Scheduled task failed", "task_name", task.Name, "error", err)
		return
	}
	s.logger.Debug("Finished scheduled task", "task_name", task.Name, "duration", time.Since(startTime))
}

// Start begins executing scheduled tasks.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if !s.running {
		return nil
	}
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	s.running = false
	s.logger.Info("Scheduler stopped")
	return nil
}
