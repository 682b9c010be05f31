package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrStopped is returned for task runs requested after Stop.
var ErrStopped = errors.New("task runner stopped")

// Runner manages and executes scheduled background tasks
type Runner struct {
	cron     *cron.Cron
	registry *TaskRegistry
	logger   *zap.Logger

	mu       sync.Mutex
	stopping bool
	wg       sync.WaitGroup
}

// NewRunner creates a new task runner
func NewRunner(registry *TaskRegistry, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cron:     cron.New(cron.WithSeconds()),
		registry: registry,
		logger:   logger.Named("runner"),
	}
}

// Start schedules every registered task and returns. Tasks run with ctx
// until Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	for name, task := range r.registry.All() {
		r.logger.Info("registering task", zap.String("task", name), zap.String("schedule", task.Schedule()))

		_, err := r.cron.AddFunc(task.Schedule(), func() {
			r.executeTask(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", name, err)
		}
	}

	r.cron.Start()
	r.logger.Info("task runner started", zap.Int("tasks", len(r.registry.All())))
	return nil
}

// RunNow executes the named task once, outside its schedule.
func (r *Runner) RunNow(ctx context.Context, name string) error {
	task, ok := r.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return r.executeTask(ctx, task)
}

// executeTask runs a single task with timeout and error handling
func (r *Runner) executeTask(ctx context.Context, task Task) error {
	// wg.Add must not race with wg.Wait in Stop.
	r.mu.Lock()
	if r.stopping {
		r.mu.Unlock()
		return ErrStopped
	}
	r.wg.Add(1)
	r.mu.Unlock()
	defer r.wg.Done()

	taskCtx, cancel := context.WithTimeout(ctx, task.Timeout())
	defer cancel()

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		r.logger.Warn("task failed", zap.String("task", task.Name()), zap.Duration("duration", duration), zap.Error(err))
	} else {
		r.logger.Debug("task completed", zap.String("task", task.Name()), zap.Duration("duration", duration))
	}
	return err
}

// Stop gracefully shuts down the runner, waiting for running tasks.
// Later runs return ErrStopped.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.stopping = true
	r.mu.Unlock()

	ctx := r.cron.Stop()
	r.wg.Wait()
	<-ctx.Done()
	r.logger.Info("task runner stopped")
}
