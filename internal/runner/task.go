package runner

import (
	"context"
	"sync"
	"time"
)

// Task represents a background task that can be scheduled
type Task interface {
	// Name returns the unique name of the task
	Name() string

	// Schedule returns the cron expression, seconds field first, or a
	// descriptor such as "@every 15m".
	Schedule() string

	Run(ctx context.Context) error

	// Timeout returns the maximum time this task should run
	Timeout() time.Duration
}

// TaskRegistry holds all registered tasks
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]Task),
	}
}

// Register adds a task, replacing any task with the same name.
func (r *TaskRegistry) Register(task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.Name()] = task
}

func (r *TaskRegistry) Get(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, exists := r.tasks[name]
	return task, exists
}

// All returns a snapshot of the registered tasks.
func (r *TaskRegistry) All() map[string]Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Task, len(r.tasks))
	for k, v := range r.tasks {
		out[k] = v
	}
	return out
}
