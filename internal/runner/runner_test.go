package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (t *countingTask) Name() string           { return t.name }
func (t *countingTask) Schedule() string       { return t.schedule }
func (t *countingTask) Timeout() time.Duration { return time.Second }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	return t.err
}

func TestRegistry(t *testing.T) {
	reg := NewTaskRegistry()
	reg.Register(&countingTask{name: "a", schedule: "@every 1h"})

	_, ok := reg.Get("a")
	assert.True(t, ok)
	_, ok = reg.Get("b")
	assert.False(t, ok)

	all := reg.All()
	delete(all, "a")
	assert.Len(t, reg.All(), 1)
}

func TestRunNow(t *testing.T) {
	task := &countingTask{name: "a", schedule: "@every 1h", err: errors.New("boom")}
	reg := NewTaskRegistry()
	reg.Register(task)
	r := NewRunner(reg, nil)

	assert.EqualError(t, r.RunNow(context.Background(), "a"), "boom")
	assert.Equal(t, int32(1), task.runs.Load())
	assert.Error(t, r.RunNow(context.Background(), "missing"))
}

func TestStartRunsOnSchedule(t *testing.T) {
	task := &countingTask{name: "tick", schedule: "* * * * * *"}
	reg := NewTaskRegistry()
	reg.Register(task)
	r := NewRunner(reg, nil)

	require.NoError(t, r.Start(context.Background()))
	assert.Eventually(t, func() bool { return task.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	r.Stop()
}

func TestStopRejectsLaterRuns(t *testing.T) {
	task := &countingTask{name: "a", schedule: "@every 1h"}
	reg := NewTaskRegistry()
	reg.Register(task)
	r := NewRunner(reg, nil)
	require.NoError(t, r.Start(context.Background()))

	// Runs racing with Stop either finish before it returns or are refused.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.RunNow(context.Background(), "a")
			if err != nil {
				assert.ErrorIs(t, err, ErrStopped)
			}
		}()
	}
	r.Stop()
	wg.Wait()

	assert.ErrorIs(t, r.RunNow(context.Background(), "a"), ErrStopped)
	assert.LessOrEqual(t, task.runs.Load(), int32(8))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	reg := NewTaskRegistry()
	reg.Register(&countingTask{name: "bad", schedule: "whenever"})
	assert.Error(t, NewRunner(reg, nil).Start(context.Background()))
}
