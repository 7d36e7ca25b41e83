package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/tasks"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (q *recordingQueue) Enqueue(task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return "task-1", nil
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSweeper) SweepDanglingReferences(ctx context.Context) (*catalog.SweepReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &catalog.SweepReport{}, nil
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"30 3 * * *", true},
		{"*/15 * * * *", true},
		{"0 0 * * 0", true},
		{"", false},
		{"every day", false},
		{"0 0 0 * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNextRunAfter(t *testing.T) {
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := NextRunAfter("30 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 3, 30, 0, 0, time.UTC), next)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Daily at 03:30", Describe("30 3 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", Describe("5 4 * * *"))
}

func TestSweepScheduler_RunNowEnqueues(t *testing.T) {
	queue := &recordingQueue{}
	s := NewSweepScheduler("30 3 * * *", queue, nil, quietLogger())

	s.RunNow(context.Background())

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, tasks.SweepReferencesTask{Trigger: "schedule"}, queue.tasks[0])
}

func TestSweepScheduler_RunNowInlineWithoutQueue(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewSweepScheduler("30 3 * * *", nil, sweeper, quietLogger())

	s.RunNow(context.Background())

	assert.Equal(t, 1, sweeper.calls)
}

func TestSweepScheduler_EnqueueFailureIsLogged(t *testing.T) {
	queue := &recordingQueue{err: errors.New("queue closed")}
	s := NewSweepScheduler("30 3 * * *", queue, nil, quietLogger())

	assert.NotPanics(t, func() { s.RunNow(context.Background()) })
	assert.Empty(t, queue.tasks)
}

func TestSweepScheduler_StartStop(t *testing.T) {
	s := NewSweepScheduler("30 3 * * *", &recordingQueue{}, nil, quietLogger())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRunTime())
	assert.True(t, s.NextRunTime().After(time.Now()))

	// Starting twice is a no-op.
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestSweepScheduler_StopsWithContext(t *testing.T) {
	s := NewSweepScheduler("30 3 * * *", &recordingQueue{}, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestSweepScheduler_StartErrors(t *testing.T) {
	err := NewSweepScheduler("not a schedule", &recordingQueue{}, nil, quietLogger()).Start(context.Background())
	assert.Error(t, err)

	err = NewSweepScheduler("30 3 * * *", nil, nil, quietLogger()).Start(context.Background())
	assert.Error(t, err)
}
