package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Push(&Task{ID: id, JobID: "job-" + id}))
	}
	assert.Equal(t, 3, q.Size())

	ctx := context.Background()
	for _, want := range []string{"a", "b", "c"} {
		task, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, task.ID)
		assert.False(t, task.CreatedAt.IsZero())
	}

	_, err := q.TryPop()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestInMemoryQueue_PopWaitsForPush(t *testing.T) {
	q := NewInMemoryQueue()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(&Task{ID: "late"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	task, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", task.ID)
}

func TestInMemoryQueue_PopRespectsContext(t *testing.T) {
	q := NewInMemoryQueue()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Push(&Task{ID: "left"}))
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Push(&Task{ID: "x"}), ErrQueueClosed)

	task, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "left", task.ID)

	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestInMemoryQueue_CloseWakesWaiter(t *testing.T) {
	q := NewInMemoryQueue()
	errs := make(chan error, 1)

	go func() {
		_, err := q.Pop(context.Background())
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Pop did not return after Close")
	}
}
