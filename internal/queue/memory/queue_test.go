package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riverline/enrichd/internal/queue"
)

func TestQueue_PushPop(t *testing.T) {
	t.Parallel()

	q := NewQueue(4, time.Second)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "first"))
	require.NoError(t, q.Push(ctx, "second"))

	payload, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, "first", payload)

	payload, err = q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", payload)
}

func TestQueue_PopTimesOutEmpty(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, 50*time.Millisecond)

	_, err := q.Pop(context.Background())
	require.ErrorIs(t, err, queue.ErrEmpty)
}

func TestQueue_PopHonorsContext(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Pop(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
