package queue

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConsumer(t *testing.T, mr *miniredis.Miniredis, popTimeout time.Duration) *RedisConsumer {
	t.Helper()

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	c := NewRedisConsumer(RedisOptions{
		Host:       mr.Host(),
		Port:       port,
		Queue:      "processing_queue",
		PopTimeout: popTimeout,
	}, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisConsumer_PopReturnsQueuedPayload(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := newTestConsumer(t, mr, time.Second)

	_, err := mr.Lpush("processing_queue", `{"name":"x","link":"https://example.com/a"}`)
	require.NoError(t, err)

	payload, err := c.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, `{"name":"x","link":"https://example.com/a"}`, payload)
}

func TestRedisConsumer_PopFIFO(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := newTestConsumer(t, mr, time.Second)

	mr.Push("processing_queue", "first")
	mr.Push("processing_queue", "second")

	payload, err := c.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", payload)

	payload, err = c.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "second", payload)
}

func TestRedisConsumer_PopEmptyTimesOut(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := newTestConsumer(t, mr, 100*time.Millisecond)

	_, err := c.Pop(context.Background())
	require.ErrorIs(t, err, ErrEmpty)
}

func TestRedisConsumer_PopConnectionError(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := newTestConsumer(t, mr, 100*time.Millisecond)

	mr.Close()

	_, err := c.Pop(context.Background())
	require.ErrorIs(t, err, ErrConnection)
	require.NotErrorIs(t, err, ErrEmpty)
}

func TestRedisConsumer_PopReplyErrorIsNotConnectionError(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := newTestConsumer(t, mr, 100*time.Millisecond)

	// A plain string under the queue key makes BLPOP fail with WRONGTYPE,
	// which reconnecting cannot fix.
	require.NoError(t, mr.Set("processing_queue", "not-a-list"))

	_, err := c.Pop(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrConnection)
	require.NotErrorIs(t, err, ErrEmpty)
}

func TestRedisConsumer_Reconnect(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := newTestConsumer(t, mr, time.Second)

	require.NoError(t, c.Reconnect(context.Background()))

	// Popping still works on the rebuilt connection.
	mr.Push("processing_queue", "after-reconnect")
	payload, err := c.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "after-reconnect", payload)
}

func TestRedisConsumer_ReconnectFailsWhileBrokerDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	c := newTestConsumer(t, mr, time.Second)

	mr.Close()

	require.Error(t, c.Reconnect(context.Background()))
}
