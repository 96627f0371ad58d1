// Package memory provides a channel-backed queue consumer for local
// development and tests.
package memory

import (
	"context"
	"time"

	"github.com/riverline/enrichd/internal/queue"
)

// Queue is a bounded in-memory queue satisfying queue.Consumer.
type Queue struct {
	ch         chan string
	popTimeout time.Duration
}

// NewQueue constructs a queue with the provided capacity and pop wait bound.
func NewQueue(capacity int, popTimeout time.Duration) *Queue {
	return &Queue{
		ch:         make(chan string, capacity),
		popTimeout: popTimeout,
	}
}

// Push enqueues a raw payload or returns when the context ends.
func (q *Queue) Push(ctx context.Context, payload string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- payload:
		return nil
	}
}

// Pop returns the next payload, queue.ErrEmpty after the wait bound, or the
// context error on cancellation.
func (q *Queue) Pop(ctx context.Context) (string, error) {
	timer := time.NewTimer(q.popTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", queue.ErrEmpty
	case payload := <-q.ch:
		return payload, nil
	}
}

// Reconnect is a no-op; the in-memory queue has no connection to lose.
func (q *Queue) Reconnect(_ context.Context) error { return nil }

// Close is a no-op.
func (q *Queue) Close() error { return nil }
