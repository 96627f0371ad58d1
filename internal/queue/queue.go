// Package queue defines the interface for the work-queue consumer side.
// This abstraction allows the application to be independent of a specific
// broker implementation and lets tests inject failing/succeeding fakes to
// exercise the loop's reconnect behavior.
package queue

import (
	"context"
	"errors"
)

// ErrEmpty is returned by Pop when the bounded blocking wait elapsed with
// no item available. It is a normal wake-up, not a failure.
var ErrEmpty = errors.New("queue: no item available")

// ErrConnection tags Pop failures caused by an unusable broker connection.
// Callers route these through Reconnect; any other Pop error is a broker
// reply that reconnecting will not fix.
var ErrConnection = errors.New("queue: broker connection unusable")

// Consumer defines the common interface for a blocking work-queue consumer.
type Consumer interface {
	// Pop blocks for up to the configured wait timeout and returns the raw
	// payload of the next item. It returns ErrEmpty on a quiet timeout and
	// an error wrapping ErrConnection when the broker connection is
	// unusable.
	Pop(ctx context.Context) (string, error)

	// Reconnect rebuilds the broker connection from the same configured
	// parameters and probes its liveness.
	Reconnect(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
