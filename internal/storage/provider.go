// Package storage defines the interfaces for a blob storage provider.
// This abstraction allows the application to be independent of a specific
// storage implementation (e.g., an S3-compatible store, Google Cloud
// Storage, or an in-memory map for tests).
package storage

import (
	"context"
)

// Provider defines the common interface for a blob storage provider.
// It abstracts the operation of writing one object.
type Provider interface {
	// Put uploads data to the given object key with the given content type.
	Put(ctx context.Context, objectKey, contentType string, data []byte) error
}

// NoOpProvider is a storage provider that performs no operations.
// It is useful for running the consumer in a dry-run mode where items are
// enriched but the results are discarded.
type NoOpProvider struct{}

// Put for NoOpProvider does nothing and always returns nil.
func (n *NoOpProvider) Put(_ context.Context, _, _ string, _ []byte) error {
	return nil
}
