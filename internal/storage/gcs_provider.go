package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSProvider implements the storage.Provider interface for Google Cloud
// Storage, as an alternative sink for deployments already on GCP.
type GCSProvider struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSProvider initializes a new GCS client and verifies the connection.
// Authentication is handled via Google's Application Default Credentials.
func NewGCSProvider(ctx context.Context, bucketName string, logger *zap.Logger) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	// Fail fast on startup when the bucket is missing or inaccessible.
	if _, err := client.Bucket(bucketName).Attrs(ctx); err != nil {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("closing GCS client after bucket check failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucketName, err)
	}

	return &GCSProvider{client: client, bucket: bucketName, logger: logger}, nil
}

// Put uploads the object through a bucket writer. Close finalizes the
// upload and must succeed for the write to be durable.
func (g *GCSProvider) Put(ctx context.Context, objectKey, contentType string, data []byte) error {
	wc := g.client.Bucket(g.bucket).Object(objectKey).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		if cerr := wc.Close(); cerr != nil {
			g.logger.Warn("closing GCS writer after write failure", zap.Error(cerr))
		}
		return fmt.Errorf("write GCS object %s: %w", objectKey, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finalize GCS object %s: %w", objectKey, err)
	}
	return nil
}

// Close releases the underlying GCS client.
func (g *GCSProvider) Close() error {
	return g.client.Close()
}
