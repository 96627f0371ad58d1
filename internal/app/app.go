// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riverline/enrichd/internal/api"
	"github.com/riverline/enrichd/internal/clock"
	"github.com/riverline/enrichd/internal/clock/system"
	"github.com/riverline/enrichd/internal/config"
	"github.com/riverline/enrichd/internal/enricher"
	"github.com/riverline/enrichd/internal/logging"
	"github.com/riverline/enrichd/internal/metrics"
	"github.com/riverline/enrichd/internal/queue"
	"github.com/riverline/enrichd/internal/storage"
	storagememory "github.com/riverline/enrichd/internal/storage/memory"
)

// App holds all the shared, long-lived services for the application: the
// logger, queue consumer, enricher, storage provider, and the ops HTTP
// server. It is initialized once at startup and passed to the worker.
type App struct {
	logger   *zap.Logger
	cfg      config.Config
	consumer queue.Consumer
	enricher *enricher.Client
	storage  storage.Provider
	clock    clock.Clock
	ops      *http.Server
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger { return a.logger }

// Config returns the immutable startup configuration.
func (a *App) Config() config.Config { return a.cfg }

// Consumer returns the configured queue consumer.
func (a *App) Consumer() queue.Consumer { return a.consumer }

// Enricher returns the detail API client.
func (a *App) Enricher() *enricher.Client { return a.enricher }

// Storage exposes the configured blob storage provider.
func (a *App) Storage() storage.Provider { return a.storage }

// Clock returns the wall clock used for object key derivation.
func (a *App) Clock() clock.Clock { return a.clock }

// New creates and initializes an App from the validated configuration.
// It is the central point for service initialization and is designed to
// fail fast if any critical service cannot be constructed.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	// Multiple instances of this process compete on the same queue; tag
	// every log line so their output can be told apart.
	logger = logger.With(zap.String("consumer_id", uuid.NewString()))

	metrics.Init()

	store, err := newStorageProvider(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	consumer := newQueueConsumer(cfg, logger)

	detail := enricher.New(cfg.API.Endpoint, cfg.APITimeout(), logger)
	logger.Info("detail API client ready",
		zap.String("endpoint", cfg.API.Endpoint),
		zap.Duration("timeout", cfg.APITimeout()),
	)

	a := &App{
		logger:   logger,
		cfg:      cfg,
		consumer: consumer,
		enricher: detail,
		storage:  store,
		clock:    system.New(),
		ops:      api.NewServer(cfg.Server.Port),
	}

	go func() {
		logger.Info("ops server listening", zap.Int("port", cfg.Server.Port))
		if err := a.ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", zap.Error(err))
		}
	}()

	logger.Info("application services initialized")
	return a, nil
}

func newStorageProvider(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Provider, error) {
	switch cfg.Storage.Provider {
	case "s3":
		logger.Info("using S3 storage provider",
			zap.String("endpoint", cfg.Storage.S3.Endpoint),
			zap.String("bucket", cfg.Storage.S3.Bucket),
			zap.String("region", cfg.Storage.S3.Region),
		)
		return storage.NewS3Provider(ctx, storage.S3Options{
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Endpoint:  cfg.Storage.S3.Endpoint,
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
		})
	case "gcs":
		logger.Info("using GCS storage provider", zap.String("bucket", cfg.Storage.GCS.Bucket))
		return storage.NewGCSProvider(ctx, cfg.Storage.GCS.Bucket, logger)
	case "memory":
		logger.Info("using in-memory storage provider; records will not survive restarts")
		return storagememory.NewBlobStore(), nil
	case "noop":
		logger.Info("using no-op storage provider; records will be discarded")
		return &storage.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}

func newQueueConsumer(cfg config.Config, logger *zap.Logger) queue.Consumer {
	logger.Info("using Redis queue",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
		zap.Int("db", cfg.Redis.DB),
		zap.String("queue", cfg.Queue.Name),
	)
	return queue.NewRedisConsumer(queue.RedisOptions{
		Host:       cfg.Redis.Host,
		Port:       cfg.Redis.Port,
		DB:         cfg.Redis.DB,
		Password:   cfg.Redis.Password,
		Queue:      cfg.Queue.Name,
		PopTimeout: cfg.PopTimeout(),
	}, logger)
}

// Close gracefully shuts down all services in the App container.
func (a *App) Close(ctx context.Context) {
	a.logger.Info("shutting down application services")

	if err := a.ops.Shutdown(ctx); err != nil {
		a.logger.Warn("error shutting down ops server", zap.Error(err))
	}
	if err := a.consumer.Close(); err != nil {
		a.logger.Warn("error closing queue consumer", zap.Error(err))
	}
	if closer, ok := a.storage.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("error closing storage provider", zap.Error(err))
		}
	}

	// Best effort; logging itself may be the thing failing.
	_ = a.logger.Sync()
}
