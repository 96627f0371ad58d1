// Package worker implements the consume-enrich-persist loop and its
// failure-recovery policy.
package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/riverline/enrichd/internal/clock"
	"github.com/riverline/enrichd/internal/message"
	"github.com/riverline/enrichd/internal/metrics"
	"github.com/riverline/enrichd/internal/queue"
	"github.com/riverline/enrichd/internal/storage"
)

// Enricher augments a validated link with fields from the detail API.
type Enricher interface {
	Enrich(ctx context.Context, link string) (message.Item, error)
}

// Config controls Worker recovery behavior.
type Config struct {
	// ReconnectBackoff is the fixed wait between broker reconnect attempts.
	ReconnectBackoff time.Duration
	// ErrorDelay is the pause after an unexpected failure, so a persistent
	// bug cannot spin the loop at full speed.
	ErrorDelay time.Duration
}

// Worker owns the blocking dequeue and drives each item through
// validate, enrich, merge, persist. Exactly one item is in flight at a time;
// scaling out means running more processes against the same queue.
type Worker struct {
	queue    queue.Consumer
	enricher Enricher
	store    storage.Provider
	clock    clock.Clock
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Worker.
func New(
	q queue.Consumer,
	e Enricher,
	store storage.Provider,
	clk clock.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = 5 * time.Second
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = time.Second
	}
	return &Worker{
		queue:    q,
		enricher: e,
		store:    store,
		clock:    clk,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run blocks, consuming queue items until the context finishes. Every
// failure apart from context cancellation is contained within one
// iteration: bad items are dropped with a log entry and broker outages go
// through the reconnect path, so the loop itself never terminates.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("consumer loop starting")
	metrics.SetConnected(true)

	for {
		if ctx.Err() != nil {
			w.logger.Info("consumer loop stopping", zap.Error(ctx.Err()))
			return
		}

		payload, err := w.queue.Pop(ctx)
		switch {
		case errors.Is(err, queue.ErrEmpty):
			// Periodic wake-up with nothing queued. Looping here keeps the
			// process observably live and surfaces connection errors
			// promptly instead of blocking forever.
			continue
		case errors.Is(err, queue.ErrConnection):
			if ctx.Err() != nil {
				w.logger.Info("consumer loop stopping", zap.Error(ctx.Err()))
				return
			}
			w.logger.Error("broker connection error, attempting to reconnect", zap.Error(err))
			w.reconnect(ctx)
			continue
		case err != nil:
			if ctx.Err() != nil {
				w.logger.Info("consumer loop stopping", zap.Error(ctx.Err()))
				return
			}
			// A broker reply error (wrong key type, denied command) is not
			// fixed by reconnecting; pause before the next attempt.
			w.logger.Error("unexpected broker error", zap.Error(err))
			w.sleep(ctx, w.cfg.ErrorDelay)
			continue
		}

		w.processPayload(ctx, payload)
	}
}

// reconnect rebuilds the broker connection until it succeeds or the context
// ends. There is no bounded attempt count; a long broker outage just keeps
// the loop here.
func (w *Worker) reconnect(ctx context.Context) {
	metrics.SetConnected(false)
	for ctx.Err() == nil {
		metrics.ObserveReconnect()
		if err := w.queue.Reconnect(ctx); err != nil {
			w.logger.Error("broker reconnect failed", zap.Error(err))
			w.sleep(ctx, w.cfg.ReconnectBackoff)
			continue
		}
		w.logger.Info("broker reconnected")
		metrics.SetConnected(true)
		return
	}
}

// processPayload runs one item end to end. Each stage failure drops the
// item and returns; a panic anywhere in the pipeline is recovered so an
// unanticipated bug in one item's processing cannot take the daemon down.
func (w *Worker) processPayload(ctx context.Context, payload string) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("unexpected failure processing item", zap.Any("panic", r))
			metrics.ObserveItem("panic")
			w.sleep(ctx, w.cfg.ErrorDelay)
		}
	}()

	item, err := message.Decode(payload)
	if err != nil {
		w.logger.Error("failed to parse item as JSON", zap.Error(err))
		metrics.ObserveItem("decode_error")
		return
	}

	name := item.Name()
	w.logger.Info("processing item", zap.String("name", name))

	link, err := item.Link()
	if err != nil {
		w.logger.Error("invalid URL in item", zap.String("name", name), zap.Error(err))
		metrics.ObserveItem("invalid_link")
		return
	}

	enrichment, err := w.enricher.Enrich(ctx, link)
	if err != nil {
		// The enricher already logged the failure category and URL.
		w.logger.Warn("item dropped after enrichment failure", zap.String("name", name))
		metrics.ObserveItem("enrichment_failed")
		return
	}
	if len(enrichment) == 0 {
		w.logger.Warn("item dropped, detail API returned no fields", zap.String("name", name))
		metrics.ObserveItem("empty_enrichment")
		return
	}

	if !w.persist(ctx, message.Merge(item, enrichment), name) {
		metrics.ObserveItem("persist_failed")
		return
	}
	metrics.ObserveItem("stored")
}

// persist serializes the merged record and writes it under a fresh
// timestamp-partitioned key. A failed write loses only this item; there is
// no retry or dead-letter queue.
func (w *Worker) persist(ctx context.Context, record message.Item, name string) bool {
	data, err := message.Encode(record)
	if err != nil {
		w.logger.Error("failed to serialize record", zap.String("name", name), zap.Error(err))
		metrics.ObserveStorageWrite(false)
		return false
	}

	key := storage.ObjectKey(w.clock.Now())
	if err := w.store.Put(ctx, key, "application/json", data); err != nil {
		w.logger.Error("failed to store record",
			zap.String("name", name),
			zap.String("key", key),
			zap.Error(err),
		)
		metrics.ObserveStorageWrite(false)
		return false
	}

	w.logger.Info("stored record", zap.String("name", name), zap.String("key", key))
	metrics.ObserveStorageWrite(true)
	return true
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
