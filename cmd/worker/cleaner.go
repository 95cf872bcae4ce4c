package main

import (
	"context"
	"time"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/queue"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const (
	lockTTL       = 2 * time.Minute
	deleteTimeout = 30 * time.Second
)

type assetDeleter interface {
	Delete(ctx context.Context, publicID string, kind models.MediaKind) error
}

type retryPublisher interface {
	PublishToRetryQueue(ctx context.Context, asset *models.OrphanedAsset, reason string) error
}

type assetLocker interface {
	AcquireLock(ctx context.Context, resource string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, resource string) error
}

// cleaner deletes orphaned media reported by the API
type cleaner struct {
	store   assetDeleter
	retries retryPublisher
	locks   assetLocker // optional
	logger  *logging.Logger
}

func newCleaner(store assetDeleter, retries retryPublisher, locks assetLocker, logger *logging.Logger) *cleaner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &cleaner{store: store, retries: retries, locks: locks, logger: logger}
}

// handle deletes one orphaned asset. A failed delete is rescheduled through the
// retry queue, which parks the asset in the dead letter queue after queue.MaxRetries.
// The returned error is non-nil only when the retry could not be scheduled.
func (w *cleaner) handle(ctx context.Context, asset *models.OrphanedAsset) error {
	log := w.logger.
		WithField("public_id", asset.PublicID).
		WithField("kind", asset.Kind).
		WithField("retry", asset.RetryCount)

	if w.locks != nil {
		resource := "orphan:" + asset.PublicID
		acquired, err := w.locks.AcquireLock(ctx, resource, lockTTL)
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to acquire cleanup lock, deleting without it")
		case !acquired:
			log.Debug("Asset is being cleaned by another worker")
			metrics.RecordOrphanCleanup("skipped")
			return nil
		default:
			defer func() {
				if err := w.locks.ReleaseLock(context.WithoutCancel(ctx), resource); err != nil {
					log.WithError(err).Warn("Failed to release cleanup lock")
				}
			}()
		}
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeout)
	err := w.store.Delete(deleteCtx, asset.PublicID, asset.Kind)
	cancel()

	if err == nil {
		metrics.RecordOrphanCleanup("deleted")
		log.Info("Orphaned asset deleted")
		return nil
	}

	log.WithError(err).Warn("Failed to delete orphaned asset")
	if asset.RetryCount >= queue.MaxRetries {
		metrics.RecordOrphanCleanup("dead_lettered")
	} else {
		metrics.RecordOrphanCleanup("retried")
	}
	return w.retries.PublishToRetryQueue(ctx, asset, err.Error())
}
