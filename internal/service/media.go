package service

import (
	"context"
	"os"
	"time"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/storage"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// MediaUpload is a local temp file headed for a media store folder
type MediaUpload struct {
	Path   string
	Folder models.MediaFolder
	Kind   models.MediaKind
}

// uploadOf describes a received file. A nil file yields an upload that UploadAll skips.
func uploadOf(f *upload.File, folder models.MediaFolder) MediaUpload {
	if f == nil {
		return MediaUpload{Folder: folder}
	}
	return MediaUpload{Path: f.Path, Folder: folder, Kind: f.Kind}
}

func removeLocal(uploads ...MediaUpload) {
	for _, u := range uploads {
		if u.Path != "" {
			os.Remove(u.Path)
		}
	}
}

// Media runs the upload/replace/delete lifecycle against the media store,
// including best-effort compensating deletes
type Media struct {
	store   MediaStore
	orphans OrphanReporter
	logger  *logging.Logger
}

// NewMedia creates the media lifecycle. orphans may be nil.
func NewMedia(store MediaStore, orphans OrphanReporter, logger *logging.Logger) *Media {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Media{store: store, orphans: orphans, logger: logger}
}

// UploadAll uploads every file in order. Entries with an empty path are skipped
// and yield a nil asset. If any upload fails, the assets already uploaded are
// discarded and the remaining local files removed.
func (m *Media) UploadAll(ctx context.Context, reason string, uploads ...MediaUpload) ([]*models.Asset, error) {
	assets := make([]*models.Asset, len(uploads))

	for i, u := range uploads {
		if u.Path == "" {
			continue
		}

		asset, err := m.store.Upload(ctx, u.Path, u.Folder, u.Kind)
		if err != nil {
			removeLocal(uploads[i+1:]...)
			m.Discard(ctx, reason, assets...)
			return nil, internalError("uploading "+string(u.Folder), err)
		}
		assets[i] = asset
	}

	return assets, nil
}

// Discard deletes assets left behind by a failed operation. Failures are logged
// and reported for retry but never returned.
func (m *Media) Discard(ctx context.Context, reason string, assets ...*models.Asset) {
	for _, asset := range assets {
		if asset == nil {
			continue
		}

		// The request may already be cancelled; cleanup still has to run
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		err := m.store.Delete(cleanupCtx, asset.PublicID, asset.Kind)
		cancel()

		m.logger.LogCleanup(asset.PublicID, reason, err)
		metrics.RecordCompensatingDelete(err == nil)
		if err != nil {
			m.reportOrphan(ctx, asset, reason)
		}
	}
}

// DiscardURL deletes the asset behind a stored URL. Empty and foreign URLs are ignored.
func (m *Media) DiscardURL(ctx context.Context, reason, url string, kind models.MediaKind) {
	publicID, ok := storage.PublicIDFromURL(url)
	if !ok {
		if url != "" {
			m.logger.WithField("url", url).Warn("Stored media URL has no public id")
		}
		return
	}
	m.Discard(ctx, reason, &models.Asset{URL: url, PublicID: publicID, Kind: kind})
}

// Replace uploads u, hands its URL to persist, then deletes the asset behind oldURL.
// When persist fails the new asset is discarded and the old one kept.
func (m *Media) Replace(ctx context.Context, u MediaUpload, oldURL string, persist func(newURL string) error) (*models.Asset, error) {
	assets, err := m.UploadAll(ctx, "replace "+string(u.Folder), u)
	if err != nil {
		return nil, err
	}
	asset := assets[0]

	if err := persist(asset.URL); err != nil {
		m.Discard(ctx, "persist "+string(u.Folder)+" failed", asset)
		return nil, err
	}

	m.DiscardURL(ctx, "replaced "+string(u.Folder), oldURL, u.Kind)
	return asset, nil
}

func (m *Media) reportOrphan(ctx context.Context, asset *models.Asset, reason string) {
	if m.orphans == nil {
		return
	}

	orphan := &models.OrphanedAsset{
		PublicID:  asset.PublicID,
		Kind:      asset.Kind,
		Reason:    reason,
		CreatedAt: time.Now(),
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := m.orphans.PublishOrphan(publishCtx, orphan); err != nil {
		m.logger.WithError(err).WithField("public_id", asset.PublicID).Error("Failed to report orphaned asset")
	}
}
