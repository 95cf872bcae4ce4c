package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/tracing"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// ErrInvalidPublicID is returned when an identifier does not name a managed asset
var ErrInvalidPublicID = errors.New("invalid public id")

// publicIDPattern matches "<folder>/<file>" at the end of an asset URL
var publicIDPattern = regexp.MustCompile(`((?:avatars|covers|thumbnails|videos)/[^/?#]+)(?:[?#].*)?$`)

// objectClient is the subset of *minio.Client used by Storage
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Storage is the media store: it pushes local files to object storage and
// hands back a public URL plus the identifier needed to delete them again.
type Storage struct {
	client     objectClient
	bucketName string
	baseURL    string
	logger     *logging.Logger
}

// New creates a new storage client and makes sure the bucket exists
func New(ctx context.Context, cfg config.StorageConfig, logger *logging.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	s := newWithClient(client, cfg, logger)
	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func newWithClient(client objectClient, cfg config.StorageConfig, logger *logging.Logger) *Storage {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Storage{
		client:     client,
		bucketName: cfg.BucketName,
		baseURL:    strings.TrimRight(cfg.StoragePublicBaseURL(), "/"),
		logger:     logger,
	}
}

func (s *Storage) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: region})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Upload pushes localPath into folder and returns the stored asset.
// The local file is removed whether or not the upload succeeds.
func (s *Storage) Upload(ctx context.Context, localPath string, folder models.MediaFolder, kind models.MediaKind) (*models.Asset, error) {
	defer os.Remove(localPath)

	span, ctx := tracing.StartSpan(ctx, "storage.upload")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "folder", string(folder))

	publicID := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), strings.ToLower(filepath.Ext(localPath)))
	start := time.Now()

	info, err := s.client.FPutObject(ctx, s.bucketName, publicID, localPath, minio.PutObjectOptions{
		ContentType: getContentType(localPath),
	})
	duration := time.Since(start)
	s.logger.LogStorageOperation("upload", s.bucketName, publicID, info.Size, duration, err)

	if err != nil {
		tracing.LogError(span, err)
		metrics.RecordStorageOperation("upload", "failed", duration.Seconds())
		metrics.RecordMediaUpload(string(kind), "failed", 0)
		return nil, fmt.Errorf("failed to upload %s: %w", folder, err)
	}

	metrics.RecordStorageOperation("upload", "success", duration.Seconds())
	metrics.RecordMediaUpload(string(kind), "success", info.Size)

	return &models.Asset{
		URL:      s.URL(publicID),
		PublicID: publicID,
		Kind:     kind,
	}, nil
}

// Delete removes the asset identified by publicID
func (s *Storage) Delete(ctx context.Context, publicID string, kind models.MediaKind) error {
	if !publicIDPattern.MatchString(publicID) || strings.Count(publicID, "/") != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidPublicID, publicID)
	}

	span, ctx := tracing.StartSpan(ctx, "storage.delete")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "public_id", publicID)

	start := time.Now()
	err := s.client.RemoveObject(ctx, s.bucketName, publicID, minio.RemoveObjectOptions{})
	duration := time.Since(start)
	s.logger.LogStorageOperation("delete", s.bucketName, publicID, 0, duration, err)

	if err != nil {
		tracing.LogError(span, err)
		metrics.RecordStorageOperation("delete", "failed", duration.Seconds())
		return fmt.Errorf("failed to delete %s %s: %w", kind, publicID, err)
	}

	metrics.RecordStorageOperation("delete", "success", duration.Seconds())
	return nil
}

// URL returns the public URL of an asset
func (s *Storage) URL(publicID string) string {
	return s.baseURL + "/" + publicID
}

// PublicIDFromURL extracts "<folder>/<file>" from a stored asset URL.
// It returns false for empty or foreign URLs.
func PublicIDFromURL(url string) (string, bool) {
	m := publicIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// getContentType returns the content type based on file extension
func getContentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
