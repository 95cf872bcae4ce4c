// Package upload receives multipart media fields into temporary files.
package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// Multipart field names accepted by the API
const (
	FieldAvatar     = "avatar"
	FieldCoverImage = "coverImage"
	FieldThumbnail  = "thumbnail"
	FieldVideo      = "video"
)

var allowedTypes = map[models.MediaKind]struct {
	extensions map[string]bool
	mimeTypes  map[string]bool
}{
	models.MediaKindImage: {
		extensions: map[string]bool{".jpeg": true, ".jpg": true, ".png": true},
		mimeTypes:  map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true},
	},
	models.MediaKindVideo: {
		extensions: map[string]bool{".mp4": true, ".avi": true, ".mov": true, ".mkv": true},
		mimeTypes: map[string]bool{
			"video/mp4": true, "video/x-msvideo": true, "video/avi": true, "video/msvideo": true,
			"video/quicktime": true, "video/x-matroska": true,
		},
	},
}

// File is an uploaded field saved to the temp directory
type File struct {
	Field        string
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
	Kind         models.MediaKind
}

// Remove deletes the temp file. It is safe to call more than once.
func (f *File) Remove() {
	if f != nil && f.Path != "" {
		os.Remove(f.Path)
	}
}

// Cleanup removes every non-nil file
func Cleanup(files ...*File) {
	for _, f := range files {
		f.Remove()
	}
}

// Receiver validates and stores multipart files
type Receiver struct {
	tempDir       string
	maxImageBytes int64
	maxVideoBytes int64
}

// NewReceiver creates a receiver and its temp directory
func NewReceiver(cfg config.UploadConfig) (*Receiver, error) {
	dir := cfg.TempDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "vidtube")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Receiver{
		tempDir:       dir,
		maxImageBytes: cfg.MaxImageBytes,
		maxVideoBytes: cfg.MaxVideoBytes,
	}, nil
}

func (r *Receiver) limit(kind models.MediaKind) int64 {
	if kind == models.MediaKindVideo {
		return r.maxVideoBytes
	}
	return r.maxImageBytes
}

// Validate checks the declared type, extension and size of a file header
func (r *Receiver) Validate(field string, fh *multipart.FileHeader, kind models.MediaKind) error {
	allowed, ok := allowedTypes[kind]
	if !ok {
		return apperror.BadRequest("unsupported media kind %q", kind)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mimeType := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0]))
	if !allowed.extensions[ext] || !allowed.mimeTypes[mimeType] {
		if kind == models.MediaKindImage {
			return apperror.BadRequest("%s must be a jpeg, jpg or png image", field)
		}
		return apperror.BadRequest("%s must be an mp4, avi, mov or mkv video", field)
	}

	if max := r.limit(kind); max > 0 && fh.Size > max {
		return apperror.BadRequest("%s exceeds the %dMB limit", field, max/(1024*1024))
	}
	return nil
}

// Receive saves the named field of a multipart request. A missing field
// yields (nil, nil) unless required, in which case it is a 400.
func (r *Receiver) Receive(c *gin.Context, field string, kind models.MediaKind, required bool) (*File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if required {
			return nil, apperror.BadRequest("%s file is required", field)
		}
		return nil, nil
	}

	if err := r.Validate(field, fh, kind); err != nil {
		return nil, err
	}

	path := filepath.Join(r.tempDir, uuid.New().String()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		os.Remove(path)
		return nil, apperror.Internal("Failed to receive upload", err)
	}

	return &File{
		Field:        field,
		Path:         path,
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Kind:         kind,
	}, nil
}
