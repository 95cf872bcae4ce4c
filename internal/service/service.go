// Package service holds the business rules behind every endpoint:
// validation, ownership checks and the mapping of storage failures onto
// client-facing errors.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// MediaStore uploads local files and deletes stored assets
type MediaStore interface {
	Upload(ctx context.Context, localPath string, folder models.MediaFolder, kind models.MediaKind) (*models.Asset, error)
	Delete(ctx context.Context, publicID string, kind models.MediaKind) error
}

// OrphanReporter records assets whose compensating delete failed
type OrphanReporter interface {
	PublishOrphan(ctx context.Context, asset *models.OrphanedAsset) error
}

// TokenRevoker denies an access token until it expires
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// VideoProcessor probes and optionally re-encodes uploaded videos
type VideoProcessor interface {
	Duration(ctx context.Context, path string) (float64, error)
	Compress(ctx context.Context, path string) (string, error)
}

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
)

const (
	minPasswordLength     = 8
	maxCommentLength      = 500
	maxTweetLength        = 280
	maxVideoTitle         = 100
	maxVideoDescription   = 5000
	maxPlaylistName       = 100
	maxPlaylistDescripton = 4000

	defaultPageLimit = 10
	maxPageLimit     = 50
)

// Pagination is a requested page of a listing
type Pagination struct {
	Page  int
	Limit int
}

// normalize applies defaults and rejects invalid values
func (p Pagination) normalize() (Pagination, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = defaultPageLimit
	}
	if p.Page < 1 {
		return p, apperror.BadRequest("page must be a positive number")
	}
	if p.Limit < 1 || p.Limit > maxPageLimit {
		return p, apperror.BadRequest("limit must be between 1 and %d", maxPageLimit)
	}
	return p, nil
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.Limit
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, database.ErrDuplicate)
}

// internalError hides a storage failure behind a generic message
func internalError(action string, err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal("Something went wrong while "+action, err)
}

// notFoundOr maps ErrNotFound onto a 404 with message and anything else onto a 500
func notFoundOr(err error, message, action string) error {
	if isNotFound(err) {
		return apperror.NotFound("%s", message)
	}
	return internalError(action, err)
}

func charCount(s string) int {
	return len([]rune(s))
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
