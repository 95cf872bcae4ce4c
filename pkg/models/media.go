package models

import "time"

// MediaKind is the resource type of an uploaded asset
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaFolder groups assets by purpose in the media store
type MediaFolder string

const (
	FolderAvatars    MediaFolder = "avatars"
	FolderCovers     MediaFolder = "covers"
	FolderThumbnails MediaFolder = "thumbnails"
	FolderVideos     MediaFolder = "videos"
)

// Asset is a file stored in the media store
type Asset struct {
	URL      string    `json:"url"`
	PublicID string    `json:"public_id"`
	Kind     MediaKind `json:"kind"`
}

// OrphanedAsset is published when a compensating delete fails so it can be retried later
type OrphanedAsset struct {
	PublicID   string    `json:"public_id"`
	Kind       MediaKind `json:"kind"`
	Reason     string    `json:"reason"`
	RetryCount int       `json:"retry_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Page describes a paginated listing
type Page struct {
	Page       int   `json:"current_page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPage computes the page metadata for a total item count
func NewPage(page, limit int, total int64) Page {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
