package models

import (
	"time"
)

// Video represents an uploaded video and its playback metadata
type Video struct {
	ID               string    `json:"id" db:"id"`
	OwnerID          string    `json:"owner_id" db:"owner_id"`
	VideoURL         string    `json:"video_url" db:"video_url"`
	ThumbnailURL     string    `json:"thumbnail_url" db:"thumbnail_url"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	Duration         float64   `json:"duration" db:"duration"`
	Views            int64     `json:"views" db:"views"`
	IsPublished      bool      `json:"is_published" db:"is_published"`
	PlaybackPosition int64     `json:"playback_position" db:"playback_position"` // milliseconds
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// VisibleTo reports whether the video may be shown to the given account.
// An empty viewerID is an anonymous caller.
func (v *Video) VisibleTo(viewerID string) bool {
	return v.IsPublished || (viewerID != "" && v.OwnerID == viewerID)
}

// WatchedVideo is a watch-history entry: the video plus its owner's public fields
type WatchedVideo struct {
	Video
	Owner     PublicAccount `json:"owner"`
	WatchedAt time.Time     `json:"watched_at"`
}

// VideoSort enumerates the columns videos can be listed by
type VideoSort string

const (
	VideoSortCreatedAt VideoSort = "createdAt"
	VideoSortViews     VideoSort = "views"
	VideoSortDuration  VideoSort = "duration"
)

// VideoFilter narrows a published-video listing
type VideoFilter struct {
	Query      string
	OwnerID    string
	SortBy     VideoSort
	Descending bool
	Limit      int
	Offset     int
}
