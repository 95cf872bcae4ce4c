package models

import (
	"fmt"
	"time"
)

// Visibility controls who can see a playlist
type Visibility string

const (
	VisibilityPublic   Visibility = "Public"
	VisibilityPrivate  Visibility = "Private"
	VisibilityUnlisted Visibility = "Unlisted"
)

// ParseVisibility validates a visibility value
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("invalid visibility %q", s)
}

// Playlist is an ordered, duplicate-free list of videos owned by an account
type Playlist struct {
	ID          string     `json:"id" db:"id"`
	OwnerID     string     `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Visibility  Visibility `json:"visibility" db:"visibility"`
	VideoIDs    []string   `json:"videos" db:"videos"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// HiddenFrom reports whether the playlist must be reported as missing to viewerID
func (p *Playlist) HiddenFrom(viewerID string) bool {
	return p.Visibility == VisibilityPrivate && p.OwnerID != viewerID
}

// Contains reports whether videoID is a member of the playlist
func (p *Playlist) Contains(videoID string) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}
