package models

import (
	"fmt"
	"time"
)

// LikeKind identifies what a like points at
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// ParseLikeKind validates a like kind coming from a request path
func ParseLikeKind(s string) (LikeKind, error) {
	switch LikeKind(s) {
	case LikeKindVideo, LikeKindComment, LikeKindTweet:
		return LikeKind(s), nil
	}
	return "", fmt.Errorf("invalid like kind %q", s)
}

// LikeTarget is the tagged union a like refers to
type LikeTarget struct {
	Kind LikeKind `json:"kind"`
	ID   string   `json:"id"`
}

// Like records that an account liked a target. At most one exists per (liker, target).
type Like struct {
	ID        string     `json:"id" db:"id"`
	LikerID   string     `json:"liker_id" db:"liker_id"`
	Target    LikeTarget `json:"target"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
