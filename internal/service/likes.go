package service

import (
	"context"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// LikeRepository is the persistence LikeService needs
type LikeRepository interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	GetTweet(ctx context.Context, id string) (*models.Tweet, error)
	ToggleLike(ctx context.Context, likerID string, target models.LikeTarget) (*models.Like, bool, error)
	CountLikes(ctx context.Context, target models.LikeTarget) (int64, error)
	ListLikedVideos(ctx context.Context, likerID string) ([]*models.Video, error)
}

// ToggleResult reports the outcome of a like toggle. Like is nil when the like was removed.
type ToggleResult struct {
	Liked bool         `json:"liked"`
	Like  *models.Like `json:"like"`
}

// LikeService implements likes on videos, comments and tweets
type LikeService struct {
	repo LikeRepository
}

// NewLikeService creates a like service
func NewLikeService(repo LikeRepository) *LikeService {
	return &LikeService{repo: repo}
}

// target checks that a like target exists and is visible to viewerID
func (s *LikeService) target(ctx context.Context, kind, id, viewerID string) (models.LikeTarget, error) {
	likeKind, err := models.ParseLikeKind(kind)
	if err != nil {
		return models.LikeTarget{}, apperror.BadRequest("Like kind must be one of video, comment, tweet")
	}
	target := models.LikeTarget{Kind: likeKind, ID: id}

	switch likeKind {
	case models.LikeKindVideo:
		_, err = visibleVideo(ctx, s.repo, id, viewerID)
	case models.LikeKindComment:
		var comment *models.Comment
		comment, err = s.repo.GetComment(ctx, id)
		if err != nil {
			return target, notFoundOr(err, "Comment not found", "fetching the comment")
		}
		if _, verr := visibleVideo(ctx, s.repo, comment.VideoID, viewerID); verr != nil {
			return target, apperror.NotFound("Comment not found")
		}
	case models.LikeKindTweet:
		if _, err = s.repo.GetTweet(ctx, id); err != nil {
			err = notFoundOr(err, "Tweet not found", "fetching the tweet")
		}
	}
	return target, err
}

// Toggle likes the target, or removes the like if likerID already liked it
func (s *LikeService) Toggle(ctx context.Context, likerID, kind, targetID string) (*ToggleResult, error) {
	target, err := s.target(ctx, kind, targetID, likerID)
	if err != nil {
		return nil, err
	}

	like, liked, err := s.repo.ToggleLike(ctx, likerID, target)
	if err != nil {
		return nil, internalError("toggling the like", err)
	}

	metrics.RecordLikeToggle(string(target.Kind), liked)
	return &ToggleResult{Liked: liked, Like: like}, nil
}

// Count returns the number of likes on a target visible to viewerID
func (s *LikeService) Count(ctx context.Context, kind, targetID, viewerID string) (int64, error) {
	target, err := s.target(ctx, kind, targetID, viewerID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CountLikes(ctx, target)
	if err != nil {
		return 0, internalError("counting likes", err)
	}
	return count, nil
}

// LikedVideos returns the published videos likerID liked
func (s *LikeService) LikedVideos(ctx context.Context, likerID string) ([]*models.Video, error) {
	videos, err := s.repo.ListLikedVideos(ctx, likerID)
	if err != nil {
		return nil, internalError("fetching liked videos", err)
	}
	return videos, nil
}
