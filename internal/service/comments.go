package service

import (
	"context"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// CommentRepository is the persistence CommentService needs
type CommentRepository interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListVideoComments(ctx context.Context, videoID string, limit, offset int) ([]*models.Comment, int64, error)
}

// CommentService implements comments on videos
type CommentService struct {
	repo CommentRepository
}

// NewCommentService creates a comment service
func NewCommentService(repo CommentRepository) *CommentService {
	return &CommentService{repo: repo}
}

func validateComment(content string) (string, error) {
	content = trimmed(content)
	if content == "" {
		return "", apperror.BadRequest("Comment content is required")
	}
	if charCount(content) > maxCommentLength {
		return "", apperror.BadRequest("Comment must be at most %d characters", maxCommentLength)
	}
	return content, nil
}

type videoGetter interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}

// visibleVideo loads a video the viewer may see
func visibleVideo(ctx context.Context, repo videoGetter, id, viewerID string) (*models.Video, error) {
	video, err := repo.GetVideo(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Video not found", "fetching the video")
	}
	if !video.VisibleTo(viewerID) {
		return nil, apperror.NotFound("Video not found")
	}
	return video, nil
}

// ListForVideo returns a page of a video's comments, oldest first
func (s *CommentService) ListForVideo(ctx context.Context, videoID, viewerID string, p Pagination) ([]*models.Comment, models.Page, error) {
	page, err := p.normalize()
	if err != nil {
		return nil, models.Page{}, err
	}
	if _, err := visibleVideo(ctx, s.repo, videoID, viewerID); err != nil {
		return nil, models.Page{}, err
	}

	comments, total, err := s.repo.ListVideoComments(ctx, videoID, page.Limit, page.offset())
	if err != nil {
		return nil, models.Page{}, internalError("fetching comments", err)
	}
	return comments, models.NewPage(page.Page, page.Limit, total), nil
}

// Create adds a comment to a visible video
func (s *CommentService) Create(ctx context.Context, ownerID, videoID, content string) (*models.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	if _, err := visibleVideo(ctx, s.repo, videoID, ownerID); err != nil {
		return nil, err
	}

	comment := &models.Comment{OwnerID: ownerID, VideoID: videoID, Content: content}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, notFoundOr(err, "Video not found", "adding the comment")
	}
	return comment, nil
}

// Get returns a comment whose video is visible to viewerID
func (s *CommentService) Get(ctx context.Context, id, viewerID string) (*models.Comment, error) {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", "fetching the comment")
	}
	if _, err := visibleVideo(ctx, s.repo, comment.VideoID, viewerID); err != nil {
		return nil, apperror.NotFound("Comment not found")
	}
	return comment, nil
}

func (s *CommentService) owned(ctx context.Context, ownerID, id, action string) (*models.Comment, error) {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", action)
	}
	if comment.OwnerID != ownerID {
		return nil, apperror.Unauthorized("You are not the owner of this comment")
	}
	return comment, nil
}

// Update replaces the content of an owned comment
func (s *CommentService) Update(ctx context.Context, ownerID, id, content string) (*models.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.owned(ctx, ownerID, id, "updating the comment")
	if err != nil {
		return nil, err
	}
	if comment.Content == content {
		return nil, apperror.BadRequest("Nothing changed")
	}

	updated, err := s.repo.UpdateCommentContent(ctx, id, content)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found", "updating the comment")
	}
	return updated, nil
}

// Delete removes an owned comment and its likes
func (s *CommentService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id, "deleting the comment"); err != nil {
		return err
	}
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		return notFoundOr(err, "Comment not found", "deleting the comment")
	}
	return nil
}
