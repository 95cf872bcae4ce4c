package service

import (
	"context"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// VideoRepository is the persistence VideoService needs
type VideoRepository interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	ListPublishedVideos(ctx context.Context, filter models.VideoFilter) ([]*models.Video, int64, error)
	UpdateVideo(ctx context.Context, video *models.Video) error
	IncrementViews(ctx context.Context, id string) (int64, error)
	DeleteVideo(ctx context.Context, id string) error
	RecordWatch(ctx context.Context, accountID, videoID string) error
}

// ListVideosInput is a published-video query
type ListVideosInput struct {
	Pagination
	Query    string
	UserID   string
	SortBy   string
	SortType string
}

// PublishVideoInput holds the text fields of a video upload
type PublishVideoInput struct {
	Title       string
	Description string
	// Duration is used when the uploaded file cannot be probed
	Duration float64
}

// UpdateVideoInput holds optional video changes. Nil fields are left unchanged.
type UpdateVideoInput struct {
	Title       *string
	Description *string
}

// VideoService implements video publishing, browsing and ownership rules
type VideoService struct {
	repo      VideoRepository
	media     *Media
	processor VideoProcessor
	compress  bool
	logger    *logging.Logger
}

// NewVideoService creates a video service. processor may be nil, in which case
// the submitted duration is trusted and videos are never compressed.
func NewVideoService(repo VideoRepository, media *Media, processor VideoProcessor, compress bool, logger *logging.Logger) *VideoService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &VideoService{repo: repo, media: media, processor: processor, compress: compress, logger: logger}
}

func (s *VideoService) lookup(ctx context.Context, id, viewerID string) (*models.Video, error) {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Video not found", "fetching the video")
	}
	if !video.VisibleTo(viewerID) {
		return nil, apperror.NotFound("Video not found")
	}
	return video, nil
}

func (s *VideoService) owned(ctx context.Context, ownerID, id, action string) (*models.Video, error) {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Video not found", action)
	}
	if video.OwnerID != ownerID {
		return nil, apperror.Unauthorized("You are not the owner of this video")
	}
	return video, nil
}

func parseVideoSort(sortBy, sortType string) (models.VideoSort, bool, error) {
	sort := models.VideoSortCreatedAt
	switch models.VideoSort(sortBy) {
	case "":
	case models.VideoSortCreatedAt, models.VideoSortViews, models.VideoSortDuration:
		sort = models.VideoSort(sortBy)
	default:
		return "", false, apperror.BadRequest("sortBy must be one of createdAt, views, duration")
	}

	switch sortType {
	case "", "desc":
		return sort, true, nil
	case "asc":
		return sort, false, nil
	}
	return "", false, apperror.BadRequest("sortType must be asc or desc")
}

// List returns a page of published videos
func (s *VideoService) List(ctx context.Context, in ListVideosInput) ([]*models.Video, models.Page, error) {
	page, err := in.Pagination.normalize()
	if err != nil {
		return nil, models.Page{}, err
	}
	sort, desc, err := parseVideoSort(in.SortBy, in.SortType)
	if err != nil {
		return nil, models.Page{}, err
	}

	videos, total, err := s.repo.ListPublishedVideos(ctx, models.VideoFilter{
		Query:      trimmed(in.Query),
		OwnerID:    trimmed(in.UserID),
		SortBy:     sort,
		Descending: desc,
		Limit:      page.Limit,
		Offset:     page.offset(),
	})
	if err != nil {
		return nil, models.Page{}, internalError("fetching videos", err)
	}
	return videos, models.NewPage(page.Page, page.Limit, total), nil
}

// Watch returns a video, counting the view and recording it in the viewer's history
func (s *VideoService) Watch(ctx context.Context, id, viewerID string) (*models.Video, error) {
	video, err := s.lookup(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	views, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Video not found", "fetching the video")
	}
	video.Views = views

	if viewerID != "" {
		if err := s.repo.RecordWatch(ctx, viewerID, id); err != nil {
			s.logger.WithError(err).WithVideoID(id).WithAccountID(viewerID).Warn("Failed to record watch history")
		}
	}
	return video, nil
}

func validateVideoText(title, description string) error {
	if title == "" || description == "" {
		return apperror.BadRequest("Title and description are required")
	}
	if charCount(title) > maxVideoTitle {
		return apperror.BadRequest("Title must be at most %d characters", maxVideoTitle)
	}
	if charCount(description) > maxVideoDescription {
		return apperror.BadRequest("Description must be at most %d characters", maxVideoDescription)
	}
	return nil
}

// Publish uploads a video with its thumbnail and stores it published.
// Both temp files are always consumed.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishVideoInput, videoFile, thumbnail *upload.File) (*models.Video, error) {
	title, description := trimmed(in.Title), trimmed(in.Description)
	if err := validateVideoText(title, description); err != nil {
		upload.Cleanup(videoFile, thumbnail)
		return nil, err
	}
	if videoFile == nil || thumbnail == nil {
		upload.Cleanup(videoFile, thumbnail)
		return nil, apperror.BadRequest("Video and thumbnail files are required")
	}

	videoUpload := uploadOf(videoFile, models.FolderVideos)
	duration := s.prepare(ctx, &videoUpload, in.Duration)

	assets, err := s.media.UploadAll(ctx, "video publish failed",
		videoUpload,
		uploadOf(thumbnail, models.FolderThumbnails),
	)
	if err != nil {
		return nil, err
	}

	video := &models.Video{
		OwnerID:      ownerID,
		VideoURL:     assets[0].URL,
		ThumbnailURL: assets[1].URL,
		Title:        title,
		Description:  description,
		Duration:     duration,
		IsPublished:  true,
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		s.media.Discard(ctx, "video publish failed", assets...)
		return nil, internalError("publishing the video", err)
	}

	s.logger.WithVideoID(video.ID).WithAccountID(ownerID).Info("Video uploaded")
	return video, nil
}

// prepare probes the duration and compresses the file when configured.
// It never fails: probing falls back to the submitted duration and a failed
// compression uploads the original.
func (s *VideoService) prepare(ctx context.Context, u *MediaUpload, fallback float64) float64 {
	if s.processor == nil {
		return fallback
	}
	log := s.logger.WithField("path", u.Path)

	duration, err := s.processor.Duration(ctx, u.Path)
	if err != nil {
		log.WithError(err).Warn("Failed to probe video duration")
		duration = fallback
	}

	if s.compress {
		compressed, err := s.processor.Compress(ctx, u.Path)
		if err != nil {
			log.WithError(err).Warn("Failed to compress video, uploading original")
		} else {
			u.Path = compressed
		}
	}
	return duration
}

// Update changes title, description and optionally the thumbnail
func (s *VideoService) Update(ctx context.Context, ownerID, id string, in UpdateVideoInput, thumbnail *upload.File) (*models.Video, error) {
	video, err := s.owned(ctx, ownerID, id, "updating the video")
	if err != nil {
		thumbnail.Remove()
		return nil, err
	}

	if in.Title != nil {
		video.Title = trimmed(*in.Title)
	}
	if in.Description != nil {
		video.Description = trimmed(*in.Description)
	}
	if in.Title == nil && in.Description == nil && thumbnail == nil {
		return nil, apperror.BadRequest("Nothing to update")
	}
	if err := validateVideoText(video.Title, video.Description); err != nil {
		thumbnail.Remove()
		return nil, err
	}

	if thumbnail == nil {
		if err := s.repo.UpdateVideo(ctx, video); err != nil {
			return nil, notFoundOr(err, "Video not found", "updating the video")
		}
		return video, nil
	}

	oldThumbnail := video.ThumbnailURL
	_, err = s.media.Replace(ctx, uploadOf(thumbnail, models.FolderThumbnails), oldThumbnail, func(url string) error {
		video.ThumbnailURL = url
		if err := s.repo.UpdateVideo(ctx, video); err != nil {
			return notFoundOr(err, "Video not found", "updating the video")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return video, nil
}

// TogglePublish flips the published flag
func (s *VideoService) TogglePublish(ctx context.Context, ownerID, id string) (*models.Video, error) {
	video, err := s.owned(ctx, ownerID, id, "updating the video")
	if err != nil {
		return nil, err
	}

	video.IsPublished = !video.IsPublished
	if err := s.repo.UpdateVideo(ctx, video); err != nil {
		return nil, notFoundOr(err, "Video not found", "updating the video")
	}
	if video.IsPublished {
		metrics.VideosPublishedTotal.Inc()
	}
	return video, nil
}

// SetPlaybackPosition stores the playback position in milliseconds
func (s *VideoService) SetPlaybackPosition(ctx context.Context, ownerID, id string, position int64) (*models.Video, error) {
	if position < 0 {
		return nil, apperror.BadRequest("Playback position must not be negative")
	}

	video, err := s.owned(ctx, ownerID, id, "updating the video")
	if err != nil {
		return nil, err
	}

	video.PlaybackPosition = position
	if err := s.repo.UpdateVideo(ctx, video); err != nil {
		return nil, notFoundOr(err, "Video not found", "updating the video")
	}
	return video, nil
}

// Delete removes the video with its comments and likes, then its media
func (s *VideoService) Delete(ctx context.Context, ownerID, id string) error {
	video, err := s.owned(ctx, ownerID, id, "deleting the video")
	if err != nil {
		return err
	}

	if err := s.repo.DeleteVideo(ctx, id); err != nil {
		return notFoundOr(err, "Video not found", "deleting the video")
	}

	s.media.DiscardURL(ctx, "video deleted", video.VideoURL, models.MediaKindVideo)
	s.media.DiscardURL(ctx, "video deleted", video.ThumbnailURL, models.MediaKindImage)

	s.logger.WithVideoID(id).WithAccountID(ownerID).Info("Video deleted")
	return nil
}
