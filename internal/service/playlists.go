package service

import (
	"context"
	"errors"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// PlaylistRepository is the persistence PlaylistService needs
type PlaylistRepository interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	PlaylistNameTaken(ctx context.Context, name, excludeID string) (bool, error)
	ListPlaylistsByOwner(ctx context.Context, ownerID string) ([]*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error
	DeletePlaylist(ctx context.Context, id string) error
	AddVideoToPlaylist(ctx context.Context, playlistID, videoID string) error
	RemoveVideoFromPlaylist(ctx context.Context, playlistID, videoID string) error
	GetPlaylistVideos(ctx context.Context, playlistID string) ([]*models.Video, error)
}

// CreatePlaylistInput holds a new playlist. VideoID optionally seeds it with one video.
type CreatePlaylistInput struct {
	Name        string
	Description string
	Visibility  string
	VideoID     string
}

// UpdatePlaylistInput holds optional playlist changes. Nil fields are left unchanged.
type UpdatePlaylistInput struct {
	Name        *string
	Description *string
	Visibility  *string
}

// PlaylistService implements playlists and their membership
type PlaylistService struct {
	repo PlaylistRepository
}

// NewPlaylistService creates a playlist service
func NewPlaylistService(repo PlaylistRepository) *PlaylistService {
	return &PlaylistService{repo: repo}
}

func validatePlaylistName(name string) (string, error) {
	name = trimmed(name)
	if name == "" {
		return "", apperror.BadRequest("Playlist name is required")
	}
	if charCount(name) > maxPlaylistName {
		return "", apperror.BadRequest("Playlist name must be at most %d characters", maxPlaylistName)
	}
	return name, nil
}

func validatePlaylistDescription(description string) (string, error) {
	description = trimmed(description)
	if charCount(description) > maxPlaylistDescripton {
		return "", apperror.BadRequest("Playlist description must be at most %d characters", maxPlaylistDescripton)
	}
	return description, nil
}

func validateVisibility(visibility string) (models.Visibility, error) {
	if trimmed(visibility) == "" {
		return "", apperror.BadRequest("Visibility is required")
	}
	v, err := models.ParseVisibility(trimmed(visibility))
	if err != nil {
		return "", apperror.BadRequest("Visibility must be one of Public, Private, Unlisted")
	}
	return v, nil
}

func (s *PlaylistService) ensureNameFree(ctx context.Context, name, excludeID string) error {
	taken, err := s.repo.PlaylistNameTaken(ctx, name, excludeID)
	if err != nil {
		return internalError("checking the playlist name", err)
	}
	if taken {
		return apperror.Conflict("A playlist with this name already exists")
	}
	return nil
}

// publishedVideo loads a video that can be placed on a playlist
func (s *PlaylistService) publishedVideo(ctx context.Context, id string) error {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return notFoundOr(err, "Video not found", "fetching the video")
	}
	if !video.IsPublished {
		return apperror.NotFound("Video not found")
	}
	return nil
}

// Create creates a playlist owned by ownerID
func (s *PlaylistService) Create(ctx context.Context, ownerID string, in CreatePlaylistInput) (*models.Playlist, error) {
	name, err := validatePlaylistName(in.Name)
	if err != nil {
		return nil, err
	}
	description, err := validatePlaylistDescription(in.Description)
	if err != nil {
		return nil, err
	}
	visibility, err := validateVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Visibility:  visibility,
		VideoIDs:    []string{},
	}
	if videoID := trimmed(in.VideoID); videoID != "" {
		if err := s.publishedVideo(ctx, videoID); err != nil {
			return nil, err
		}
		playlist.VideoIDs = []string{videoID}
	}

	if err := s.repo.CreatePlaylist(ctx, playlist); err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("A playlist with this name already exists")
		}
		return nil, internalError("creating the playlist", err)
	}
	return playlist, nil
}

// Get returns a playlist unless it is private to someone else
func (s *PlaylistService) Get(ctx context.Context, id, viewerID string) (*models.Playlist, error) {
	playlist, err := s.repo.GetPlaylist(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", "fetching the playlist")
	}
	if playlist.HiddenFrom(viewerID) {
		return nil, apperror.NotFound("Playlist not found")
	}
	return playlist, nil
}

func (s *PlaylistService) owned(ctx context.Context, ownerID, id, action string) (*models.Playlist, error) {
	playlist, err := s.repo.GetPlaylist(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", action)
	}
	if playlist.OwnerID != ownerID {
		return nil, apperror.Unauthorized("You are not the owner of this playlist")
	}
	return playlist, nil
}

// Update changes name, description or visibility of an owned playlist
func (s *PlaylistService) Update(ctx context.Context, ownerID, id string, in UpdatePlaylistInput) (*models.Playlist, error) {
	if in.Name == nil && in.Description == nil && in.Visibility == nil {
		return nil, apperror.BadRequest("Nothing to update")
	}

	playlist, err := s.owned(ctx, ownerID, id, "updating the playlist")
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := validatePlaylistName(*in.Name)
		if err != nil {
			return nil, err
		}
		if name != playlist.Name {
			if err := s.ensureNameFree(ctx, name, playlist.ID); err != nil {
				return nil, err
			}
		}
		playlist.Name = name
	}
	if in.Description != nil {
		if playlist.Description, err = validatePlaylistDescription(*in.Description); err != nil {
			return nil, err
		}
	}
	if in.Visibility != nil {
		if playlist.Visibility, err = validateVisibility(*in.Visibility); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdatePlaylist(ctx, playlist); err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("A playlist with this name already exists")
		}
		return nil, notFoundOr(err, "Playlist not found", "updating the playlist")
	}
	return playlist, nil
}

// Delete removes an owned playlist
func (s *PlaylistService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id, "deleting the playlist"); err != nil {
		return err
	}
	if err := s.repo.DeletePlaylist(ctx, id); err != nil {
		return notFoundOr(err, "Playlist not found", "deleting the playlist")
	}
	return nil
}

// AddVideo appends a published video to an owned playlist
func (s *PlaylistService) AddVideo(ctx context.Context, ownerID, playlistID, videoID string) (*models.Playlist, error) {
	if err := s.publishedVideo(ctx, videoID); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, ownerID, playlistID, "adding the video"); err != nil {
		return nil, err
	}

	if err := s.repo.AddVideoToPlaylist(ctx, playlistID, videoID); err != nil {
		if isDuplicate(err) {
			return nil, apperror.BadRequest("This video is already on the playlist")
		}
		if errors.Is(err, database.ErrConstraint) {
			// deleted after the checks above
			if err := s.publishedVideo(ctx, videoID); err != nil {
				return nil, err
			}
			return nil, apperror.NotFound("Playlist not found")
		}
		return nil, notFoundOr(err, "Playlist not found", "adding the video")
	}

	playlist, err := s.repo.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", "adding the video")
	}
	return playlist, nil
}

// RemoveVideo removes a video from an owned playlist
func (s *PlaylistService) RemoveVideo(ctx context.Context, ownerID, playlistID, videoID string) (*models.Playlist, error) {
	if _, err := s.owned(ctx, ownerID, playlistID, "removing the video"); err != nil {
		return nil, err
	}

	if err := s.repo.RemoveVideoFromPlaylist(ctx, playlistID, videoID); err != nil {
		return nil, notFoundOr(err, "The video is not inside this playlist", "removing the video")
	}

	playlist, err := s.repo.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, notFoundOr(err, "Playlist not found", "removing the video")
	}
	return playlist, nil
}

// ListMine returns every playlist owned by ownerID regardless of visibility
func (s *PlaylistService) ListMine(ctx context.Context, ownerID string) ([]*models.Playlist, error) {
	playlists, err := s.repo.ListPlaylistsByOwner(ctx, ownerID)
	if err != nil {
		return nil, internalError("fetching playlists", err)
	}
	return playlists, nil
}

// Videos returns the playlist's videos in membership order. Videos the viewer
// may not see are left out.
func (s *PlaylistService) Videos(ctx context.Context, playlistID, viewerID string) ([]*models.Video, error) {
	if _, err := s.Get(ctx, playlistID, viewerID); err != nil {
		return nil, err
	}

	videos, err := s.repo.GetPlaylistVideos(ctx, playlistID)
	if err != nil {
		return nil, internalError("fetching playlist videos", err)
	}

	visible := make([]*models.Video, 0, len(videos))
	for _, v := range videos {
		if v.VisibleTo(viewerID) {
			visible = append(visible, v)
		}
	}
	return visible, nil
}
