package main

import (
	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/response"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/service"
)

// createPlaylist creates a playlist, optionally seeded with one video
// POST /api/v1/playlists
func (api *API) createPlaylist(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Visibility  string `json:"visibility"`
		VideoID     string `json:"videoId"`
	}
	if !api.bindJSON(c, &req) {
		return
	}

	playlist, err := api.playlists.Create(c.Request.Context(), middleware.AccountID(c), service.CreatePlaylistInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
		VideoID:     req.VideoID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, playlist, "Playlist created successfully")
}

// listMyPlaylists returns every playlist owned by the caller
// GET /api/v1/playlists/me
func (api *API) listMyPlaylists(c *gin.Context) {
	playlists, err := api.playlists.ListMine(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{
		"playlists":         playlists,
		"numberOfPlaylists": len(playlists),
	}, "Playlists fetched successfully")
}

// getPlaylist returns a playlist the caller may see
// GET /api/v1/playlists/:playlistId
func (api *API) getPlaylist(c *gin.Context) {
	playlist, err := api.playlists.Get(c.Request.Context(), c.Param("playlistId"), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, playlist, "Playlist fetched successfully")
}

// updatePlaylist renames a playlist or changes its visibility
// PATCH /api/v1/playlists/:playlistId
func (api *API) updatePlaylist(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Visibility  *string `json:"visibility"`
	}
	if !api.bindJSON(c, &req) {
		return
	}

	playlist, err := api.playlists.Update(c.Request.Context(), middleware.AccountID(c), c.Param("playlistId"), service.UpdatePlaylistInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, playlist, "Playlist updated successfully")
}

// deletePlaylist removes an owned playlist
// DELETE /api/v1/playlists/:playlistId
func (api *API) deletePlaylist(c *gin.Context) {
	if err := api.playlists.Delete(c.Request.Context(), middleware.AccountID(c), c.Param("playlistId")); err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{}, "Playlist deleted successfully")
}

// getPlaylistVideos lists the visible videos on a playlist in insertion order
// GET /api/v1/playlists/:playlistId/videos
func (api *API) getPlaylistVideos(c *gin.Context) {
	videos, err := api.playlists.Videos(c.Request.Context(), c.Param("playlistId"), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, videos, "Playlist videos fetched successfully")
}

// addVideoToPlaylist appends a published video to an owned playlist
// PATCH /api/v1/playlists/:playlistId/videos/:videoId
func (api *API) addVideoToPlaylist(c *gin.Context) {
	playlist, err := api.playlists.AddVideo(c.Request.Context(), middleware.AccountID(c), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, playlist, "Video added to playlist successfully")
}

// removeVideoFromPlaylist takes a video off an owned playlist
// DELETE /api/v1/playlists/:playlistId/videos/:videoId
func (api *API) removeVideoFromPlaylist(c *gin.Context) {
	playlist, err := api.playlists.RemoveVideo(c.Request.Context(), middleware.AccountID(c), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, playlist, "Video removed from playlist successfully")
}
