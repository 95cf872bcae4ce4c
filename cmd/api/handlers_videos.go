package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/response"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/service"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// listVideos returns published videos
// GET /api/v1/videos?page=&limit=&query=&userId=&sortBy=&sortType=
func (api *API) listVideos(c *gin.Context) {
	page, err := pagination(c)
	if err != nil {
		c.Error(err)
		return
	}

	videos, meta, err := api.videos.List(c.Request.Context(), service.ListVideosInput{
		Pagination: page,
		Query:      c.Query("query"),
		UserID:     c.Query("userId"),
		SortBy:     c.Query("sortBy"),
		SortType:   c.Query("sortType"),
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{"videos": videos, "pagination": meta}, "Videos fetched successfully")
}

// publishVideo uploads a video with its thumbnail
// POST /api/v1/videos
func (api *API) publishVideo(c *gin.Context) {
	var duration float64
	if raw := c.PostForm("duration"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			c.Error(apperror.BadRequest("duration must be a non-negative number"))
			return
		}
		duration = parsed
	}

	files, err := api.receiveFiles(c,
		fileSpec{field: upload.FieldVideo, kind: models.MediaKindVideo},
		fileSpec{field: upload.FieldThumbnail, kind: models.MediaKindImage},
	)
	if err != nil {
		c.Error(err)
		return
	}

	video, err := api.videos.Publish(c.Request.Context(), middleware.AccountID(c), service.PublishVideoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Duration:    duration,
	}, files[0], files[1])
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, video, "Video uploaded successfully")
}

// getVideo returns a video and counts the view
// GET /api/v1/videos/:videoId
func (api *API) getVideo(c *gin.Context) {
	video, err := api.videos.Watch(c.Request.Context(), c.Param("videoId"), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, video, "Video fetched successfully")
}

func optionalForm(c *gin.Context, key string) *string {
	if value, ok := c.GetPostForm(key); ok {
		return &value
	}
	return nil
}

// updateVideo changes title, description and thumbnail
// PATCH /api/v1/videos/:videoId
func (api *API) updateVideo(c *gin.Context) {
	thumbnail, err := api.receiver.Receive(c, upload.FieldThumbnail, models.MediaKindImage, false)
	if err != nil {
		c.Error(err)
		return
	}

	video, err := api.videos.Update(c.Request.Context(), middleware.AccountID(c), c.Param("videoId"), service.UpdateVideoInput{
		Title:       optionalForm(c, "title"),
		Description: optionalForm(c, "description"),
	}, thumbnail)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, video, "Video updated successfully")
}

// togglePublish flips whether an owned video is visible to others
// PATCH /api/v1/videos/:videoId/publish
func (api *API) togglePublish(c *gin.Context) {
	video, err := api.videos.TogglePublish(c.Request.Context(), middleware.AccountID(c), c.Param("videoId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, video, "Publish status toggled successfully")
}

// setPlaybackPosition records how far the caller got into a video
// PATCH /api/v1/videos/:videoId/playback
func (api *API) setPlaybackPosition(c *gin.Context) {
	var req struct {
		Position *int64 `json:"position"`
	}
	if !api.bindJSON(c, &req) {
		return
	}
	if req.Position == nil {
		c.Error(apperror.BadRequest("position is required"))
		return
	}

	video, err := api.videos.SetPlaybackPosition(c.Request.Context(), middleware.AccountID(c), c.Param("videoId"), *req.Position)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, video, "Playback position saved")
}

// deleteVideo removes an owned video and its media
// DELETE /api/v1/videos/:videoId
func (api *API) deleteVideo(c *gin.Context) {
	if err := api.videos.Delete(c.Request.Context(), middleware.AccountID(c), c.Param("videoId")); err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{}, "Video deleted successfully")
}
