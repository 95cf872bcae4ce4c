package main

import (
	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/response"
)

type contentRequest struct {
	Content string `json:"content"`
}

// listVideoComments pages through the comments on a visible video, oldest first
// GET /api/v1/videos/:videoId/comments?page=&limit=
func (api *API) listVideoComments(c *gin.Context) {
	page, err := pagination(c)
	if err != nil {
		c.Error(err)
		return
	}

	comments, meta, err := api.comments.ListForVideo(c.Request.Context(), c.Param("videoId"), middleware.AccountID(c), page)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{"comments": comments, "pagination": meta}, "Comments fetched successfully")
}

// addComment comments on a visible video
// POST /api/v1/videos/:videoId/comments
func (api *API) addComment(c *gin.Context) {
	var req contentRequest
	if !api.bindJSON(c, &req) {
		return
	}

	comment, err := api.comments.Create(c.Request.Context(), middleware.AccountID(c), c.Param("videoId"), req.Content)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, comment, "Comment added successfully")
}

// getComment returns a single comment
// GET /api/v1/comments/:commentId
func (api *API) getComment(c *gin.Context) {
	comment, err := api.comments.Get(c.Request.Context(), c.Param("commentId"), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, comment, "Comment fetched successfully")
}

// updateComment edits the caller's comment
// PATCH /api/v1/comments/:commentId
func (api *API) updateComment(c *gin.Context) {
	var req contentRequest
	if !api.bindJSON(c, &req) {
		return
	}

	comment, err := api.comments.Update(c.Request.Context(), middleware.AccountID(c), c.Param("commentId"), req.Content)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, comment, "Comment updated successfully")
}

// deleteComment removes the caller's comment and its likes
// DELETE /api/v1/comments/:commentId
func (api *API) deleteComment(c *gin.Context) {
	if err := api.comments.Delete(c.Request.Context(), middleware.AccountID(c), c.Param("commentId")); err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{}, "Comment deleted successfully")
}

// listTweets pages through every tweet, newest first
// GET /api/v1/tweets?page=&limit=
func (api *API) listTweets(c *gin.Context) {
	page, err := pagination(c)
	if err != nil {
		c.Error(err)
		return
	}

	tweets, meta, err := api.tweets.List(c.Request.Context(), page)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{"tweets": tweets, "pagination": meta}, "Tweets fetched successfully")
}

// listUserTweets pages through one account's tweets
// GET /api/v1/tweets/user/:userId?page=&limit=
func (api *API) listUserTweets(c *gin.Context) {
	page, err := pagination(c)
	if err != nil {
		c.Error(err)
		return
	}

	tweets, meta, err := api.tweets.ListByUser(c.Request.Context(), c.Param("userId"), page)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{"tweets": tweets, "pagination": meta}, "Tweets fetched successfully")
}

// createTweet posts a tweet as the caller
// POST /api/v1/tweets
func (api *API) createTweet(c *gin.Context) {
	var req contentRequest
	if !api.bindJSON(c, &req) {
		return
	}

	tweet, err := api.tweets.Create(c.Request.Context(), middleware.AccountID(c), req.Content)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, tweet, "Tweet created successfully")
}

// updateTweet edits the caller's tweet
// PATCH /api/v1/tweets/:tweetId
func (api *API) updateTweet(c *gin.Context) {
	var req contentRequest
	if !api.bindJSON(c, &req) {
		return
	}

	tweet, err := api.tweets.Update(c.Request.Context(), middleware.AccountID(c), c.Param("tweetId"), req.Content)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, tweet, "Tweet updated successfully")
}

// deleteTweet removes the caller's tweet and its likes
// DELETE /api/v1/tweets/:tweetId
func (api *API) deleteTweet(c *gin.Context) {
	if err := api.tweets.Delete(c.Request.Context(), middleware.AccountID(c), c.Param("tweetId")); err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{}, "Tweet deleted successfully")
}

// toggleLike likes or unlikes a video, comment or tweet
// POST /api/v1/likes/:kind/:targetId
func (api *API) toggleLike(c *gin.Context) {
	result, err := api.likes.Toggle(c.Request.Context(), middleware.AccountID(c), c.Param("kind"), c.Param("targetId"))
	if err != nil {
		c.Error(err)
		return
	}

	message := "Like removed successfully"
	if result.Liked {
		message = "Liked successfully"
	}
	response.OK(c, result, message)
}

// countLikes returns a handler counting likes on the target named by param
func (api *API) countLikes(kind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := api.likes.Count(c.Request.Context(), kind, c.Param(param), middleware.AccountID(c))
		if err != nil {
			c.Error(err)
			return
		}

		response.OK(c, gin.H{"likes": count}, "Likes fetched successfully")
	}
}

// getLikedVideos lists the videos the caller has liked
// GET /api/v1/likes/videos
func (api *API) getLikedVideos(c *gin.Context) {
	videos, err := api.likes.LikedVideos(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, videos, "Liked videos fetched successfully")
}

// subscribe subscribes the caller to a channel
// POST /api/v1/subscriptions/:channelId
func (api *API) subscribe(c *gin.Context) {
	sub, err := api.subscriptions.Subscribe(c.Request.Context(), middleware.AccountID(c), c.Param("channelId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, sub, "Subscribed successfully")
}

// unsubscribe drops the caller's subscription to a channel
// DELETE /api/v1/subscriptions/:channelId
func (api *API) unsubscribe(c *gin.Context) {
	if err := api.subscriptions.Unsubscribe(c.Request.Context(), middleware.AccountID(c), c.Param("channelId")); err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{}, "Unsubscribed successfully")
}

// getSubscriberCount reports how many accounts follow a channel
// GET /api/v1/subscriptions/:channelId
func (api *API) getSubscriberCount(c *gin.Context) {
	count, err := api.subscriptions.SubscriberCount(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{"subscribers": count}, "Subscribers fetched successfully")
}
