package main

import (
	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
)

func setupRouter(api *API, cfg *config.Config, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	router.Use(
		middleware.Recovery(api.logger),
		middleware.RequestID(),
		middleware.Logger(api.logger),
		middleware.Tracing(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORS.AllowedOrigin),
		middleware.ErrorHandler(api.logger),
	)
	if limiter != nil {
		router.Use(middleware.RateLimit(limiter))
	}
	router.NoRoute(middleware.NotFound())

	requireAuth := api.guard.RequireAuth()
	optionalAuth := api.guard.OptionalAuth()

	// credential endpoints get a shared per-IP window when Redis is available
	credentials := []gin.HandlerFunc{}
	if api.sessions != nil {
		credentials = append(credentials, middleware.WindowRateLimit(api.sessions, "auth",
			cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow, api.logger))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/healthcheck", api.healthCheck)

	users := v1.Group("/users")
	{
		users.POST("/signup", append(credentials, api.signup)...)
		users.POST("/login", append(credentials, api.login)...)
		users.POST("/refresh-tokens", api.refreshTokens)
		users.POST("/logout", requireAuth, api.logout)
		users.POST("/change-password", requireAuth, api.changePassword)
		users.GET("/current", requireAuth, api.currentUser)
		users.PATCH("/account", requireAuth, api.updateAccountDetails)
		users.PATCH("/username", requireAuth, api.updateUsername)
		users.PATCH("/avatar", requireAuth, api.updateAvatar)
		users.PATCH("/cover-image", requireAuth, api.updateCoverImage)
		users.GET("/channel/:username", optionalAuth, api.getChannelProfile)
		users.GET("/history", requireAuth, api.getWatchHistory)
	}

	videos := v1.Group("/videos")
	{
		videos.GET("", api.listVideos)
		videos.POST("", requireAuth, api.publishVideo)
		videos.GET("/:videoId", optionalAuth, api.getVideo)
		videos.PATCH("/:videoId", requireAuth, api.updateVideo)
		videos.DELETE("/:videoId", requireAuth, api.deleteVideo)
		videos.PATCH("/:videoId/publish", requireAuth, api.togglePublish)
		videos.PATCH("/:videoId/playback", requireAuth, api.setPlaybackPosition)
		videos.GET("/:videoId/comments", optionalAuth, api.listVideoComments)
		videos.POST("/:videoId/comments", requireAuth, api.addComment)
		videos.GET("/:videoId/likes", optionalAuth, api.countLikes("video", "videoId"))
	}

	comments := v1.Group("/comments")
	{
		comments.GET("/:commentId", optionalAuth, api.getComment)
		comments.PATCH("/:commentId", requireAuth, api.updateComment)
		comments.DELETE("/:commentId", requireAuth, api.deleteComment)
		comments.GET("/:commentId/likes", optionalAuth, api.countLikes("comment", "commentId"))
	}

	tweets := v1.Group("/tweets")
	{
		tweets.GET("", api.listTweets)
		tweets.GET("/user/:userId", api.listUserTweets)
		tweets.POST("", requireAuth, api.createTweet)
		tweets.PATCH("/:tweetId", requireAuth, api.updateTweet)
		tweets.DELETE("/:tweetId", requireAuth, api.deleteTweet)
		tweets.GET("/:tweetId/likes", api.countLikes("tweet", "tweetId"))
	}

	likes := v1.Group("/likes", requireAuth)
	{
		likes.GET("/videos", api.getLikedVideos)
		likes.POST("/:kind/:targetId", api.toggleLike)
	}

	subscriptions := v1.Group("/subscriptions")
	{
		subscriptions.GET("/:channelId", api.getSubscriberCount)
		subscriptions.POST("/:channelId", requireAuth, api.subscribe)
		subscriptions.DELETE("/:channelId", requireAuth, api.unsubscribe)
	}

	playlists := v1.Group("/playlists")
	{
		playlists.POST("", requireAuth, api.createPlaylist)
		playlists.GET("/me", requireAuth, api.listMyPlaylists)
		playlists.GET("/:playlistId", optionalAuth, api.getPlaylist)
		playlists.PATCH("/:playlistId", requireAuth, api.updatePlaylist)
		playlists.DELETE("/:playlistId", requireAuth, api.deletePlaylist)
		playlists.GET("/:playlistId/videos", optionalAuth, api.getPlaylistVideos)
		playlists.PATCH("/:playlistId/videos/:videoId", requireAuth, api.addVideoToPlaylist)
		playlists.DELETE("/:playlistId/videos/:videoId", requireAuth, api.removeVideoFromPlaylist)
	}

	return router
}
