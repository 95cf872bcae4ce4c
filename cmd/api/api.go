package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/service"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// Repository is everything the handlers need from persistence
type Repository interface {
	service.AccountRepository
	service.VideoRepository
	service.CommentRepository
	service.TweetRepository
	service.LikeRepository
	service.SubscriptionRepository
	service.PlaylistRepository
	Health(ctx context.Context) error
}

// SessionStore is the Redis-backed part of authentication
type SessionStore interface {
	middleware.TokenDenylist
	middleware.WindowLimiter
	service.TokenRevoker
}

// Deps are the collaborators built in main. Sessions, Orphans and Processor may be nil.
type Deps struct {
	Config    *config.Config
	Repo      Repository
	Tokens    *auth.TokenManager
	Media     service.MediaStore
	Orphans   service.OrphanReporter
	Sessions  SessionStore
	Processor service.VideoProcessor
	Receiver  *upload.Receiver
	Logger    *logging.Logger
}

// API holds the HTTP handlers
type API struct {
	repo     Repository
	receiver *upload.Receiver
	guard    *middleware.Authenticator
	sessions SessionStore
	logger   *logging.Logger

	secureCookies bool
	maxJSONBytes  int64
	accessTTL     time.Duration
	refreshTTL    time.Duration

	accounts      *service.AccountService
	videos        *service.VideoService
	comments      *service.CommentService
	tweets        *service.TweetService
	likes         *service.LikeService
	subscriptions *service.SubscriptionService
	playlists     *service.PlaylistService
}

// NewAPI wires the services together
func NewAPI(deps Deps) *API {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	// nil interfaces must stay nil so the services can tell Redis is absent
	var (
		revoker  service.TokenRevoker
		denylist middleware.TokenDenylist
	)
	if deps.Sessions != nil {
		revoker, denylist = deps.Sessions, deps.Sessions
	}

	media := service.NewMedia(deps.Media, deps.Orphans, logger)

	return &API{
		repo:          deps.Repo,
		receiver:      deps.Receiver,
		guard:         middleware.NewAuthenticator(deps.Tokens, deps.Repo, denylist, logger),
		sessions:      deps.Sessions,
		logger:        logger,
		secureCookies: deps.Config.Auth.SecureCookies,
		maxJSONBytes:  deps.Config.Server.MaxBodyBytes,
		accessTTL:     deps.Tokens.AccessTTL(),
		refreshTTL:    deps.Tokens.RefreshTTL(),

		accounts:      service.NewAccountService(deps.Repo, deps.Tokens, media, revoker, logger),
		videos:        service.NewVideoService(deps.Repo, media, deps.Processor, deps.Config.Upload.CompressVideos, logger),
		comments:      service.NewCommentService(deps.Repo),
		tweets:        service.NewTweetService(deps.Repo),
		likes:         service.NewLikeService(deps.Repo),
		subscriptions: service.NewSubscriptionService(deps.Repo),
		playlists:     service.NewPlaylistService(deps.Repo),
	}
}

// bindJSON decodes a size-limited request body, turning decoding failures into a 400
func (api *API) bindJSON(c *gin.Context, dst interface{}) bool {
	if api.maxJSONBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, api.maxJSONBytes)
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return false
	}
	return true
}

// fileSpec names a multipart file field
type fileSpec struct {
	field    string
	kind     models.MediaKind
	required bool
}

// receiveFiles saves every requested field. On failure the files already
// saved are removed.
func (api *API) receiveFiles(c *gin.Context, specs ...fileSpec) ([]*upload.File, error) {
	files := make([]*upload.File, 0, len(specs))
	for _, spec := range specs {
		f, err := api.receiver.Receive(c, spec.field, spec.kind, spec.required)
		if err != nil {
			upload.Cleanup(files...)
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (api *API) setSessionCookies(c *gin.Context, pair *models.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken, int(api.accessTTL.Seconds()), "/", "", api.secureCookies, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken, int(api.refreshTTL.Seconds()), "/", "", api.secureCookies, true)
}

func (api *API) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", api.secureCookies, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", api.secureCookies, true)
}

// pagination reads page and limit query parameters. Missing values are left
// zero for the service to default.
func pagination(c *gin.Context) (service.Pagination, error) {
	var q struct {
		Page  int `form:"page"`
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		return service.Pagination{}, apperror.BadRequest("page and limit must be numbers")
	}
	return service.Pagination{Page: q.Page, Limit: q.Limit}, nil
}
