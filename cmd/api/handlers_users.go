package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/response"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/service"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// healthCheck pings PostgreSQL
// GET /api/v1/healthcheck
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := api.repo.Health(ctx); err != nil {
		api.logger.WithError(err).Warn("Health check failed")
		response.Write(c, response.Failure(http.StatusServiceUnavailable, "Service unavailable"))
		return
	}

	response.OK(c, gin.H{"status": "healthy"}, "OK")
}

// signup registers an account from a multipart form
// POST /api/v1/users/signup
func (api *API) signup(c *gin.Context) {
	files, err := api.receiveFiles(c,
		fileSpec{field: upload.FieldAvatar, kind: models.MediaKindImage},
		fileSpec{field: upload.FieldCoverImage, kind: models.MediaKindImage},
	)
	if err != nil {
		c.Error(err)
		return
	}

	account, err := api.accounts.Signup(c.Request.Context(), service.SignupInput{
		FullName: c.PostForm("fullname"),
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}, files[0], files[1])
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, account, "User registered successfully")
}

// login starts a session
// POST /api/v1/users/login
func (api *API) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !api.bindJSON(c, &req) {
		return
	}

	account, pair, err := api.accounts.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	api.setSessionCookies(c, pair)
	response.OK(c, gin.H{
		"user":         account,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "User logged in successfully")
}

// refreshTokens rotates the token pair. The refresh token comes from the
// cookie or the JSON body.
// POST /api/v1/users/refresh-tokens
func (api *API) refreshTokens(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" && c.Request.ContentLength != 0 {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if !api.bindJSON(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	pair, err := api.accounts.Refresh(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		return
	}

	api.setSessionCookies(c, pair)
	response.OK(c, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Access token refreshed")
}

// logout ends the session
// POST /api/v1/users/logout
func (api *API) logout(c *gin.Context) {
	claims, _ := middleware.AccessClaims(c)
	if err := api.accounts.Logout(c.Request.Context(), middleware.AccountID(c), claims); err != nil {
		c.Error(err)
		return
	}

	api.clearSessionCookies(c)
	response.OK(c, gin.H{}, "User logged out")
}

// changePassword replaces the password after checking the old one
// POST /api/v1/users/change-password
func (api *API) changePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !api.bindJSON(c, &req) {
		return
	}

	if err := api.accounts.ChangePassword(c.Request.Context(), middleware.AccountID(c), req.OldPassword, req.NewPassword); err != nil {
		c.Error(err)
		return
	}

	response.OK(c, gin.H{}, "Password changed successfully")
}

// currentUser returns the authenticated account
// GET /api/v1/users/current
func (api *API) currentUser(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		c.Error(apperror.Unauthorized("Unauthorized request"))
		return
	}
	response.OK(c, account, "Current user fetched successfully")
}

// updateAccountDetails changes the full name and email
// PATCH /api/v1/users/account
func (api *API) updateAccountDetails(c *gin.Context) {
	var req struct {
		FullName string `json:"fullname"`
		Email    string `json:"email"`
	}
	if !api.bindJSON(c, &req) {
		return
	}

	account, err := api.accounts.UpdateDetails(c.Request.Context(), middleware.AccountID(c), req.FullName, req.Email)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, account, "Account details updated successfully")
}

// updateUsername changes the caller's handle
// PATCH /api/v1/users/username
func (api *API) updateUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if !api.bindJSON(c, &req) {
		return
	}

	account, err := api.accounts.UpdateUsername(c.Request.Context(), middleware.AccountID(c), req.Username)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, account, "Username updated successfully")
}

// updateAvatar replaces the avatar image
// PATCH /api/v1/users/avatar
func (api *API) updateAvatar(c *gin.Context) {
	api.replaceAccountImage(c, upload.FieldAvatar, api.accounts.UpdateAvatar, "Avatar updated successfully")
}

// updateCoverImage replaces the cover image
// PATCH /api/v1/users/cover-image
func (api *API) updateCoverImage(c *gin.Context) {
	api.replaceAccountImage(c, upload.FieldCoverImage, api.accounts.UpdateCoverImage, "Cover image updated successfully")
}

type imageReplacer func(ctx context.Context, account *models.Account, file *upload.File) (*models.Account, error)

func (api *API) replaceAccountImage(c *gin.Context, field string, replace imageReplacer, message string) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		c.Error(apperror.Unauthorized("Unauthorized request"))
		return
	}

	file, err := api.receiver.Receive(c, field, models.MediaKindImage, true)
	if err != nil {
		c.Error(err)
		return
	}

	updated, err := replace(c.Request.Context(), account, file)
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, updated, message)
}

// getChannelProfile returns a channel with its subscription counts
// GET /api/v1/users/channel/:username
func (api *API) getChannelProfile(c *gin.Context) {
	profile, err := api.accounts.ChannelProfile(c.Request.Context(), c.Param("username"), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, profile, "User channel fetched successfully")
}

// getWatchHistory lists the caller's recently watched videos
// GET /api/v1/users/history
func (api *API) getWatchHistory(c *gin.Context) {
	history, err := api.accounts.WatchHistory(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.OK(c, history, "Watch history fetched successfully")
}
