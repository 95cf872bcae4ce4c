package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, "GET", "/api/v1/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, string(env.Data))

	s.store.FailOn("Health", assert.AnError)
	w, env = s.do(t, "GET", "/api/v1/healthcheck", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "null", string(env.Data))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, "GET", "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestAuthGuard(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"undefined literal", "undefined"},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, "GET", "/api/v1/users/current", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "null", string(env.Data))
		})
	}

	account, token := s.account(t, "alice")
	w, env := s.do(t, "GET", "/api/v1/users/current", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]interface{}
	decodeData(t, env, &got)
	assert.Equal(t, account.ID, got["id"])
	assert.NotContains(t, got, "password_hash")
	assert.NotContains(t, got, "refresh_token")
}

func TestSignupLoginLogout(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "POST", "/api/v1/users/signup", map[string]string{
		"fullname": "Ada Lovelace",
		"username": "Ada",
		"email":    "ada@example.com",
		"password": "password123",
	}, formFile{field: "avatar", name: "me.png", contentType: "image/png"})
	w, env := s.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var created map[string]interface{}
	decodeData(t, env, &created)
	assert.Equal(t, "ada", created["username"])
	assert.Contains(t, created["avatar"], "/avatars/")

	// same handle in another case
	req = multipartRequest(t, "POST", "/api/v1/users/signup", map[string]string{
		"fullname": "Other",
		"username": "ADA",
		"email":    "other@example.com",
		"password": "password123",
	}, formFile{field: "avatar", name: "me.png", contentType: "image/png"})
	w, _ = s.serve(t, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(t, "POST", "/api/v1/users/login", "", map[string]string{"username": "ada", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	var session struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decodeData(t, env, &session)
	require.NotEmpty(t, session.AccessToken)

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, middleware.AccessTokenCookie)
	assert.True(t, cookies[middleware.AccessTokenCookie].HttpOnly)

	// cookie authentication
	req = httptest.NewRequest("GET", "/api/v1/users/current", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: session.AccessToken})
	w, _ = s.serve(t, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, "POST", "/api/v1/users/logout", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, "GET", "/api/v1/users/current", session.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, "POST", "/api/v1/users/refresh-tokens", "", map[string]string{"refreshToken": session.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupRejectsWrongFileType(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "POST", "/api/v1/users/signup", map[string]string{
		"fullname": "A", "username": "abc", "email": "a@b.co", "password": "password123",
	}, formFile{field: "avatar", name: "me.gif", contentType: "image/gif"})
	w, _ := s.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshTokensFromBody(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "bob")

	_, env := s.do(t, "POST", "/api/v1/users/login", "", map[string]string{"email": "bob@example.com", "password": "password123"})
	var session struct {
		RefreshToken string `json:"refreshToken"`
	}
	decodeData(t, env, &session)

	w, env := s.do(t, "POST", "/api/v1/users/refresh-tokens", "", map[string]string{"refreshToken": session.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, _ = s.do(t, "POST", "/api/v1/users/refresh-tokens", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaylistExampleFlow(t *testing.T) {
	s := newTestServer(t)
	a, tokenA := s.account(t, "alice")
	b, tokenB := s.account(t, "bob")
	video := s.video(t, a, true)

	w, env := s.do(t, "POST", "/api/v1/playlists", tokenA, map[string]string{"name": "Faves", "visibility": "Public"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var faves models.Playlist
	decodeData(t, env, &faves)
	require.NotEmpty(t, faves.ID)

	w, env = s.do(t, "POST", "/api/v1/playlists", tokenB, map[string]string{"name": "Bob's", "visibility": "Public"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var bobs models.Playlist
	decodeData(t, env, &bobs)
	assert.Equal(t, b.ID, bobs.OwnerID)

	w, _ = s.do(t, "PATCH", "/api/v1/playlists/"+bobs.ID+"/videos/"+video.ID, tokenA, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, "PATCH", "/api/v1/playlists/"+faves.ID+"/videos/"+video.ID, tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, "PATCH", "/api/v1/playlists/"+faves.ID+"/videos/"+video.ID, tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "already on the playlist")

	w, env = s.do(t, "GET", "/api/v1/playlists/"+faves.ID+"/videos", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var videos []models.Video
	decodeData(t, env, &videos)
	require.Len(t, videos, 1)
	assert.Equal(t, video.ID, videos[0].ID)

	w, env = s.do(t, "GET", "/api/v1/playlists/me", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Playlists []models.Playlist `json:"playlists"`
		Count     int               `json:"numberOfPlaylists"`
	}
	decodeData(t, env, &mine)
	assert.Equal(t, 1, mine.Count)

	w, _ = s.do(t, "DELETE", "/api/v1/playlists/"+faves.ID+"/videos/"+video.ID, tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "DELETE", "/api/v1/playlists/"+faves.ID+"/videos/"+video.ID, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, "POST", "/api/v1/playlists", tokenB, map[string]string{"name": "Faves", "visibility": "Public"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPrivatePlaylist(t *testing.T) {
	s := newTestServer(t)
	_, tokenA := s.account(t, "alice")
	_, tokenB := s.account(t, "bob")

	_, env := s.do(t, "POST", "/api/v1/playlists", tokenA, map[string]string{"name": "Secret", "visibility": "Private"})
	var playlist models.Playlist
	decodeData(t, env, &playlist)

	w, _ := s.do(t, "GET", "/api/v1/playlists/"+playlist.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, "GET", "/api/v1/playlists/"+playlist.ID+"/videos", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, "GET", "/api/v1/playlists/"+playlist.ID, tokenA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "DELETE", "/api/v1/playlists/"+playlist.ID, tokenB, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLikeToggleEndpoint(t *testing.T) {
	s := newTestServer(t)
	a, tokenA := s.account(t, "alice")
	video := s.video(t, a, true)
	hidden := s.video(t, a, false)
	_, tokenB := s.account(t, "bob")

	path := "/api/v1/likes/video/" + video.ID
	var result struct {
		Liked bool         `json:"liked"`
		Like  *models.Like `json:"like"`
	}

	w, env := s.do(t, "POST", path, tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, env, &result)
	assert.True(t, result.Liked)
	require.NotNil(t, result.Like)

	w, env = s.do(t, "GET", "/api/v1/videos/"+video.ID+"/likes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"likes":1}`, string(env.Data))

	_, env = s.do(t, "POST", path, tokenB, nil)
	decodeData(t, env, &result)
	assert.False(t, result.Liked)

	w, _ = s.do(t, "POST", "/api/v1/likes/video/"+hidden.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, "POST", "/api/v1/likes/playlist/"+video.ID, tokenB, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, "POST", path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, "GET", "/api/v1/likes/videos", tokenA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	s := newTestServer(t)
	a, tokenA := s.account(t, "alice")
	_, tokenB := s.account(t, "bob")

	w, _ := s.do(t, "POST", "/api/v1/subscriptions/"+a.ID, tokenA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, "POST", "/api/v1/subscriptions/"+a.ID, tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "POST", "/api/v1/subscriptions/"+a.ID, tokenB, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, "GET", "/api/v1/subscriptions/"+a.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribers":1}`, string(env.Data))

	w, env = s.do(t, "GET", "/api/v1/users/channel/alice", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.ChannelProfile
	decodeData(t, env, &profile)
	assert.True(t, profile.IsSubscribed)
	assert.Equal(t, int64(1), profile.SubscribersCount)

	w, _ = s.do(t, "DELETE", "/api/v1/subscriptions/"+a.ID, tokenB, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "DELETE", "/api/v1/subscriptions/"+a.ID, tokenB, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, "GET", "/api/v1/subscriptions/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoEndpoints(t *testing.T) {
	s := newTestServer(t)
	a, tokenA := s.account(t, "alice")
	_, tokenB := s.account(t, "bob")

	req := multipartRequest(t, "POST", "/api/v1/videos", map[string]string{
		"title": "Intro", "description": "hello", "duration": "12.5",
	},
		formFile{field: "video", name: "clip.mp4", contentType: "video/mp4"},
		formFile{field: "thumbnail", name: "thumb.png", contentType: "image/png"},
	)
	req.Header.Set("Authorization", "Bearer "+tokenA)
	w, env := s.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var video models.Video
	decodeData(t, env, &video)
	assert.Equal(t, 12.5, video.Duration)
	assert.True(t, video.IsPublished)
	assert.Equal(t, a.ID, video.OwnerID)

	w, env = s.do(t, "GET", "/api/v1/videos/"+video.ID, tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, env, &video)
	assert.Equal(t, int64(1), video.Views)

	w, _ = s.do(t, "PATCH", "/api/v1/videos/"+video.ID+"/publish", tokenB, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(t, "PATCH", "/api/v1/videos/"+video.ID+"/publish", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, "GET", "/api/v1/videos/"+video.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, "PATCH", "/api/v1/videos/"+video.ID+"/publish", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, "GET", "/api/v1/users/history", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.WatchedVideo
	decodeData(t, env, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "alice", history[0].Owner.Username)

	w, env = s.do(t, "GET", "/api/v1/videos?query=intro&sortBy=views", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Videos     []models.Video `json:"videos"`
		Pagination models.Page    `json:"pagination"`
	}
	decodeData(t, env, &listing)
	assert.Len(t, listing.Videos, 1)
	assert.Equal(t, int64(1), listing.Pagination.Total)

	w, _ = s.do(t, "GET", "/api/v1/videos?sortBy=title", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, "GET", "/api/v1/videos?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, "PATCH", "/api/v1/videos/"+video.ID+"/playback", tokenA, map[string]int{"position": 5000})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "PATCH", "/api/v1/videos/"+video.ID+"/playback", tokenA, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, "POST", "/api/v1/videos/"+video.ID+"/comments", tokenB, map[string]string{"content": "great"})
	require.Equal(t, http.StatusOK, w.Code)
	var comment models.Comment
	decodeData(t, env, &comment)

	w, _ = s.do(t, "PATCH", "/api/v1/comments/"+comment.ID, tokenB, map[string]string{"content": "great"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, "GET", "/api/v1/videos/"+video.ID+"/comments?page=1&limit=5", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, "DELETE", "/api/v1/videos/"+video.ID, tokenB, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(t, "DELETE", "/api/v1/videos/"+video.ID, tokenA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "GET", "/api/v1/comments/"+comment.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTweetEndpoints(t *testing.T) {
	s := newTestServer(t)
	a, tokenA := s.account(t, "alice")
	_, tokenB := s.account(t, "bob")

	w, env := s.do(t, "GET", "/api/v1/tweets", "", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, env = s.do(t, "POST", "/api/v1/tweets", tokenA, map[string]string{"content": "hello world"})
	require.Equal(t, http.StatusOK, w.Code)
	var tweet models.Tweet
	decodeData(t, env, &tweet)

	w, _ = s.do(t, "PATCH", "/api/v1/tweets/"+tweet.ID, tokenB, map[string]string{"content": "mine now"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, "GET", "/api/v1/tweets/user/"+a.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "GET", "/api/v1/tweets?page=5", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, "GET", "/api/v1/tweets/"+tweet.ID+"/likes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"likes":0}`, string(env.Data))

	w, _ = s.do(t, "DELETE", "/api/v1/tweets/"+tweet.ID, tokenA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccountUpdates(t *testing.T) {
	s := newTestServer(t)
	_, token := s.account(t, "alice")
	s.account(t, "bob")

	w, _ := s.do(t, "PATCH", "/api/v1/users/username", token, map[string]string{"username": "BOB"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := s.do(t, "PATCH", "/api/v1/users/account", token, map[string]string{"fullname": "Alice L."})
	require.Equal(t, http.StatusOK, w.Code)
	var account models.Account
	decodeData(t, env, &account)
	assert.Equal(t, "Alice L.", account.FullName)

	w, _ = s.do(t, "POST", "/api/v1/users/change-password", token, map[string]string{"oldPassword": "password123", "newPassword": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, "POST", "/api/v1/users/change-password", token, map[string]string{"oldPassword": "nope-nope", "newPassword": "password456"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := multipartRequest(t, "PATCH", "/api/v1/users/avatar", nil,
		formFile{field: "avatar", name: "new.jpg", contentType: "image/jpeg"})
	req.Header.Set("Authorization", "Bearer "+token)
	w, env = s.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decodeData(t, env, &account)
	assert.Contains(t, account.AvatarURL, "/avatars/object-")

	req = multipartRequest(t, "PATCH", "/api/v1/users/cover-image", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, _ = s.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
