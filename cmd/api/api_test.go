package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/cache"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database/dbtest"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// memoryMedia is an in-memory media store that consumes local files like the real one
type memoryMedia struct {
	mu      sync.Mutex
	seq     int
	objects map[string]bool
}

func (m *memoryMedia) Upload(ctx context.Context, localPath string, folder models.MediaFolder, kind models.MediaKind) (*models.Asset, error) {
	defer os.Remove(localPath)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("%s/object-%d", folder, m.seq)
	m.objects[id] = true
	return &models.Asset{URL: "http://media.test/vidtube/" + id, PublicID: id, Kind: kind}, nil
}

func (m *memoryMedia) Delete(ctx context.Context, publicID string, kind models.MediaKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, publicID)
	return nil
}

type testServer struct {
	router *gin.Engine
	store  *dbtest.Store
	tokens *auth.TokenManager
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	redisCache, err := cache.NewCache(config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { redisCache.Close() })

	cfg := &config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret",
			AccessTokenTTL:     15 * time.Minute,
			RefreshTokenSecret: "refresh-secret",
			RefreshTokenTTL:    24 * time.Hour,
			BcryptCost:         4,
		},
		Upload: config.UploadConfig{
			TempDir:       t.TempDir(),
			MaxImageBytes: 1 << 20,
			MaxVideoBytes: 1 << 20,
		},
		Server:    config.ServerConfig{MaxBodyBytes: 16 * 1024},
		RateLimit: config.RateLimitConfig{AuthLimit: 100, AuthWindow: time.Minute},
		CORS:      config.CORSConfig{AllowedOrigin: "*"},
	}

	receiver, err := upload.NewReceiver(cfg.Upload)
	require.NoError(t, err)

	store := dbtest.New()
	tokens := auth.NewTokenManager(cfg.Auth)
	api := NewAPI(Deps{
		Config:   cfg,
		Repo:     store,
		Tokens:   tokens,
		Media:    &memoryMedia{objects: make(map[string]bool)},
		Sessions: redisCache,
		Receiver: receiver,
	})

	return &testServer{
		router: setupRouter(api, cfg, nil),
		store:  store,
		tokens: tokens,
		redis:  mr,
	}
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.Equal(t, w.Code, env.StatusCode)
	assert.Equal(t, w.Code < 400, env.Success)
	return w, env
}

// account creates an account directly in the store and returns it with an access token
func (s *testServer) account(t *testing.T, username string) (*models.Account, string) {
	t.Helper()
	hash, err := s.tokens.HashPassword("password123")
	require.NoError(t, err)

	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		AvatarURL:    "http://media.test/vidtube/avatars/" + username + ".png",
		PasswordHash: hash,
	}
	require.NoError(t, s.store.CreateAccount(context.Background(), account))

	token, err := s.tokens.IssueAccess(account)
	require.NoError(t, err)
	return account, token
}

func (s *testServer) video(t *testing.T, owner *models.Account, published bool) *models.Video {
	t.Helper()
	video := &models.Video{
		OwnerID:      owner.ID,
		VideoURL:     "http://media.test/vidtube/videos/clip.mp4",
		ThumbnailURL: "http://media.test/vidtube/thumbnails/clip.png",
		Title:        "clip",
		Description:  "a clip",
		IsPublished:  published,
	}
	require.NoError(t, s.store.CreateVideo(context.Background(), video))
	return video
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

type formFile struct {
	field, name, contentType string
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake media"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
