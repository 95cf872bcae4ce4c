package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database/dbtest"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

var errMediaDown = errors.New("media store unavailable")

// fakeMediaStore keeps uploaded objects in memory and consumes local files like the real store
type fakeMediaStore struct {
	mu        sync.Mutex
	objects   map[string]models.MediaKind
	uploadErr map[models.MediaFolder]error
	deleteErr error
	seq       int
	deleted   []string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{
		objects:   make(map[string]models.MediaKind),
		uploadErr: make(map[models.MediaFolder]error),
	}
}

func (f *fakeMediaStore) Upload(ctx context.Context, localPath string, folder models.MediaFolder, kind models.MediaKind) (*models.Asset, error) {
	defer os.Remove(localPath)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[folder]; err != nil {
		return nil, err
	}

	f.seq++
	publicID := fmt.Sprintf("%s/asset-%d%s", folder, f.seq, filepath.Ext(localPath))
	f.objects[publicID] = kind
	return &models.Asset{
		URL:      "http://media.test/vidtube/" + publicID,
		PublicID: publicID,
		Kind:     kind,
	}, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, publicID string, kind models.MediaKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, publicID)
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeMediaStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeMediaStore) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.objects {
		if "http://media.test/vidtube/"+id == url {
			return true
		}
	}
	return false
}

// MockOrphans is a mock implementation of OrphanReporter
type MockOrphans struct {
	mock.Mock
}

func (m *MockOrphans) PublishOrphan(ctx context.Context, asset *models.OrphanedAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

type fakeRevoker struct {
	revoked map[string]time.Duration
}

func (f *fakeRevoker) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	f.revoked[jti] = ttl
	return nil
}

type fakeProcessor struct {
	duration    float64
	durationErr error
	compressed  int
}

func (f *fakeProcessor) Duration(ctx context.Context, path string) (float64, error) {
	return f.duration, f.durationErr
}

func (f *fakeProcessor) Compress(ctx context.Context, path string) (string, error) {
	f.compressed++
	out := path + ".compressed.mp4"
	if err := os.Rename(path, out); err != nil {
		return "", err
	}
	return out, nil
}

type harness struct {
	store     *dbtest.Store
	media     *fakeMediaStore
	orphans   *MockOrphans
	revoker   *fakeRevoker
	processor *fakeProcessor
	tokens    *auth.TokenManager

	accounts      *AccountService
	videos        *VideoService
	comments      *CommentService
	tweets        *TweetService
	likes         *LikeService
	subscriptions *SubscriptionService
	playlists     *PlaylistService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:     dbtest.New(),
		media:     newFakeMediaStore(),
		orphans:   &MockOrphans{},
		revoker:   &fakeRevoker{revoked: make(map[string]time.Duration)},
		processor: &fakeProcessor{duration: 42.5},
		tokens: auth.NewTokenManager(config.AuthConfig{
			AccessTokenSecret:  "access-secret",
			AccessTokenTTL:     15 * time.Minute,
			RefreshTokenSecret: "refresh-secret",
			RefreshTokenTTL:    24 * time.Hour,
			BcryptCost:         4,
		}),
	}

	media := NewMedia(h.media, h.orphans, nil)
	h.accounts = NewAccountService(h.store, h.tokens, media, h.revoker, nil)
	h.videos = NewVideoService(h.store, media, h.processor, false, nil)
	h.comments = NewCommentService(h.store)
	h.tweets = NewTweetService(h.store)
	h.likes = NewLikeService(h.store)
	h.subscriptions = NewSubscriptionService(h.store)
	h.playlists = NewPlaylistService(h.store)
	return h
}

// tempUpload writes a small file the way the upload receiver would
func tempUpload(t *testing.T, field, name string, kind models.MediaKind) *upload.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	return &upload.File{Field: field, Path: path, OriginalName: name, Size: 4, Kind: kind}
}

func assertGone(t *testing.T, files ...*upload.File) {
	t.Helper()
	for _, f := range files {
		_, err := os.Stat(f.Path)
		assert.True(t, os.IsNotExist(err), "temp file %s should be removed", f.Path)
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperror.StatusCode(err), err.Error())
}

func (h *harness) signup(t *testing.T, username string) *models.Account {
	t.Helper()
	account, err := h.accounts.Signup(context.Background(), SignupInput{
		FullName: "User " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}, tempUpload(t, upload.FieldAvatar, "avatar.png", models.MediaKindImage), nil)
	require.NoError(t, err)
	return account
}

func (h *harness) publishedVideo(t *testing.T, owner *models.Account, title string) *models.Video {
	t.Helper()
	ctx := context.Background()
	video, err := h.videos.Publish(ctx, owner.ID, PublishVideoInput{Title: title, Description: "about " + title},
		tempUpload(t, upload.FieldVideo, "clip.mp4", models.MediaKindVideo),
		tempUpload(t, upload.FieldThumbnail, "thumb.jpg", models.MediaKindImage),
	)
	require.NoError(t, err)
	require.True(t, video.IsPublished)
	return video
}
