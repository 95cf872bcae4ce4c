package database

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// newTestRepository connects to VIDTUBE_TEST_DATABASE_URL and applies the schema
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := os.Getenv("VIDTUBE_TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("Skipping integration test - requires PostgreSQL (set VIDTUBE_TEST_DATABASE_URL)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := &DB{Pool: pool}
	require.NoError(t, db.Migrate(ctx))
	return NewRepository(db)
}

func createTestAccount(t *testing.T, repo *Repository, username string) *models.Account {
	t.Helper()

	suffix := uuid.New().String()[:8]
	account := &models.Account{
		Username:     username + suffix,
		Email:        username + suffix + "@example.com",
		FullName:     "Test " + username,
		AvatarURL:    "http://localhost:9000/vidtube/avatars/a.png",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.CreateAccount(context.Background(), account))
	return account
}

func createTestVideo(t *testing.T, repo *Repository, ownerID string, published bool) *models.Video {
	t.Helper()

	video := &models.Video{
		OwnerID:      ownerID,
		VideoURL:     "http://localhost:9000/vidtube/videos/v.mp4",
		ThumbnailURL: "http://localhost:9000/vidtube/thumbnails/t.png",
		Title:        "Test video",
		Description:  "desc",
		Duration:     12.5,
		IsPublished:  published,
	}
	require.NoError(t, repo.CreateVideo(context.Background(), video))
	return video
}

func TestRepository_AccountUniqueness(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	account := createTestAccount(t, repo, "alice")

	dup := &models.Account{
		Username:     "ALICE" + account.Username[len("alice"):],
		Email:        "other-" + account.Email,
		FullName:     "Dup",
		PasswordHash: "hash",
	}
	err := repo.CreateAccount(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicate)

	exists, err := repo.AccountExists(ctx, account.Username, "nobody@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_PlaylistMembership(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	owner := createTestAccount(t, repo, "owner")
	first := createTestVideo(t, repo, owner.ID, true)
	second := createTestVideo(t, repo, owner.ID, true)

	playlist := &models.Playlist{
		OwnerID:    owner.ID,
		Name:       "Faves " + uuid.New().String(),
		Visibility: models.VisibilityPublic,
		VideoIDs:   []string{first.ID},
	}
	require.NoError(t, repo.CreatePlaylist(ctx, playlist))

	require.NoError(t, repo.AddVideoToPlaylist(ctx, playlist.ID, second.ID))
	assert.ErrorIs(t, repo.AddVideoToPlaylist(ctx, playlist.ID, second.ID), ErrDuplicate)

	loaded, err := repo.GetPlaylist(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, loaded.VideoIDs)

	videos, err := repo.GetPlaylistVideos(ctx, playlist.ID)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, first.ID, videos[0].ID)

	require.NoError(t, repo.RemoveVideoFromPlaylist(ctx, playlist.ID, first.ID))
	assert.ErrorIs(t, repo.RemoveVideoFromPlaylist(ctx, playlist.ID, first.ID), ErrNotFound)
}

func TestRepository_ToggleLike(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	liker := createTestAccount(t, repo, "liker")
	video := createTestVideo(t, repo, liker.ID, true)
	target := models.LikeTarget{Kind: models.LikeKindVideo, ID: video.ID}

	like, liked, err := repo.ToggleLike(ctx, liker.ID, target)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.NotNil(t, like)

	_, liked, err = repo.ToggleLike(ctx, liker.ID, target)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err := repo.CountLikes(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRepository_ChannelProfileAndHistory(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	channel := createTestAccount(t, repo, "channel")
	viewer := createTestAccount(t, repo, "viewer")

	require.NoError(t, repo.CreateSubscription(ctx, &models.Subscription{SubscriberID: viewer.ID, ChannelID: channel.ID}))
	err := repo.CreateSubscription(ctx, &models.Subscription{SubscriberID: viewer.ID, ChannelID: channel.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	profile, err := repo.GetChannelProfile(ctx, channel.Username, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	published := createTestVideo(t, repo, channel.ID, true)
	hidden := createTestVideo(t, repo, channel.ID, false)
	require.NoError(t, repo.RecordWatch(ctx, viewer.ID, published.ID))
	require.NoError(t, repo.RecordWatch(ctx, viewer.ID, hidden.ID))

	history, err := repo.GetWatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, published.ID, history[0].ID)
	assert.Equal(t, channel.Username, history[0].Owner.Username)
}
