// Package dbtest provides an in-memory implementation of the repository
// used by service and handler tests.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

type watchEntry struct {
	videoID   string
	watchedAt time.Time
}

type likeKey struct {
	likerID string
	kind    models.LikeKind
	target  string
}

// Store mirrors the semantics of database.Repository in memory
type Store struct {
	mu sync.Mutex

	now      func() time.Time
	failures map[string]error

	accounts      map[string]*models.Account
	videos        map[string]*models.Video
	videoOrder    []string
	comments      map[string]*models.Comment
	commentOrder  []string
	tweets        map[string]*models.Tweet
	tweetOrder    []string
	likes         map[likeKey]*models.Like
	likeOrder     []likeKey
	subscriptions map[[2]string]*models.Subscription
	playlists     map[string]*models.Playlist
	playlistOrder []string
	history       map[string][]watchEntry
}

// New creates an empty store
func New() *Store {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int64

	return &Store{
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
		failures:      make(map[string]error),
		accounts:      make(map[string]*models.Account),
		videos:        make(map[string]*models.Video),
		comments:      make(map[string]*models.Comment),
		tweets:        make(map[string]*models.Tweet),
		likes:         make(map[likeKey]*models.Like),
		subscriptions: make(map[[2]string]*models.Subscription),
		playlists:     make(map[string]*models.Playlist),
		history:       make(map[string][]watchEntry),
	}
}

// FailOn makes the named method return err until cleared with a nil error
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, database.ErrNotFound)
}

func duplicate(op string) error {
	return fmt.Errorf("%s: %w", op, database.ErrDuplicate)
}

// duplicateOn mirrors the wrapped driver error the postgres store returns for a named unique index
func duplicateOn(op, constraint string) error {
	return fmt.Errorf("%s: %w: %w", op, database.ErrDuplicate, &pgconn.PgError{Code: "23505", ConstraintName: constraint})
}

// Health always succeeds unless a failure is injected
func (s *Store) Health(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail("Health")
}

// ---- accounts ----

func copyAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

func (s *Store) findAccount(match func(*models.Account) bool) *models.Account {
	for _, a := range s.accounts {
		if match(a) {
			return a
		}
	}
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateAccount"); err != nil {
		return err
	}

	account.Username = strings.ToLower(account.Username)
	account.Email = strings.ToLower(account.Email)
	if s.findAccount(func(a *models.Account) bool { return a.Username == account.Username }) != nil {
		return duplicateOn("create account", database.AccountsUsernameIndex)
	}
	if s.findAccount(func(a *models.Account) bool { return a.Email == account.Email }) != nil {
		return duplicateOn("create account", database.AccountsEmailIndex)
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = s.now()
	account.UpdatedAt = account.CreatedAt
	s.accounts[account.ID] = copyAccount(account)
	return nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetAccountByID"); err != nil {
		return nil, err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, notFound("get account")
	}
	return copyAccount(a), nil
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAccount(func(a *models.Account) bool { return strings.EqualFold(a.Username, username) })
	if a == nil {
		return nil, notFound("get account by username")
	}
	return copyAccount(a), nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAccount(func(a *models.Account) bool { return strings.EqualFold(a.Email, email) })
	if a == nil {
		return nil, notFound("get account by email")
	}
	return copyAccount(a), nil
}

func (s *Store) AccountExists(ctx context.Context, username, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAccount(func(a *models.Account) bool {
		return strings.EqualFold(a.Username, username) || strings.EqualFold(a.Email, email)
	})
	return a != nil, nil
}

func (s *Store) updateAccount(method, op string, id string, apply func(a *models.Account) error) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(method); err != nil {
		return nil, err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, notFound(op)
	}
	updated := copyAccount(a)
	if err := apply(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()
	s.accounts[id] = updated
	return copyAccount(updated), nil
}

func (s *Store) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.Account, error) {
	return s.updateAccount("UpdateAccountDetails", "update account details", id, func(a *models.Account) error {
		email = strings.ToLower(email)
		if other := s.findAccount(func(o *models.Account) bool { return o.ID != id && o.Email == email }); other != nil {
			return duplicateOn("update account details", database.AccountsEmailIndex)
		}
		a.FullName = fullName
		a.Email = email
		return nil
	})
}

func (s *Store) UpdateUsername(ctx context.Context, id, username string) (*models.Account, error) {
	return s.updateAccount("UpdateUsername", "update username", id, func(a *models.Account) error {
		username = strings.ToLower(username)
		if other := s.findAccount(func(o *models.Account) bool { return o.ID != id && o.Username == username }); other != nil {
			return duplicateOn("update username", database.AccountsUsernameIndex)
		}
		a.Username = username
		return nil
	})
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := s.updateAccount("UpdatePassword", "update password", id, func(a *models.Account) error {
		a.PasswordHash = passwordHash
		a.RefreshToken = ""
		return nil
	})
	return err
}

func (s *Store) SetRefreshToken(ctx context.Context, id, token string) error {
	_, err := s.updateAccount("SetRefreshToken", "set refresh token", id, func(a *models.Account) error {
		a.RefreshToken = token
		return nil
	})
	return err
}

func (s *Store) UpdateAvatar(ctx context.Context, id, url string) (*models.Account, error) {
	return s.updateAccount("UpdateAvatar", "update avatar", id, func(a *models.Account) error {
		a.AvatarURL = url
		return nil
	})
}

func (s *Store) UpdateCoverImage(ctx context.Context, id, url string) (*models.Account, error) {
	return s.updateAccount("UpdateCoverImage", "update cover image", id, func(a *models.Account) error {
		a.CoverImageURL = url
		return nil
	})
}

func (s *Store) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAccount(func(a *models.Account) bool { return strings.EqualFold(a.Username, username) })
	if a == nil {
		return nil, notFound("get channel profile")
	}

	p := &models.ChannelProfile{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
	}
	for key := range s.subscriptions {
		if key[1] == a.ID {
			p.SubscribersCount++
			if key[0] == viewerID {
				p.IsSubscribed = true
			}
		}
		if key[0] == a.ID {
			p.ChannelsSubscribedToCount++
		}
	}
	return p, nil
}

func (s *Store) RecordWatch(ctx context.Context, accountID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RecordWatch"); err != nil {
		return err
	}

	entries := s.history[accountID]
	kept := entries[:0]
	for _, e := range entries {
		if e.videoID != videoID {
			kept = append(kept, e)
		}
	}
	s.history[accountID] = append(kept, watchEntry{videoID: videoID, watchedAt: s.now()})
	return nil
}

func (s *Store) GetWatchHistory(ctx context.Context, accountID string) ([]*models.WatchedVideo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history[accountID]
	history := make([]*models.WatchedVideo, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		v, ok := s.videos[entries[i].videoID]
		if !ok || !(v.IsPublished || v.OwnerID == accountID) {
			continue
		}
		owner, ok := s.accounts[v.OwnerID]
		if !ok {
			continue
		}
		history = append(history, &models.WatchedVideo{
			Video:     *v,
			Owner:     owner.Public(),
			WatchedAt: entries[i].watchedAt,
		})
	}
	return history, nil
}

// ---- videos ----

func copyVideo(v *models.Video) *models.Video {
	c := *v
	return &c
}

func (s *Store) CreateVideo(ctx context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateVideo"); err != nil {
		return err
	}
	if _, ok := s.accounts[video.OwnerID]; !ok {
		return fmt.Errorf("create video: %w", database.ErrConstraint)
	}
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	video.CreatedAt = s.now()
	video.UpdatedAt = video.CreatedAt
	s.videos[video.ID] = copyVideo(video)
	s.videoOrder = append(s.videoOrder, video.ID)
	return nil
}

func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetVideo"); err != nil {
		return nil, err
	}
	v, ok := s.videos[id]
	if !ok {
		return nil, notFound("get video")
	}
	return copyVideo(v), nil
}

func (s *Store) ListPublishedVideos(ctx context.Context, filter models.VideoFilter) ([]*models.Video, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*models.Video, 0)
	query := strings.ToLower(filter.Query)
	for _, id := range s.videoOrder {
		v, ok := s.videos[id]
		if !ok || !v.IsPublished {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(v.Title), query) {
			continue
		}
		if filter.OwnerID != "" && v.OwnerID != filter.OwnerID {
			continue
		}
		matched = append(matched, copyVideo(v))
	}

	less := func(a, b *models.Video) bool {
		switch filter.SortBy {
		case models.VideoSortViews:
			return a.Views < b.Views
		case models.VideoSortDuration:
			return a.Duration < b.Duration
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if filter.Descending {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	return window(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func (s *Store) UpdateVideo(ctx context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateVideo"); err != nil {
		return err
	}
	existing, ok := s.videos[video.ID]
	if !ok {
		return notFound("update video")
	}
	updated := copyVideo(existing)
	updated.Title = video.Title
	updated.Description = video.Description
	updated.ThumbnailURL = video.ThumbnailURL
	updated.IsPublished = video.IsPublished
	updated.PlaybackPosition = video.PlaybackPosition
	updated.UpdatedAt = s.now()
	video.UpdatedAt = updated.UpdatedAt
	s.videos[video.ID] = updated
	return nil
}

func (s *Store) IncrementViews(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return 0, notFound("increment views")
	}
	v.Views++
	return v.Views, nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteVideo"); err != nil {
		return err
	}
	if _, ok := s.videos[id]; !ok {
		return notFound("delete video")
	}

	for cid, c := range s.comments {
		if c.VideoID == id {
			s.deleteLikesLocked(models.LikeKindComment, cid)
			delete(s.comments, cid)
		}
	}
	s.deleteLikesLocked(models.LikeKindVideo, id)
	for _, p := range s.playlists {
		p.VideoIDs = without(p.VideoIDs, id)
	}
	for account, entries := range s.history {
		kept := entries[:0]
		for _, e := range entries {
			if e.videoID != id {
				kept = append(kept, e)
			}
		}
		s.history[account] = kept
	}
	delete(s.videos, id)
	return nil
}

func (s *Store) ListLikedVideos(ctx context.Context, likerID string) ([]*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos := make([]*models.Video, 0)
	for i := len(s.likeOrder) - 1; i >= 0; i-- {
		key := s.likeOrder[i]
		if key.likerID != likerID || key.kind != models.LikeKindVideo {
			continue
		}
		if _, ok := s.likes[key]; !ok {
			continue
		}
		if v, ok := s.videos[key.target]; ok && v.IsPublished {
			videos = append(videos, copyVideo(v))
		}
	}
	return videos, nil
}

// ---- comments ----

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateComment"); err != nil {
		return err
	}
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	comment.CreatedAt = s.now()
	comment.UpdatedAt = comment.CreatedAt
	c := *comment
	s.comments[c.ID] = &c
	s.commentOrder = append(s.commentOrder, c.ID)
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, notFound("get comment")
	}
	cc := *c
	return &cc, nil
}

func (s *Store) UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, notFound("update comment")
	}
	c.Content = content
	c.UpdatedAt = s.now()
	cc := *c
	return &cc, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return notFound("delete comment")
	}
	s.deleteLikesLocked(models.LikeKindComment, id)
	delete(s.comments, id)
	return nil
}

func (s *Store) ListVideoComments(ctx context.Context, videoID string, limit, offset int) ([]*models.Comment, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*models.Comment, 0)
	for _, id := range s.commentOrder {
		if c, ok := s.comments[id]; ok && c.VideoID == videoID {
			cc := *c
			matched = append(matched, &cc)
		}
	}
	return window(matched, limit, offset), int64(len(matched)), nil
}

// ---- tweets ----

func (s *Store) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateTweet"); err != nil {
		return err
	}
	if tweet.ID == "" {
		tweet.ID = uuid.New().String()
	}
	tweet.CreatedAt = s.now()
	tweet.UpdatedAt = tweet.CreatedAt
	t := *tweet
	s.tweets[t.ID] = &t
	s.tweetOrder = append(s.tweetOrder, t.ID)
	return nil
}

func (s *Store) GetTweet(ctx context.Context, id string) (*models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tweets[id]
	if !ok {
		return nil, notFound("get tweet")
	}
	tt := *t
	return &tt, nil
}

func (s *Store) UpdateTweetContent(ctx context.Context, id, content string) (*models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tweets[id]
	if !ok {
		return nil, notFound("update tweet")
	}
	t.Content = content
	t.UpdatedAt = s.now()
	tt := *t
	return &tt, nil
}

func (s *Store) DeleteTweet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return notFound("delete tweet")
	}
	s.deleteLikesLocked(models.LikeKindTweet, id)
	delete(s.tweets, id)
	return nil
}

func (s *Store) ListTweets(ctx context.Context, ownerID string, limit, offset int) ([]*models.Tweet, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*models.Tweet, 0)
	for i := len(s.tweetOrder) - 1; i >= 0; i-- {
		t, ok := s.tweets[s.tweetOrder[i]]
		if !ok || (ownerID != "" && t.OwnerID != ownerID) {
			continue
		}
		tt := *t
		matched = append(matched, &tt)
	}
	return window(matched, limit, offset), int64(len(matched)), nil
}

// ---- likes ----

func (s *Store) deleteLikesLocked(kind models.LikeKind, targetID string) {
	for key := range s.likes {
		if key.kind == kind && key.target == targetID {
			delete(s.likes, key)
		}
	}
}

func (s *Store) ToggleLike(ctx context.Context, likerID string, target models.LikeTarget) (*models.Like, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ToggleLike"); err != nil {
		return nil, false, err
	}

	key := likeKey{likerID: likerID, kind: target.Kind, target: target.ID}
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return nil, false, nil
	}

	like := &models.Like{ID: uuid.New().String(), LikerID: likerID, Target: target, CreatedAt: s.now()}
	s.likes[key] = like
	s.likeOrder = append(s.likeOrder, key)
	l := *like
	return &l, true, nil
}

func (s *Store) CountLikes(ctx context.Context, target models.LikeTarget) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for key := range s.likes {
		if key.kind == target.Kind && key.target == target.ID {
			count++
		}
	}
	return count, nil
}

// ---- subscriptions ----

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.SubscriberID == sub.ChannelID {
		return fmt.Errorf("create subscription: %w", database.ErrConstraint)
	}
	key := [2]string{sub.SubscriberID, sub.ChannelID}
	if _, ok := s.subscriptions[key]; ok {
		return duplicate("create subscription")
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = s.now()
	c := *sub
	s.subscriptions[key] = &c
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[[2]string{subscriberID, channelID}]
	if !ok {
		return nil, notFound("get subscription")
	}
	c := *sub
	return &c, nil
}

func (s *Store) DeleteSubscription(ctx context.Context, subscriberID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{subscriberID, channelID}
	if _, ok := s.subscriptions[key]; !ok {
		return notFound("delete subscription")
	}
	delete(s.subscriptions, key)
	return nil
}

func (s *Store) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for key := range s.subscriptions {
		if key[1] == channelID {
			count++
		}
	}
	return count, nil
}

// ---- playlists ----

func copyPlaylist(p *models.Playlist) *models.Playlist {
	c := *p
	c.VideoIDs = append([]string{}, p.VideoIDs...)
	return &c
}

func without(ids []string, id string) []string {
	kept := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}

func (s *Store) nameTakenLocked(name, excludeID string) bool {
	for _, p := range s.playlists {
		if p.Name == name && p.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *Store) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreatePlaylist"); err != nil {
		return err
	}
	if s.nameTakenLocked(playlist.Name, "") {
		return duplicate("create playlist")
	}
	if playlist.ID == "" {
		playlist.ID = uuid.New().String()
	}
	if playlist.VideoIDs == nil {
		playlist.VideoIDs = []string{}
	}
	playlist.CreatedAt = s.now()
	playlist.UpdatedAt = playlist.CreatedAt
	s.playlists[playlist.ID] = copyPlaylist(playlist)
	s.playlistOrder = append(s.playlistOrder, playlist.ID)
	return nil
}

func (s *Store) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return nil, notFound("get playlist")
	}
	return copyPlaylist(p), nil
}

func (s *Store) PlaylistNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nameTakenLocked(name, excludeID), nil
}

func (s *Store) ListPlaylistsByOwner(ctx context.Context, ownerID string) ([]*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlists := make([]*models.Playlist, 0)
	for i := len(s.playlistOrder) - 1; i >= 0; i-- {
		if p, ok := s.playlists[s.playlistOrder[i]]; ok && p.OwnerID == ownerID {
			playlists = append(playlists, copyPlaylist(p))
		}
	}
	return playlists, nil
}

func (s *Store) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[playlist.ID]
	if !ok {
		return notFound("update playlist")
	}
	if s.nameTakenLocked(playlist.Name, playlist.ID) {
		return duplicate("update playlist")
	}
	p.Name = playlist.Name
	p.Description = playlist.Description
	p.Visibility = playlist.Visibility
	p.UpdatedAt = s.now()
	playlist.UpdatedAt = p.UpdatedAt
	return nil
}

func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return notFound("delete playlist")
	}
	delete(s.playlists, id)
	return nil
}

func (s *Store) AddVideoToPlaylist(ctx context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddVideoToPlaylist"); err != nil {
		return err
	}
	p, ok := s.playlists[playlistID]
	if !ok {
		return fmt.Errorf("add playlist video: %w", database.ErrConstraint)
	}
	if _, ok := s.videos[videoID]; !ok {
		return fmt.Errorf("add playlist video: %w", database.ErrConstraint)
	}
	if p.Contains(videoID) {
		return duplicate("add playlist video")
	}
	p.VideoIDs = append(p.VideoIDs, videoID)
	p.UpdatedAt = s.now()
	return nil
}

func (s *Store) RemoveVideoFromPlaylist(ctx context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[playlistID]
	if !ok || !p.Contains(videoID) {
		return notFound("remove playlist video")
	}
	p.VideoIDs = without(p.VideoIDs, videoID)
	p.UpdatedAt = s.now()
	return nil
}

func (s *Store) GetPlaylistVideos(ctx context.Context, playlistID string) ([]*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[playlistID]
	if !ok {
		return []*models.Video{}, nil
	}
	videos := make([]*models.Video, 0, len(p.VideoIDs))
	for _, id := range p.VideoIDs {
		if v, ok := s.videos[id]; ok {
			videos = append(videos, copyVideo(v))
		}
	}
	return videos, nil
}
