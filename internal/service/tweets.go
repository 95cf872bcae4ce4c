package service

import (
	"context"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// TweetRepository is the persistence TweetService needs
type TweetRepository interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweet(ctx context.Context, id string) (*models.Tweet, error)
	UpdateTweetContent(ctx context.Context, id, content string) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, id string) error
	ListTweets(ctx context.Context, ownerID string, limit, offset int) ([]*models.Tweet, int64, error)
}

// TweetService implements short text posts
type TweetService struct {
	repo TweetRepository
}

// NewTweetService creates a tweet service
func NewTweetService(repo TweetRepository) *TweetService {
	return &TweetService{repo: repo}
}

func validateTweet(content string) (string, error) {
	content = trimmed(content)
	if content == "" {
		return "", apperror.BadRequest("Tweet content is required")
	}
	if charCount(content) > maxTweetLength {
		return "", apperror.BadRequest("Tweet must be at most %d characters", maxTweetLength)
	}
	return content, nil
}

// List returns a page of all tweets, newest first
func (s *TweetService) List(ctx context.Context, p Pagination) ([]*models.Tweet, models.Page, error) {
	return s.list(ctx, "", p)
}

// ListByUser returns a page of one account's tweets, newest first
func (s *TweetService) ListByUser(ctx context.Context, userID string, p Pagination) ([]*models.Tweet, models.Page, error) {
	if _, err := s.repo.GetAccountByID(ctx, userID); err != nil {
		return nil, models.Page{}, notFoundOr(err, "User not found", "fetching tweets")
	}
	return s.list(ctx, userID, p)
}

func (s *TweetService) list(ctx context.Context, ownerID string, p Pagination) ([]*models.Tweet, models.Page, error) {
	page, err := p.normalize()
	if err != nil {
		return nil, models.Page{}, err
	}

	tweets, total, err := s.repo.ListTweets(ctx, ownerID, page.Limit, page.offset())
	if err != nil {
		return nil, models.Page{}, internalError("fetching tweets", err)
	}

	meta := models.NewPage(page.Page, page.Limit, total)
	// an empty first page is a valid answer, any other page past the end is not
	if page.Page > 1 && page.Page > meta.TotalPages {
		return nil, models.Page{}, apperror.BadRequest("Page does not exist")
	}
	return tweets, meta, nil
}

// Create posts a tweet
func (s *TweetService) Create(ctx context.Context, ownerID, content string) (*models.Tweet, error) {
	content, err := validateTweet(content)
	if err != nil {
		return nil, err
	}

	tweet := &models.Tweet{OwnerID: ownerID, Content: content}
	if err := s.repo.CreateTweet(ctx, tweet); err != nil {
		return nil, internalError("creating the tweet", err)
	}
	return tweet, nil
}

func (s *TweetService) owned(ctx context.Context, ownerID, id, action string) (*models.Tweet, error) {
	tweet, err := s.repo.GetTweet(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Tweet not found", action)
	}
	if tweet.OwnerID != ownerID {
		return nil, apperror.Unauthorized("You are not the owner of this tweet")
	}
	return tweet, nil
}

// Update replaces the content of an owned tweet
func (s *TweetService) Update(ctx context.Context, ownerID, id, content string) (*models.Tweet, error) {
	content, err := validateTweet(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, ownerID, id, "updating the tweet"); err != nil {
		return nil, err
	}

	tweet, err := s.repo.UpdateTweetContent(ctx, id, content)
	if err != nil {
		return nil, notFoundOr(err, "Tweet not found", "updating the tweet")
	}
	return tweet, nil
}

// Delete removes an owned tweet and its likes
func (s *TweetService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id, "deleting the tweet"); err != nil {
		return err
	}
	if err := s.repo.DeleteTweet(ctx, id); err != nil {
		return notFoundOr(err, "Tweet not found", "deleting the tweet")
	}
	return nil
}
