package service

import (
	"context"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// SubscriptionRepository is the persistence SubscriptionService needs
type SubscriptionRepository interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	DeleteSubscription(ctx context.Context, subscriberID, channelID string) error
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
}

// SubscriptionService implements channel subscriptions
type SubscriptionService struct {
	repo SubscriptionRepository
}

// NewSubscriptionService creates a subscription service
func NewSubscriptionService(repo SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

func (s *SubscriptionService) channel(ctx context.Context, channelID string) error {
	if _, err := s.repo.GetAccountByID(ctx, channelID); err != nil {
		return notFoundOr(err, "Channel not found", "fetching the channel")
	}
	return nil
}

// Subscribe subscribes subscriberID to channelID
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	if subscriberID == channelID {
		return nil, apperror.BadRequest("You cannot subscribe to yourself")
	}
	if err := s.channel(ctx, channelID); err != nil {
		return nil, err
	}

	sub := &models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		if isDuplicate(err) {
			return nil, apperror.BadRequest("You are already subscribed to this channel")
		}
		return nil, internalError("subscribing", err)
	}

	metrics.RecordSubscription("subscribe")
	return sub, nil
}

// Unsubscribe removes the subscription of subscriberID to channelID
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	if subscriberID == channelID {
		return apperror.BadRequest("You cannot unsubscribe from yourself")
	}
	if err := s.channel(ctx, channelID); err != nil {
		return err
	}

	if err := s.repo.DeleteSubscription(ctx, subscriberID, channelID); err != nil {
		if isNotFound(err) {
			return apperror.BadRequest("You are not subscribed to this channel")
		}
		return internalError("unsubscribing", err)
	}

	metrics.RecordSubscription("unsubscribe")
	return nil
}

// SubscriberCount returns the number of subscribers of channelID
func (s *SubscriptionService) SubscriberCount(ctx context.Context, channelID string) (int64, error) {
	if err := s.channel(ctx, channelID); err != nil {
		return 0, err
	}

	count, err := s.repo.CountSubscribers(ctx, channelID)
	if err != nil {
		return 0, internalError("counting subscribers", err)
	}
	return count, nil
}
