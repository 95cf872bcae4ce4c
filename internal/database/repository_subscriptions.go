package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// CreateSubscription inserts a subscription. A repeated pair yields ErrDuplicate.
func (r *Repository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO subscriptions (id, subscriber_id, channel_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, sub.ID, sub.SubscriberID, sub.ChannelID).Scan(&sub.CreatedAt)

	return translate("create subscription", err)
}

// GetSubscription retrieves the subscription of subscriberID to channelID
func (r *Repository) GetSubscription(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	var s models.Subscription
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, subscriber_id, channel_id, created_at
		FROM subscriptions
		WHERE subscriber_id = $1 AND channel_id = $2
	`, subscriberID, channelID).Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt)
	if err != nil {
		return nil, translate("get subscription", err)
	}
	return &s, nil
}

// DeleteSubscription removes a subscription, returning ErrNotFound when none exists
func (r *Repository) DeleteSubscription(ctx context.Context, subscriberID, channelID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
	if err != nil {
		return translate("delete subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return fmtNotFound("delete subscription")
	}
	return nil
}

// CountSubscribers returns how many accounts subscribe to a channel
func (r *Repository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID,
	).Scan(&count)
	if err != nil {
		return 0, translate("count subscribers", err)
	}
	return count, nil
}
