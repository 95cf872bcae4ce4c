package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const (
	DeadLetterQueueName    = "media_cleanup_dlq"
	DeadLetterExchangeName = "vidtube_dlq"
	RetryQueueName         = "media_cleanup_retry"
	MaxRetries             = 5
)

// SetupDeadLetterQueue declares the dead letter exchange and queue plus the retry
// queue whose expired messages flow back into the cleanup queue
func (q *Queue) SetupDeadLetterQueue() error {
	err := q.channel.ExchangeDeclare(
		DeadLetterExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	_, err = q.channel.QueueDeclare(DeadLetterQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	err = q.channel.QueueBind(DeadLetterQueueName, DeadLetterQueueName, DeadLetterExchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	retryArgs := amqp.Table{
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": CleanupQueueName,
	}

	_, err = q.channel.QueueDeclare(RetryQueueName, true, false, false, false, retryArgs)
	if err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}

	log.Info().Msg("Dead letter queue infrastructure set up successfully")
	return nil
}

// PublishToRetryQueue schedules another delete attempt with exponential backoff.
// Once MaxRetries is reached the asset goes to the dead letter queue instead.
func (q *Queue) PublishToRetryQueue(ctx context.Context, asset *models.OrphanedAsset, reason string) error {
	if asset.RetryCount >= MaxRetries {
		return q.PublishToDeadLetterQueue(ctx, asset, "max retries exceeded: "+reason)
	}

	retryCount := asset.RetryCount
	next := *asset
	next.RetryCount = retryCount + 1
	next.Reason = reason

	msg, err := encodeOrphan(&next)
	if err != nil {
		return err
	}

	delay := calculateBackoffDelay(retryCount)
	msg.Expiration = fmt.Sprintf("%d", delay.Milliseconds())

	if err := q.channel.PublishWithContext(ctx, "", RetryQueueName, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to retry queue: %w", err)
	}

	log.Info().
		Str("public_id", asset.PublicID).
		Int("retry", next.RetryCount).
		Dur("delay", delay).
		Msg("Orphaned asset queued for retry")
	return nil
}

// PublishToDeadLetterQueue parks an asset that could not be deleted
func (q *Queue) PublishToDeadLetterQueue(ctx context.Context, asset *models.OrphanedAsset, reason string) error {
	msg, err := encodeOrphan(asset)
	if err != nil {
		return err
	}
	msg.Headers["x-failure-reason"] = reason
	msg.Headers["x-failed-at"] = time.Now().Format(time.RFC3339)

	err = q.channel.PublishWithContext(ctx, DeadLetterExchangeName, DeadLetterQueueName, false, false, msg)
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	log.Warn().Str("public_id", asset.PublicID).Str("reason", reason).Msg("Orphaned asset moved to dead letter queue")
	return nil
}

// calculateBackoffDelay calculates exponential backoff delay
func calculateBackoffDelay(retryCount int) time.Duration {
	// Exponential backoff: 1min, 2min, 4min, 8min, 16min
	baseDelay := 1 * time.Minute
	delay := baseDelay * (1 << retryCount)

	// Cap at 1 hour
	if delay > 1*time.Hour {
		delay = 1 * time.Hour
	}

	return delay
}

// GetDLQDepth returns the number of messages in the dead letter queue
func (q *Queue) GetDLQDepth() (int, error) {
	info, err := q.channel.QueueInspect(DeadLetterQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect DLQ: %w", err)
	}

	return info.Messages, nil
}
