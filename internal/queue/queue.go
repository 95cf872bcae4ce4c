package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const (
	CleanupQueueName = "media_cleanup"
	ExchangeName     = "vidtube"
)

// Queue carries orphaned media assets from the API to the cleanup worker
type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// URL builds the AMQP connection string for cfg
func URL(cfg config.QueueConfig) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Vhost)
}

// New connects and declares the cleanup exchange, queue and binding
func New(cfg config.QueueConfig) (*Queue, error) {
	conn, err := amqp.Dial(URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q := &Queue{conn: conn, channel: channel}
	if err := q.declare(); err != nil {
		q.Close()
		return nil, err
	}
	return q, nil
}

func (q *Queue) declare() error {
	err := q.channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = q.channel.QueueDeclare(
		CleanupQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = q.channel.QueueBind(CleanupQueueName, CleanupQueueName, ExchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// Close closes the queue connection
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func encodeOrphan(asset *models.OrphanedAsset) (amqp.Publishing, error) {
	body, err := json.Marshal(asset)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal orphaned asset: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{"x-retry-count": int32(asset.RetryCount)},
	}, nil
}

func decodeOrphan(body []byte) (*models.OrphanedAsset, error) {
	var asset models.OrphanedAsset
	if err := json.Unmarshal(body, &asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal orphaned asset: %w", err)
	}
	if asset.PublicID == "" {
		return nil, fmt.Errorf("orphaned asset has no public id")
	}
	return &asset, nil
}

// PublishOrphan reports an asset whose compensating delete failed
func (q *Queue) PublishOrphan(ctx context.Context, asset *models.OrphanedAsset) error {
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now()
	}

	msg, err := encodeOrphan(asset)
	if err != nil {
		return err
	}

	err = q.channel.PublishWithContext(ctx,
		ExchangeName,
		CleanupQueueName,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish orphaned asset: %w", err)
	}

	metrics.OrphanedAssetsPublished.Inc()
	return nil
}

// ConsumeOrphans delivers orphaned assets to handler until ctx is done.
// Malformed messages are dropped. Handler errors are left to the handler:
// the message is acked once handler returns so retries go through the retry queue.
func (q *Queue) ConsumeOrphans(ctx context.Context, handler func(context.Context, *models.OrphanedAsset) error) error {
	// Set QoS to limit concurrent processing
	if err := q.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := q.channel.Consume(
		CleanupQueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				asset, err := decodeOrphan(msg.Body)
				if err != nil {
					msg.Nack(false, false)
					continue
				}

				if err := handler(ctx, asset); err != nil {
					// Requeue when the handler could not even schedule a retry
					msg.Nack(false, true)
				} else {
					msg.Ack(false)
				}
			}
		}
	}()

	return nil
}

// GetQueueDepth returns the number of messages in the queue
func (q *Queue) GetQueueDepth() (int, error) {
	info, err := q.channel.QueueInspect(CleanupQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return info.Messages, nil
}
