package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const tweetColumns = `id, owner_id, content, created_at, updated_at`

func scanTweet(row pgx.Row) (*models.Tweet, error) {
	var t models.Tweet
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTweet inserts a new tweet
func (r *Repository) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	if tweet.ID == "" {
		tweet.ID = uuid.New().String()
	}

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO tweets (id, owner_id, content)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, tweet.ID, tweet.OwnerID, tweet.Content).Scan(&tweet.CreatedAt, &tweet.UpdatedAt)

	return translate("create tweet", err)
}

// GetTweet retrieves a tweet by ID
func (r *Repository) GetTweet(ctx context.Context, id string) (*models.Tweet, error) {
	tweet, err := scanTweet(r.db.Pool.QueryRow(ctx,
		`SELECT `+tweetColumns+` FROM tweets WHERE id = $1`, id))
	if err != nil {
		return nil, translate("get tweet", err)
	}
	return tweet, nil
}

// UpdateTweetContent replaces the text of a tweet
func (r *Repository) UpdateTweetContent(ctx context.Context, id, content string) (*models.Tweet, error) {
	tweet, err := scanTweet(r.db.Pool.QueryRow(ctx, `
		UPDATE tweets SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+tweetColumns, id, content))
	if err != nil {
		return nil, translate("update tweet", err)
	}
	return tweet, nil
}

// DeleteTweet removes a tweet and its likes
func (r *Repository) DeleteTweet(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := deleteLikesOn(ctx, tx, string(models.LikeKindTweet), id); err != nil {
			return translate("delete tweet likes", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
		if err != nil {
			return translate("delete tweet", err)
		}
		if tag.RowsAffected() == 0 {
			return translate("delete tweet", pgx.ErrNoRows)
		}
		return nil
	})
}

// ListTweets returns one page of tweets, newest first. An empty ownerID lists every account's tweets.
func (r *Repository) ListTweets(ctx context.Context, ownerID string, limit, offset int) ([]*models.Tweet, int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tweets WHERE $1 = '' OR owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, translate("count tweets", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+tweetColumns+` FROM tweets
		WHERE $1 = '' OR owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, translate("list tweets", err)
	}
	defer rows.Close()

	tweets := make([]*models.Tweet, 0)
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, 0, translate("scan tweet", err)
		}
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("list tweets", err)
	}
	return tweets, total, nil
}
