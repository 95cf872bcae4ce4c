package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// ToggleLike removes the caller's like on target if one exists, otherwise creates it.
// It returns the created like and true, or nil and false when a like was removed.
func (r *Repository) ToggleLike(ctx context.Context, likerID string, target models.LikeTarget) (*models.Like, bool, error) {
	var created *models.Like

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var removedID string
		err := tx.QueryRow(ctx, `
			DELETE FROM likes
			WHERE liker_id = $1 AND target_kind = $2 AND target_id = $3
			RETURNING id
		`, likerID, string(target.Kind), target.ID).Scan(&removedID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return translate("remove like", err)
		}

		like := &models.Like{ID: uuid.New().String(), LikerID: likerID, Target: target}
		err = tx.QueryRow(ctx, `
			INSERT INTO likes (id, liker_id, target_kind, target_id)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, like.ID, like.LikerID, string(target.Kind), target.ID).Scan(&like.CreatedAt)
		if err != nil {
			return translate("create like", err)
		}
		created = like
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return created, created != nil, nil
}

// CountLikes returns the number of likes on a target
func (r *Repository) CountLikes(ctx context.Context, target models.LikeTarget) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM likes WHERE target_kind = $1 AND target_id = $2`,
		string(target.Kind), target.ID,
	).Scan(&count)
	if err != nil {
		return 0, translate("count likes", err)
	}
	return count, nil
}
