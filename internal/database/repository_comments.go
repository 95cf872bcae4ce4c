package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const commentColumns = `id, owner_id, video_id, content, created_at, updated_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.OwnerID, &c.VideoID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a new comment
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO comments (id, owner_id, video_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, comment.ID, comment.OwnerID, comment.VideoID, comment.Content,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)

	return translate("create comment", err)
}

// GetComment retrieves a comment by ID
func (r *Repository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := scanComment(r.db.Pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, translate("get comment", err)
	}
	return comment, nil
}

// UpdateCommentContent replaces the text of a comment
func (r *Repository) UpdateCommentContent(ctx context.Context, id, content string) (*models.Comment, error) {
	comment, err := scanComment(r.db.Pool.QueryRow(ctx, `
		UPDATE comments SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+commentColumns, id, content))
	if err != nil {
		return nil, translate("update comment", err)
	}
	return comment, nil
}

// DeleteComment removes a comment and its likes
func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := deleteLikesOn(ctx, tx, string(models.LikeKindComment), id); err != nil {
			return translate("delete comment likes", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return translate("delete comment", err)
		}
		if tag.RowsAffected() == 0 {
			return translate("delete comment", pgx.ErrNoRows)
		}
		return nil
	})
}

// ListVideoComments returns one page of a video's comments, oldest first, and the total count
func (r *Repository) ListVideoComments(ctx context.Context, videoID string, limit, offset int) ([]*models.Comment, int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID,
	).Scan(&total); err != nil {
		return nil, 0, translate("count comments", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE video_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, videoID, limit, offset)
	if err != nil {
		return nil, 0, translate("list comments", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, translate("scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("list comments", err)
	}
	return comments, total, nil
}
