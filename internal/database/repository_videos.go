package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

var videoColumnNames = []string{
	"id", "owner_id", "video_url", "thumbnail_url", "title", "description",
	"duration", "views", "is_published", "playback_position", "created_at", "updated_at",
}

var videoColumns = strings.Join(videoColumnNames, ", ")

func prefixedVideoColumns(alias string) string {
	cols := make([]string, len(videoColumnNames))
	for i, c := range videoColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

var videoSortColumns = map[models.VideoSort]string{
	models.VideoSortCreatedAt: "created_at",
	models.VideoSortViews:     "views",
	models.VideoSortDuration:  "duration",
}

func scanVideo(row pgx.Row) (*models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.VideoURL, &v.ThumbnailURL, &v.Title, &v.Description,
		&v.Duration, &v.Views, &v.IsPublished, &v.PlaybackPosition, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVideos(rows pgx.Rows, op string) ([]*models.Video, error) {
	defer rows.Close()

	videos := make([]*models.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		videos = append(videos, v)
	}
	return videos, translate(op, rows.Err())
}

// CreateVideo inserts a new video
func (r *Repository) CreateVideo(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}

	query := `
		INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING views, playback_position, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		video.ID, video.OwnerID, video.VideoURL, video.ThumbnailURL,
		video.Title, video.Description, video.Duration, video.IsPublished,
	).Scan(&video.Views, &video.PlaybackPosition, &video.CreatedAt, &video.UpdatedAt)

	return translate("create video", err)
}

// GetVideo retrieves a video by ID regardless of its publication state
func (r *Repository) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	video, err := scanVideo(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("get video", err)
	}
	return video, nil
}

// ListPublishedVideos returns one page of published videos and the total match count
func (r *Repository) ListPublishedVideos(ctx context.Context, filter models.VideoFilter) ([]*models.Video, int64, error) {
	where := []string{"is_published"}
	args := []interface{}{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, translate("count videos", err)
	}

	column, ok := videoSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		videoColumns, clause, column, direction, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translate("list videos", err)
	}
	videos, err := collectVideos(rows, "list videos")
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// UpdateVideo persists the mutable fields of a video
func (r *Repository) UpdateVideo(ctx context.Context, video *models.Video) error {
	query := `
		UPDATE videos
		SET title = $2, description = $3, thumbnail_url = $4, is_published = $5,
		    playback_position = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		video.ID, video.Title, video.Description, video.ThumbnailURL,
		video.IsPublished, video.PlaybackPosition,
	).Scan(&video.UpdatedAt)

	return translate("update video", err)
}

// IncrementViews atomically bumps the view counter and returns the new value
func (r *Repository) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := r.db.Pool.QueryRow(ctx,
		`UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&views)
	if err != nil {
		return 0, translate("increment views", err)
	}
	return views, nil
}

// DeleteVideo removes a video together with its comments and every like pointing at either
func (r *Repository) DeleteVideo(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id FROM comments WHERE video_id = $1`, id)
		if err != nil {
			return translate("list video comments", err)
		}
		commentIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return translate("list video comments", err)
		}

		if err := deleteLikesOn(ctx, tx, string(models.LikeKindComment), commentIDs...); err != nil {
			return translate("delete comment likes", err)
		}
		if err := deleteLikesOn(ctx, tx, string(models.LikeKindVideo), id); err != nil {
			return translate("delete video likes", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
		if err != nil {
			return translate("delete video", err)
		}
		if tag.RowsAffected() == 0 {
			return translate("delete video", pgx.ErrNoRows)
		}
		return nil
	})
}

// ListLikedVideos returns the published videos liked by an account, most recent like first
func (r *Repository) ListLikedVideos(ctx context.Context, likerID string) ([]*models.Video, error) {
	query := `
		SELECT ` + prefixedVideoColumns("v") + `
		FROM likes l
		JOIN videos v ON v.id = l.target_id
		WHERE l.liker_id = $1 AND l.target_kind = 'video' AND v.is_published
		ORDER BY l.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, likerID)
	if err != nil {
		return nil, translate("list liked videos", err)
	}
	return collectVideos(rows, "list liked videos")
}
