package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const playlistSelect = `
	SELECT p.id, p.owner_id, p.name, p.description, p.visibility, p.created_at, p.updated_at,
	       ARRAY(SELECT pv.video_id FROM playlist_videos pv WHERE pv.playlist_id = p.id ORDER BY pv.seq)
	FROM playlists p
`

func scanPlaylist(row pgx.Row) (*models.Playlist, error) {
	var p models.Playlist
	var visibility string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &visibility,
		&p.CreatedAt, &p.UpdatedAt, &p.VideoIDs)
	if err != nil {
		return nil, err
	}
	p.Visibility = models.Visibility(visibility)
	if p.VideoIDs == nil {
		p.VideoIDs = []string{}
	}
	return &p, nil
}

// CreatePlaylist inserts a playlist and its initial members in one transaction
func (r *Repository) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist.ID == "" {
		playlist.ID = uuid.New().String()
	}

	return r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO playlists (id, owner_id, name, description, visibility)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, string(playlist.Visibility),
		).Scan(&playlist.CreatedAt, &playlist.UpdatedAt)
		if err != nil {
			return translate("create playlist", err)
		}

		for _, videoID := range playlist.VideoIDs {
			_, err := tx.Exec(ctx, `
				INSERT INTO playlist_videos (playlist_id, video_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, playlist.ID, videoID)
			if err != nil {
				return translate("add initial playlist video", err)
			}
		}
		return nil
	})
}

// GetPlaylist retrieves a playlist with its ordered video IDs
func (r *Repository) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	playlist, err := scanPlaylist(r.db.Pool.QueryRow(ctx, playlistSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, translate("get playlist", err)
	}
	return playlist, nil
}

// PlaylistNameTaken reports whether another playlist already uses name.
// excludeID lets an update keep its own name.
func (r *Repository) PlaylistNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var taken bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM playlists WHERE name = $1 AND id <> $2)`, name, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, translate("check playlist name", err)
	}
	return taken, nil
}

// ListPlaylistsByOwner returns every playlist owned by an account, newest first
func (r *Repository) ListPlaylistsByOwner(ctx context.Context, ownerID string) ([]*models.Playlist, error) {
	rows, err := r.db.Pool.Query(ctx, playlistSelect+` WHERE p.owner_id = $1 ORDER BY p.created_at DESC`, ownerID)
	if err != nil {
		return nil, translate("list playlists", err)
	}
	defer rows.Close()

	playlists := make([]*models.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, translate("scan playlist", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, translate("list playlists", rows.Err())
}

// UpdatePlaylist persists name, description and visibility
func (r *Repository) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE playlists
		SET name = $2, description = $3, visibility = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, playlist.ID, playlist.Name, playlist.Description, string(playlist.Visibility),
	).Scan(&playlist.UpdatedAt)

	return translate("update playlist", err)
}

// DeletePlaylist removes a playlist; membership rows cascade
func (r *Repository) DeletePlaylist(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return translate("delete playlist", err)
	}
	if tag.RowsAffected() == 0 {
		return fmtNotFound("delete playlist")
	}
	return nil
}

// AddVideoToPlaylist appends videoID if absent. An existing member yields ErrDuplicate.
func (r *Repository) AddVideoToPlaylist(ctx context.Context, playlistID, videoID string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO playlist_videos (playlist_id, video_id)
		VALUES ($1, $2)
		ON CONFLICT (playlist_id, video_id) DO NOTHING
	`, playlistID, videoID)
	if err != nil {
		return translate("add playlist video", err)
	}
	if tag.RowsAffected() == 0 {
		return fmtDuplicate("add playlist video")
	}

	_, err = r.db.Pool.Exec(ctx, `UPDATE playlists SET updated_at = NOW() WHERE id = $1`, playlistID)
	return translate("touch playlist", err)
}

// RemoveVideoFromPlaylist deletes videoID from the playlist. A non-member yields ErrNotFound.
func (r *Repository) RemoveVideoFromPlaylist(ctx context.Context, playlistID, videoID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`, playlistID, videoID)
	if err != nil {
		return translate("remove playlist video", err)
	}
	if tag.RowsAffected() == 0 {
		return fmtNotFound("remove playlist video")
	}

	_, err = r.db.Pool.Exec(ctx, `UPDATE playlists SET updated_at = NOW() WHERE id = $1`, playlistID)
	return translate("touch playlist", err)
}

// GetPlaylistVideos joins the playlist's members to their videos in membership order
func (r *Repository) GetPlaylistVideos(ctx context.Context, playlistID string) ([]*models.Video, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+prefixedVideoColumns("v")+`
		FROM playlist_videos pv
		JOIN videos v ON v.id = pv.video_id
		WHERE pv.playlist_id = $1
		ORDER BY pv.seq
	`, playlistID)
	if err != nil {
		return nil, translate("get playlist videos", err)
	}
	return collectVideos(rows, "get playlist videos")
}
