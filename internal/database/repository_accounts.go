package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const accountColumns = `id, username, email, fullname, avatar_url, cover_image_url,
	password_hash, refresh_token, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.FullName, &a.AvatarURL, &a.CoverImageURL,
		&a.PasswordHash, &a.RefreshToken, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts a new account. Username and email are stored lower-cased.
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.Username = strings.ToLower(account.Username)
	account.Email = strings.ToLower(account.Email)

	query := `
		INSERT INTO accounts (id, username, email, fullname, avatar_url, cover_image_url, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		account.ID, account.Username, account.Email, account.FullName,
		account.AvatarURL, account.CoverImageURL, account.PasswordHash,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	return translate("create account", err)
}

// GetAccountByID retrieves an account by ID
func (r *Repository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("get account", err)
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by its handle, case-insensitively
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(username) = LOWER($1)`

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, translate("get account by username", err)
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by email, case-insensitively
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, translate("get account by email", err)
	}
	return account, nil
}

// AccountExists reports whether the username or the email is already registered
func (r *Repository) AccountExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)
		)`, username, email).Scan(&exists)
	if err != nil {
		return false, translate("check account existence", err)
	}
	return exists, nil
}

func (r *Repository) updateAccount(ctx context.Context, op, set string, args ...interface{}) (*models.Account, error) {
	query := `UPDATE accounts SET ` + set + `, updated_at = NOW() WHERE id = $1 RETURNING ` + accountColumns

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(op, err)
	}
	return account, nil
}

// UpdateAccountDetails updates the display name and email
func (r *Repository) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.Account, error) {
	return r.updateAccount(ctx, "update account details", `fullname = $2, email = $3`, id, fullName, strings.ToLower(email))
}

// UpdateUsername changes the account handle
func (r *Repository) UpdateUsername(ctx context.Context, id, username string) (*models.Account, error) {
	return r.updateAccount(ctx, "update username", `username = $2`, id, strings.ToLower(username))
}

// UpdatePassword stores a new password hash and invalidates the refresh token
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.updateAccount(ctx, "update password", `password_hash = $2, refresh_token = ''`, id, passwordHash)
	return err
}

// SetRefreshToken stores the current refresh token; an empty token logs the account out
func (r *Repository) SetRefreshToken(ctx context.Context, id, token string) error {
	_, err := r.updateAccount(ctx, "set refresh token", `refresh_token = $2`, id, token)
	return err
}

// UpdateAvatar stores a new avatar URL
func (r *Repository) UpdateAvatar(ctx context.Context, id, url string) (*models.Account, error) {
	return r.updateAccount(ctx, "update avatar", `avatar_url = $2`, id, url)
}

// UpdateCoverImage stores a new cover image URL
func (r *Repository) UpdateCoverImage(ctx context.Context, id, url string) (*models.Account, error) {
	return r.updateAccount(ctx, "update cover image", `cover_image_url = $2`, id, url)
}

// GetChannelProfile loads an account with its subscriber statistics.
// viewerID may be empty for anonymous callers, in which case IsSubscribed is false.
func (r *Repository) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	query := `
		SELECT a.id, a.username, a.email, a.fullname, a.avatar_url, a.cover_image_url, a.created_at,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = a.id),
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = a.id),
		       EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = a.id AND s.subscriber_id = $2)
		FROM accounts a
		WHERE LOWER(a.username) = LOWER($1)
	`

	var p models.ChannelProfile
	err := r.db.Pool.QueryRow(ctx, query, username, viewerID).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.AvatarURL, &p.CoverImageURL, &p.CreatedAt,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed,
	)
	if err != nil {
		return nil, translate("get channel profile", err)
	}
	return &p, nil
}

// RecordWatch moves videoID to the front of the account's watch history
func (r *Repository) RecordWatch(ctx context.Context, accountID, videoID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO watch_history (account_id, video_id, watched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at
	`, accountID, videoID)
	return translate("record watch", err)
}

// GetWatchHistory joins the watch history with videos and their owners, most recent first.
// Unpublished videos owned by someone else are left out.
func (r *Repository) GetWatchHistory(ctx context.Context, accountID string) ([]*models.WatchedVideo, error) {
	query := `
		SELECT ` + prefixedVideoColumns("v") + `,
		       o.id, o.username, o.fullname, o.avatar_url, w.watched_at
		FROM watch_history w
		JOIN videos v ON v.id = w.video_id
		JOIN accounts o ON o.id = v.owner_id
		WHERE w.account_id = $1 AND (v.is_published OR v.owner_id = $1)
		ORDER BY w.watched_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, translate("get watch history", err)
	}
	defer rows.Close()

	history := make([]*models.WatchedVideo, 0)
	for rows.Next() {
		var w models.WatchedVideo
		err := rows.Scan(
			&w.ID, &w.OwnerID, &w.VideoURL, &w.ThumbnailURL, &w.Title, &w.Description,
			&w.Duration, &w.Views, &w.IsPublished, &w.PlaybackPosition, &w.CreatedAt, &w.UpdatedAt,
			&w.Owner.ID, &w.Owner.Username, &w.Owner.FullName, &w.Owner.AvatarURL, &w.WatchedAt,
		)
		if err != nil {
			return nil, translate("scan watch history", err)
		}
		history = append(history, &w)
	}

	return history, translate("iterate watch history", rows.Err())
}
