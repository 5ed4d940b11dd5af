package services

import (
	"context"

	"meal-telegram/models"

	"github.com/jackc/pgx/v5"
)

// upsertUser creates the user on first order. A non-empty display name
// refreshes the cached one; an empty name keeps what was stored.
func upsertUser(ctx context.Context, tx pgx.Tx, platformUserID, displayName string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO users (platform_user_id, display_name)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (platform_user_id) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, users.display_name)
		RETURNING id`,
		platformUserID, displayName,
	).Scan(&id)
	return id, err
}

// UserByPlatformID returns the stored user or ErrNotFound.
func (s *PGStore) UserByPlatformID(ctx context.Context, platformUserID string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, platform_user_id, COALESCE(display_name, '') FROM users
		WHERE platform_user_id = $1`,
		platformUserID,
	).Scan(&u.ID, &u.PlatformUserID, &u.DisplayName)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
