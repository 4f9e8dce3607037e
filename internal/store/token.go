package store

import (
	"context"
	"fmt"

	"github.com/bookdesk/platform/internal/model"
)

// CreateAccessToken persists a new access token.
func (s *Store) CreateAccessToken(ctx context.Context, t *model.AccessToken) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO access_tokens (token, client_id, user_id, scope, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		t.Token, t.ClientID, t.UserID, t.Scope, t.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert access token: %w", err)
	}
	return nil
}

// FindAccessToken looks up an unexpired access token. Expired tokens are
// reported as ErrNotFound regardless of physical presence; the sweeper
// deletes them lazily.
func (s *Store) FindAccessToken(ctx context.Context, token string) (*model.AccessToken, error) {
	var t model.AccessToken
	err := s.db.QueryRow(ctx,
		`SELECT token, client_id, user_id, scope, expires_at, created_at
		 FROM access_tokens WHERE token = $1 AND expires_at > now()`, token,
	).Scan(&t.Token, &t.ClientID, &t.UserID, &t.Scope, &t.ExpiresAt, &t.CreatedAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find access token: %w", err)
	}
	return &t, nil
}

// DeleteAccessToken removes an access token. Deleting an absent token is
// not an error; revocation is idempotent.
func (s *Store) DeleteAccessToken(ctx context.Context, token string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM access_tokens WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete access token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateRefreshToken persists a new refresh token.
func (s *Store) CreateRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO refresh_tokens (token, client_id, user_id, scope, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		t.Token, t.ClientID, t.UserID, t.Scope, t.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// FindAndDeleteRefreshToken atomically deletes and returns an unexpired
// refresh token scoped to the given client. The single DELETE enforces
// rotation: a stale or already-rotated token returns ErrNotFound.
func (s *Store) FindAndDeleteRefreshToken(ctx context.Context, token, clientID string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := s.db.QueryRow(ctx,
		`DELETE FROM refresh_tokens
		 WHERE token = $1 AND client_id = $2 AND expires_at > now()
		 RETURNING token, client_id, user_id, scope, expires_at, created_at`,
		token, clientID,
	).Scan(&t.Token, &t.ClientID, &t.UserID, &t.Scope, &t.ExpiresAt, &t.CreatedAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return &t, nil
}

// FindRefreshToken looks up an unexpired refresh token without consuming
// it. Used by introspection only.
func (s *Store) FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := s.db.QueryRow(ctx,
		`SELECT token, client_id, user_id, scope, expires_at, created_at
		 FROM refresh_tokens WHERE token = $1 AND expires_at > now()`, token,
	).Scan(&t.Token, &t.ClientID, &t.UserID, &t.Scope, &t.ExpiresAt, &t.CreatedAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &t, nil
}

// DeleteRefreshToken removes a refresh token. Idempotent like access token
// deletion.
func (s *Store) DeleteRefreshToken(ctx context.Context, token string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
