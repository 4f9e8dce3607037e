package store

import (
	"context"
	"fmt"

	"github.com/bookdesk/platform/internal/model"
)

// CreateAPIKey persists a new API key record. Only the secret hash is
// stored; the raw key never reaches the database.
func (s *Store) CreateAPIKey(ctx context.Context, k *model.APIKey) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO api_keys (key_id, secret_hash, name, description, user_id, permissions, rate_limit, active, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		k.KeyID, k.SecretHash, k.Name, k.Description, k.UserID,
		k.Permissions, k.RateLimit, k.Active, k.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// FindAPIKey retrieves an API key by its public key_id prefix.
func (s *Store) FindAPIKey(ctx context.Context, keyID string) (*model.APIKey, error) {
	var k model.APIKey
	err := s.db.QueryRow(ctx,
		`SELECT key_id, secret_hash, name, description, user_id, permissions, rate_limit, last_used_at, last_origin, active, expires_at, created_at
		 FROM api_keys WHERE key_id = $1`, keyID,
	).Scan(&k.KeyID, &k.SecretHash, &k.Name, &k.Description, &k.UserID,
		&k.Permissions, &k.RateLimit, &k.LastUsedAt, &k.LastOrigin,
		&k.Active, &k.ExpiresAt, &k.CreatedAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find api key %s: %w", keyID, err)
	}
	return &k, nil
}

// TouchAPIKeyUsage records the last-used timestamp and network origin.
// Callers treat failures as best-effort.
func (s *Store) TouchAPIKeyUsage(ctx context.Context, keyID, origin string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE api_keys SET last_used_at = now(), last_origin = $1 WHERE key_id = $2`,
		origin, keyID,
	)
	if err != nil {
		return fmt.Errorf("touch api key %s: %w", keyID, err)
	}
	return nil
}

// CustomRateLimit returns the key's rate-limit override, or nil when the
// key uses the configured default.
func (s *Store) CustomRateLimit(ctx context.Context, keyID string) (*int, error) {
	var limit *int
	err := s.db.QueryRow(ctx,
		`SELECT rate_limit FROM api_keys WHERE key_id = $1`, keyID,
	).Scan(&limit)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rate limit for api key %s: %w", keyID, err)
	}
	return limit, nil
}

// ListAPIKeys retrieves API keys with cursor-based pagination.
func (s *Store) ListAPIKeys(ctx context.Context, limit int, cursor string) ([]model.APIKey, bool, error) {
	query := `SELECT key_id, secret_hash, name, description, user_id, permissions, rate_limit, last_used_at, last_origin, active, expires_at, created_at
	          FROM api_keys WHERE 1=1`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` AND key_id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY key_id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.KeyID, &k.SecretHash, &k.Name, &k.Description, &k.UserID,
			&k.Permissions, &k.RateLimit, &k.LastUsedAt, &k.LastOrigin,
			&k.Active, &k.ExpiresAt, &k.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate api keys: %w", err)
	}

	hasMore := len(keys) > limit
	if hasMore {
		keys = keys[:limit]
	}
	return keys, hasMore, nil
}

// DeactivateAPIKey soft-disables an API key.
func (s *Store) DeactivateAPIKey(ctx context.Context, keyID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE api_keys SET active = false WHERE key_id = $1 AND active`, keyID,
	)
	if err != nil {
		return fmt.Errorf("deactivate api key %s: %w", keyID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
