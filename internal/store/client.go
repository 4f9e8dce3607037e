package store

import (
	"context"
	"fmt"

	"github.com/bookdesk/platform/internal/model"
)

// GetClient retrieves a client by its public client_id. Returns ErrNotFound
// for unknown clients.
func (s *Store) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	var c model.Client
	err := s.db.QueryRow(ctx,
		`SELECT id, secret_hash, name, description, redirect_uris, grant_types, scope, user_id, active, created_at, updated_at
		 FROM oauth_clients WHERE id = $1`, clientID,
	).Scan(&c.ID, &c.SecretHash, &c.Name, &c.Description, &c.RedirectURIs,
		&c.GrantTypes, &c.Scope, &c.UserID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client %s: %w", clientID, err)
	}
	return &c, nil
}

// SaveClient upserts a client. Used for registration and secret rotation;
// clients are never physically deleted.
func (s *Store) SaveClient(ctx context.Context, c *model.Client) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO oauth_clients (id, secret_hash, name, description, redirect_uris, grant_types, scope, user_id, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		 ON CONFLICT (id) DO UPDATE SET
		   secret_hash = $2, name = $3, description = $4, redirect_uris = $5,
		   grant_types = $6, scope = $7, active = $9, updated_at = now()`,
		c.ID, c.SecretHash, c.Name, c.Description, c.RedirectURIs,
		c.GrantTypes, c.Scope, c.UserID, c.Active,
	)
	if err != nil {
		return fmt.Errorf("save client %s: %w", c.ID, err)
	}
	return nil
}

// SetClientActive toggles the soft-disable flag.
func (s *Store) SetClientActive(ctx context.Context, clientID string, active bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE oauth_clients SET active = $1, updated_at = now() WHERE id = $2`, active, clientID,
	)
	if err != nil {
		return fmt.Errorf("set client %s active: %w", clientID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListClients retrieves clients with cursor-based pagination.
func (s *Store) ListClients(ctx context.Context, limit int, cursor string) ([]model.Client, bool, error) {
	query := `SELECT id, secret_hash, name, description, redirect_uris, grant_types, scope, user_id, active, created_at, updated_at
	          FROM oauth_clients WHERE 1=1`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.SecretHash, &c.Name, &c.Description, &c.RedirectURIs,
			&c.GrantTypes, &c.Scope, &c.UserID, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate clients: %w", err)
	}

	hasMore := len(clients) > limit
	if hasMore {
		clients = clients[:limit]
	}
	return clients, hasMore, nil
}
