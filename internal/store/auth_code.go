package store

import (
	"context"
	"fmt"

	"github.com/bookdesk/platform/internal/model"
)

// CreateAuthCode persists a freshly issued authorization code.
func (s *Store) CreateAuthCode(ctx context.Context, code *model.AuthorizationCode) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO auth_codes (code, client_id, user_id, redirect_uri, scope, code_challenge, challenge_method, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		code.Code, code.ClientID, code.UserID, code.RedirectURI, code.Scope,
		code.CodeChallenge, code.ChallengeMethod, code.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert auth code: %w", err)
	}
	return nil
}

// ConsumeAuthCode atomically deletes and returns an unexpired code scoped to
// the given client. The single DELETE guarantees a code is redeemed at most
// once even under concurrent exchange attempts; a second call returns
// ErrNotFound. Expired codes are treated as absent.
func (s *Store) ConsumeAuthCode(ctx context.Context, code, clientID string) (*model.AuthorizationCode, error) {
	var c model.AuthorizationCode
	err := s.db.QueryRow(ctx,
		`DELETE FROM auth_codes
		 WHERE code = $1 AND client_id = $2 AND expires_at > now()
		 RETURNING code, client_id, user_id, redirect_uri, scope, code_challenge, challenge_method, expires_at, created_at`,
		code, clientID,
	).Scan(&c.Code, &c.ClientID, &c.UserID, &c.RedirectURI, &c.Scope,
		&c.CodeChallenge, &c.ChallengeMethod, &c.ExpiresAt, &c.CreatedAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume auth code: %w", err)
	}
	return &c, nil
}
