package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookdesk/platform/internal/crypto"
	"github.com/bookdesk/platform/internal/model"
	"github.com/bookdesk/platform/internal/platform"
	"github.com/bookdesk/platform/internal/store"
)

const (
	apiKeyPrefix   = "bk_"
	apiKeyIDLength = 12
	// apiKeySecretBytes gives 43 base64url chars of secret after the
	// public key_id prefix.
	apiKeySecretBytes = 32
)

// APIKeyStore is the credential-store surface the API key service needs.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, k *model.APIKey) error
	FindAPIKey(ctx context.Context, keyID string) (*model.APIKey, error)
	TouchAPIKeyUsage(ctx context.Context, keyID, origin string) error
	ListAPIKeys(ctx context.Context, limit int, cursor string) ([]model.APIKey, bool, error)
	DeactivateAPIKey(ctx context.Context, keyID string) error
}

// APIKeyService manages static API keys and authenticates presented keys.
type APIKeyService struct {
	store  APIKeyStore
	logger zerolog.Logger
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(store APIKeyStore, logger zerolog.Logger) *APIKeyService {
	return &APIKeyService{store: store, logger: logger}
}

// Create generates a new API key, stores the argon2id hash, and returns the
// model along with the raw key string. The raw key must be shown to the
// caller exactly once; it is not recoverable afterwards.
func (s *APIKeyService) Create(ctx context.Context, name, description, userID string, permissions []string, rateLimit *int, expiresAt *time.Time) (*model.APIKey, string, error) {
	keyID := platform.NewKeyID(apiKeyIDLength)
	rawKey := apiKeyPrefix + keyID + platform.NewToken(apiKeySecretBytes)

	hash, err := crypto.HashSecret(rawKey)
	if err != nil {
		return nil, "", fmt.Errorf("hash api key: %w", err)
	}

	if permissions == nil {
		permissions = []string{"*"}
	}

	key := &model.APIKey{
		KeyID:       keyID,
		SecretHash:  hash,
		Name:        name,
		Description: description,
		UserID:      userID,
		Permissions: permissions,
		RateLimit:   rateLimit,
		Active:      true,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, "", err
	}

	return key, rawKey, nil
}

// Authenticate resolves an API key from a presented raw key. A key that is
// unknown, inactive, expired, or fails the hash check resolves to nil with
// no error, so the caller falls through to anonymous without leaking
// whether the key_id exists. Only infrastructure failures return an error.
func (s *APIKeyService) Authenticate(ctx context.Context, presented, origin string) (*model.APIKey, error) {
	keyID, ok := splitKeyID(presented)
	if !ok {
		return nil, nil
	}

	key, err := s.store.FindAPIKey(ctx, keyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !key.Usable(time.Now()) {
		return nil, nil
	}

	if !crypto.VerifySecret(presented, key.SecretHash) {
		return nil, nil
	}

	// Usage tracking is best-effort; a failed touch never invalidates the
	// request.
	if err := s.store.TouchAPIKeyUsage(ctx, keyID, origin); err != nil {
		s.logger.Warn().Err(err).Str("key_id", keyID).Msg("failed to record api key usage")
	}

	return key, nil
}

// List retrieves API keys with cursor-based pagination.
func (s *APIKeyService) List(ctx context.Context, limit int, cursor string) ([]model.APIKey, bool, error) {
	return s.store.ListAPIKeys(ctx, limit, cursor)
}

// Deactivate soft-disables an API key.
func (s *APIKeyService) Deactivate(ctx context.Context, keyID string) error {
	return s.store.DeactivateAPIKey(ctx, keyID)
}

// splitKeyID extracts the public key_id prefix from a presented raw key.
func splitKeyID(presented string) (string, bool) {
	if !strings.HasPrefix(presented, apiKeyPrefix) {
		return "", false
	}
	rest := presented[len(apiKeyPrefix):]
	if len(rest) <= apiKeyIDLength {
		return "", false
	}
	return rest[:apiKeyIDLength], true
}
