package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bookdesk/platform/internal/model"
)

type mockOAuthStore struct {
	mock.Mock
}

func (m *mockOAuthStore) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	args := m.Called(ctx, clientID)
	if c := args.Get(0); c != nil {
		return c.(*model.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOAuthStore) SaveClient(ctx context.Context, c *model.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockOAuthStore) SetClientActive(ctx context.Context, clientID string, active bool) error {
	return m.Called(ctx, clientID, active).Error(0)
}

func (m *mockOAuthStore) ListClients(ctx context.Context, limit int, cursor string) ([]model.Client, bool, error) {
	args := m.Called(ctx, limit, cursor)
	var clients []model.Client
	if c := args.Get(0); c != nil {
		clients = c.([]model.Client)
	}
	return clients, args.Bool(1), args.Error(2)
}

func (m *mockOAuthStore) CreateAuthCode(ctx context.Context, code *model.AuthorizationCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *mockOAuthStore) ConsumeAuthCode(ctx context.Context, code, clientID string) (*model.AuthorizationCode, error) {
	args := m.Called(ctx, code, clientID)
	if c := args.Get(0); c != nil {
		return c.(*model.AuthorizationCode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOAuthStore) CreateAccessToken(ctx context.Context, t *model.AccessToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockOAuthStore) FindAccessToken(ctx context.Context, token string) (*model.AccessToken, error) {
	args := m.Called(ctx, token)
	if t := args.Get(0); t != nil {
		return t.(*model.AccessToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOAuthStore) DeleteAccessToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockOAuthStore) CreateRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockOAuthStore) FindAndDeleteRefreshToken(ctx context.Context, token, clientID string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token, clientID)
	if t := args.Get(0); t != nil {
		return t.(*model.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOAuthStore) FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	if t := args.Get(0); t != nil {
		return t.(*model.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOAuthStore) DeleteRefreshToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type mockAPIKeyStore struct {
	mock.Mock
}

func (m *mockAPIKeyStore) CreateAPIKey(ctx context.Context, k *model.APIKey) error {
	return m.Called(ctx, k).Error(0)
}

func (m *mockAPIKeyStore) FindAPIKey(ctx context.Context, keyID string) (*model.APIKey, error) {
	args := m.Called(ctx, keyID)
	if k := args.Get(0); k != nil {
		return k.(*model.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyStore) TouchAPIKeyUsage(ctx context.Context, keyID, origin string) error {
	return m.Called(ctx, keyID, origin).Error(0)
}

func (m *mockAPIKeyStore) ListAPIKeys(ctx context.Context, limit int, cursor string) ([]model.APIKey, bool, error) {
	args := m.Called(ctx, limit, cursor)
	var keys []model.APIKey
	if k := args.Get(0); k != nil {
		keys = k.([]model.APIKey)
	}
	return keys, args.Bool(1), args.Error(2)
}

func (m *mockAPIKeyStore) DeactivateAPIKey(ctx context.Context, keyID string) error {
	return m.Called(ctx, keyID).Error(0)
}

type mockRateStore struct {
	mock.Mock
}

func (m *mockRateStore) IncrementRateCounter(ctx context.Context, identifier, endpoint string, windowStart time.Time) (int, error) {
	args := m.Called(ctx, identifier, endpoint, windowStart)
	return args.Int(0), args.Error(1)
}

func (m *mockRateStore) CustomRateLimit(ctx context.Context, keyID string) (*int, error) {
	args := m.Called(ctx, keyID)
	if l := args.Get(0); l != nil {
		return l.(*int), args.Error(1)
	}
	return nil, args.Error(1)
}
