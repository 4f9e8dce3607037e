package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bookdesk/platform/internal/model"
	"github.com/bookdesk/platform/internal/store"
)

// memStore is an in-memory credential store for exercising full flows
// through the handlers without a database.
type memStore struct {
	mu       sync.Mutex
	clients  map[string]*model.Client
	codes    map[string]*model.AuthorizationCode
	access   map[string]*model.AccessToken
	refresh  map[string]*model.RefreshToken
	keys     map[string]*model.APIKey
	counters map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		clients:  map[string]*model.Client{},
		codes:    map[string]*model.AuthorizationCode{},
		access:   map[string]*model.AccessToken{},
		refresh:  map[string]*model.RefreshToken{},
		keys:     map[string]*model.APIKey{},
		counters: map[string]int{},
	}
}

func (m *memStore) GetClient(_ context.Context, clientID string) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memStore) SaveClient(_ context.Context, c *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	m.clients[c.ID] = &copied
	return nil
}

func (m *memStore) SetClientActive(_ context.Context, clientID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	if !ok {
		return store.ErrNotFound
	}
	c.Active = active
	return nil
}

func (m *memStore) ListClients(_ context.Context, limit int, cursor string) ([]model.Client, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Client
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out, false, nil
}

func (m *memStore) CreateAuthCode(_ context.Context, code *model.AuthorizationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *code
	m.codes[code.Code] = &copied
	return nil
}

func (m *memStore) ConsumeAuthCode(_ context.Context, code, clientID string) (*model.AuthorizationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[code]
	if !ok || c.ClientID != clientID || time.Now().After(c.ExpiresAt) {
		return nil, store.ErrNotFound
	}
	delete(m.codes, code)
	return c, nil
}

func (m *memStore) CreateAccessToken(_ context.Context, t *model.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *t
	m.access[t.Token] = &copied
	return nil
}

func (m *memStore) FindAccessToken(_ context.Context, token string) (*model.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.access[token]
	if !ok || time.Now().After(t.ExpiresAt) {
		return nil, store.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memStore) DeleteAccessToken(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.access[token]
	delete(m.access, token)
	return ok, nil
}

func (m *memStore) CreateRefreshToken(_ context.Context, t *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *t
	m.refresh[t.Token] = &copied
	return nil
}

func (m *memStore) FindAndDeleteRefreshToken(_ context.Context, token, clientID string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.refresh[token]
	if !ok || t.ClientID != clientID || time.Now().After(t.ExpiresAt) {
		return nil, store.ErrNotFound
	}
	delete(m.refresh, token)
	return t, nil
}

func (m *memStore) FindRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.refresh[token]
	if !ok || time.Now().After(t.ExpiresAt) {
		return nil, store.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memStore) DeleteRefreshToken(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.refresh[token]
	delete(m.refresh, token)
	return ok, nil
}

func (m *memStore) CreateAPIKey(_ context.Context, k *model.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *k
	m.keys[k.KeyID] = &copied
	return nil
}

func (m *memStore) FindAPIKey(_ context.Context, keyID string) (*model.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[keyID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *k
	return &copied, nil
}

func (m *memStore) TouchAPIKeyUsage(_ context.Context, keyID, origin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[keyID]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	k.LastUsedAt = &now
	k.LastOrigin = &origin
	return nil
}

func (m *memStore) ListAPIKeys(_ context.Context, limit int, cursor string) ([]model.APIKey, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.APIKey
	for _, k := range m.keys {
		out = append(out, *k)
	}
	return out, false, nil
}

func (m *memStore) DeactivateAPIKey(_ context.Context, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[keyID]
	if !ok {
		return store.ErrNotFound
	}
	k.Active = false
	return nil
}

func (m *memStore) IncrementRateCounter(_ context.Context, identifier, endpoint string, windowStart time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s|%s|%d", identifier, endpoint, windowStart.Unix())
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memStore) CustomRateLimit(_ context.Context, keyID string) (*int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[keyID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return k.RateLimit, nil
}
