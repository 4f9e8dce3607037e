package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookdesk/platform/internal/model"
)

func scanAPIKey(keyID string, active bool, rateLimit *int) func(dest ...any) error {
	now := time.Now().Truncate(time.Microsecond)
	return func(dest ...any) error {
		*(dest[0].(*string)) = keyID
		*(dest[1].(*string)) = "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"
		*(dest[2].(*string)) = "ci-key"
		*(dest[3].(*string)) = ""
		*(dest[4].(*string)) = "user-1"
		*(dest[5].(*[]string)) = []string{"bookings:read"}
		*(dest[6].(**int)) = rateLimit
		*(dest[7].(**time.Time)) = nil
		*(dest[8].(**string)) = nil
		*(dest[9].(*bool)) = active
		*(dest[10].(**time.Time)) = nil
		*(dest[11].(*time.Time)) = now
		return nil
	}
}

func TestStore_FindAPIKey_Success(t *testing.T) {
	db := &mockDB{}
	s := New(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: scanAPIKey("abc123def456", true, nil)}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	key, err := s.FindAPIKey(ctx, "abc123def456")
	require.NoError(t, err)
	assert.Equal(t, "abc123def456", key.KeyID)
	assert.Equal(t, []string{"bookings:read"}, key.Permissions)
	assert.True(t, key.Active)
	db.AssertExpectations(t)
}

func TestStore_FindAPIKey_NotFound(t *testing.T) {
	db := &mockDB{}
	s := New(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	key, err := s.FindAPIKey(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, key)
	db.AssertExpectations(t)
}

func TestStore_CreateAPIKey(t *testing.T) {
	db := &mockDB{}
	s := New(db)
	ctx := context.Background()

	limit := 50
	key := &model.APIKey{
		KeyID:       "abc123def456",
		SecretHash:  "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Name:        "ci-key",
		UserID:      "user-1",
		Permissions: []string{"*"},
		RateLimit:   &limit,
		Active:      true,
	}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, nil)

	require.NoError(t, s.CreateAPIKey(ctx, key))
	db.AssertExpectations(t)
}

func TestStore_CustomRateLimit(t *testing.T) {
	db := &mockDB{}
	s := New(db)
	ctx := context.Background()

	limit := 50
	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(**int)) = &limit
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	got, err := s.CustomRateLimit(ctx, "abc123def456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 50, *got)
	db.AssertExpectations(t)
}

func TestStore_TouchAPIKeyUsage_Error(t *testing.T) {
	db := &mockDB{}
	s := New(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.CommandTag{}, errors.New("db error"))

	err := s.TouchAPIKeyUsage(ctx, "abc123def456", "203.0.113.7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "touch api key")
	db.AssertExpectations(t)
}

func TestStore_ListAPIKeys(t *testing.T) {
	db := &mockDB{}
	s := New(db)
	ctx := context.Background()

	rows := newMockRows(scanAPIKey("key-1", true, nil))
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	keys, hasMore, err := s.ListAPIKeys(ctx, 50, "")
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, keys, 1)
	assert.Equal(t, "key-1", keys[0].KeyID)
	db.AssertExpectations(t)
}

func TestStore_DeactivateAPIKey_NotFound(t *testing.T) {
	db := &mockDB{}
	s := New(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := s.DeactivateAPIKey(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	db.AssertExpectations(t)
}
