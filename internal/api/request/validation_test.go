package request

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireID_Valid(t *testing.T) {
	result, err := RequireID("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", result)
}

func TestRequireID_ShortID(t *testing.T) {
	result, err := RequireID("abc1234xyz")
	require.NoError(t, err)
	assert.Equal(t, "abc1234xyz", result)
}

func TestRequireID_Empty(t *testing.T) {
	_, err := RequireID("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required ID")
}

// testDecodePayload is a helper struct used only for testing Decode.
type testDecodePayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestDecode_ValidJSON(t *testing.T) {
	body := `{"name":"alice","email":"alice@example.com"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload.Name)
	assert.Equal(t, "alice@example.com", payload.Email)
}

func TestDecode_InvalidJSON(t *testing.T) {
	body := `{not valid json}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_ValidationFails(t *testing.T) {
	// Missing the required "name" field.
	body := `{"email":"alice@example.com"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestPermissionValidation_Valid(t *testing.T) {
	valid := []string{"*", "bookings:read", "bookings:write", "api-keys:manage", "admin", "clients:manage"}
	for _, p := range valid {
		t.Run(p, func(t *testing.T) {
			assert.True(t, permissionRegex.MatchString(p), "expected permission %q to be valid", p)
		})
	}
}

func TestPermissionValidation_Invalid(t *testing.T) {
	invalid := []string{
		"Bookings:Read",  // uppercase not allowed
		"bookings read",  // spaces not allowed
		"",               // empty
		"bookings:",      // dangling separator
		":read",          // missing resource
		"a:b:c",          // too many segments
		"1bookings:read", // must start with a letter
	}
	for _, p := range invalid {
		t.Run(p, func(t *testing.T) {
			assert.False(t, permissionRegex.MatchString(p), "expected permission %q to be invalid", p)
		})
	}
}
