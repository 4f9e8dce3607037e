package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret_RoundTrip(t *testing.T) {
	hash, err := HashSecret("bk_abc123def456-supersecret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.NotContains(t, hash, "supersecret")

	assert.True(t, VerifySecret("bk_abc123def456-supersecret", hash))
	assert.False(t, VerifySecret("bk_abc123def456-wrong", hash))
}

func TestHashSecret_UniqueSalts(t *testing.T) {
	h1, err := HashSecret("same-secret")
	require.NoError(t, err)
	h2, err := HashSecret("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifySecret("same-secret", h1))
	assert.True(t, VerifySecret("same-secret", h2))
}

func TestVerifySecret_MalformedHash(t *testing.T) {
	assert.False(t, VerifySecret("secret", ""))
	assert.False(t, VerifySecret("secret", "$bcrypt$nope"))
	assert.False(t, VerifySecret("secret", "$argon2id$v=19$m=bad$salt$hash"))
}

func TestTokenFingerprint(t *testing.T) {
	fp := TokenFingerprint("some-bearer-token")

	assert.Len(t, fp, 16)
	assert.Equal(t, fp, TokenFingerprint("some-bearer-token"))
	assert.NotEqual(t, fp, TokenFingerprint("other-token"))
	assert.NotContains(t, fp, "some-bearer-token")
}
