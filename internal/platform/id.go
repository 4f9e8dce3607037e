package platform

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

const keyIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func NewID() string {
	return uuid.New().String()
}

// NewToken returns n random bytes encoded as unpadded base64url. Used for
// authorization codes, access/refresh tokens, and API key secrets.
func NewToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// NewKeyID returns a random lowercase alphanumeric string of the given
// length, used as the public API key prefix.
func NewKeyID(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = keyIDAlphabet[b[i]%byte(len(keyIDAlphabet))]
	}
	return string(b)
}
