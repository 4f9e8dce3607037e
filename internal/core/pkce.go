package core

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/bookdesk/platform/internal/model"
)

// S256Challenge computes the PKCE S256 transformation of a verifier:
// unpadded base64url(sha256(verifier)).
func S256Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// verifyPKCE checks a code_verifier against the challenge recorded at
// authorize time. Comparisons are constant-time. A recorded challenge with
// a missing or mismatched verifier fails; a code issued without a
// challenge accepts any exchange.
func verifyPKCE(challenge, method, verifier string) bool {
	if challenge == "" {
		return true
	}
	if verifier == "" {
		return false
	}

	switch method {
	case model.ChallengeMethodS256:
		computed := S256Challenge(verifier)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
	case model.ChallengeMethodPlain, "":
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	default:
		return false
	}
}
