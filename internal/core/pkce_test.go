package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookdesk/platform/internal/model"
)

func TestS256Challenge(t *testing.T) {
	// Known vector from RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", S256Challenge(verifier))
}

func TestVerifyPKCE_S256(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge := S256Challenge(verifier)

	assert.True(t, verifyPKCE(challenge, model.ChallengeMethodS256, verifier))
	assert.False(t, verifyPKCE(challenge, model.ChallengeMethodS256, "wrong-verifier"))
	assert.False(t, verifyPKCE(challenge, model.ChallengeMethodS256, ""))
}

func TestVerifyPKCE_Plain(t *testing.T) {
	assert.True(t, verifyPKCE("some-verifier", model.ChallengeMethodPlain, "some-verifier"))
	assert.False(t, verifyPKCE("some-verifier", model.ChallengeMethodPlain, "other-verifier"))

	// An empty recorded method defaults to plain.
	assert.True(t, verifyPKCE("some-verifier", "", "some-verifier"))
}

func TestVerifyPKCE_NoChallengeRecorded(t *testing.T) {
	// Codes issued without a challenge accept any exchange.
	assert.True(t, verifyPKCE("", model.ChallengeMethodS256, "anything"))
	assert.True(t, verifyPKCE("", "", ""))
}

func TestVerifyPKCE_UnknownMethod(t *testing.T) {
	assert.False(t, verifyPKCE("challenge", "S512", "challenge"))
}
