package model

import "time"

// PKCE challenge methods accepted on the authorize endpoint.
const (
	ChallengeMethodPlain = "plain"
	ChallengeMethodS256  = "S256"
)

// AuthorizationCode is a single-use grant artifact. A code is consumed
// exactly once: the exchange deletes it atomically, so a second exchange of
// the same code can never succeed.
type AuthorizationCode struct {
	Code            string    `json:"-"`
	ClientID        string    `json:"client_id"`
	UserID          string    `json:"user_id"`
	RedirectURI     string    `json:"redirect_uri"`
	Scope           string    `json:"scope"`
	CodeChallenge   string    `json:"-"`
	ChallengeMethod string    `json:"-"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Expired reports whether the code's lifetime has elapsed.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
