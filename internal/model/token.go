package model

import "time"

// AccessToken is an opaque bearer credential. UserID is nil for tokens
// issued through the client_credentials grant.
type AccessToken struct {
	Token     string    `json:"-"`
	ClientID  string    `json:"client_id"`
	UserID    *string   `json:"user_id,omitempty"`
	Scope     string    `json:"scope"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshToken is a long-lived credential exchangeable for a new token pair.
// Refresh tokens are single-use: each exchange deletes the old token and
// issues a fresh one.
type RefreshToken struct {
	Token     string    `json:"-"`
	ClientID  string    `json:"client_id"`
	UserID    *string   `json:"user_id,omitempty"`
	Scope     string    `json:"scope"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
