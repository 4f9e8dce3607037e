package model

import "time"

// APIKey is a long-lived static credential independent of OAuth. The full
// raw key is returned to the caller exactly once at creation time; only the
// argon2id hash is persisted.
type APIKey struct {
	// KeyID is the public fixed-length prefix of the raw key, stored in
	// plaintext so presented keys can be looked up.
	KeyID       string     `json:"key_id"`
	SecretHash  string     `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	UserID      string     `json:"user_id"`
	Permissions []string   `json:"permissions"`
	RateLimit   *int       `json:"rate_limit,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	LastOrigin  *string    `json:"last_origin,omitempty"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HasPermission reports whether the key grants the permission, either by
// exact match or via the "*" wildcard.
func (k *APIKey) HasPermission(permission string) bool {
	for _, p := range k.Permissions {
		if p == "*" || p == permission {
			return true
		}
	}
	return false
}

// Usable reports whether the key may authenticate requests at the given
// time: it must be active and not past its optional expiry.
func (k *APIKey) Usable(now time.Time) bool {
	if !k.Active {
		return false
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return false
	}
	return true
}
