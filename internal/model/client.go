package model

import "time"

// Client represents a registered OAuth consumer. Clients are created by an
// administrative action and are soft-disabled rather than deleted while
// tokens still reference them.
type Client struct {
	ID           string    `json:"id"`
	SecretHash   string    `json:"-"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	RedirectURIs []string  `json:"redirect_uris"`
	GrantTypes   []string  `json:"grant_types"`
	Scope        string    `json:"scope"`
	UserID       string    `json:"user_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AllowsRedirectURI reports whether uri exactly matches one of the client's
// registered redirect URIs. Prefix matches are rejected deliberately.
func (c *Client) AllowsRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// AllowsGrantType reports whether the client is registered for the grant.
func (c *Client) AllowsGrantType(grant string) bool {
	for _, g := range c.GrantTypes {
		if g == grant {
			return true
		}
	}
	return false
}
