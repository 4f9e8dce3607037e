package request

import "time"

// CreateAPIKey holds the request body for creating an API key.
type CreateAPIKey struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"max=1024"`
	Permissions []string   `json:"permissions" validate:"omitempty,dive,permission"`
	RateLimit   *int       `json:"rate_limit" validate:"omitempty,min=1"`
	ExpiresAt   *time.Time `json:"expires_at"`
}
