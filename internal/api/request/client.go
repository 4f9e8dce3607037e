package request

// RegisterClient holds the request body for registering an OAuth client.
type RegisterClient struct {
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Description  string   `json:"description" validate:"max=1024"`
	RedirectURIs []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
	GrantTypes   []string `json:"grant_types" validate:"omitempty,dive,oneof=authorization_code refresh_token client_credentials"`
	Scope        string   `json:"scope" validate:"max=1024"`
}

// SetClientActive holds the request body for enabling or disabling a client.
type SetClientActive struct {
	Active *bool `json:"active" validate:"required"`
}
