package core

import "errors"

// OAuth error codes returned to clients. Descriptions are deliberately
// generic: a failed secret check and an unknown client produce the same
// invalid_client, so callers cannot enumerate registrations.
const (
	ErrCodeInvalidClient        = "invalid_client"
	ErrCodeInvalidGrant         = "invalid_grant"
	ErrCodeInvalidRequest       = "invalid_request"
	ErrCodeInvalidRedirectURI   = "invalid_redirect_uri"
	ErrCodeUnsupportedGrantType = "unsupported_grant_type"
)

// OAuthError is an expected validation failure carrying an OAuth-standard
// error code. Infrastructure failures are never wrapped in an OAuthError.
type OAuthError struct {
	Code        string
	Description string
}

func (e *OAuthError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

func invalidClient() *OAuthError {
	return &OAuthError{Code: ErrCodeInvalidClient, Description: "client authentication failed"}
}

func invalidGrant() *OAuthError {
	return &OAuthError{Code: ErrCodeInvalidGrant, Description: "the provided grant is invalid, expired, or revoked"}
}

func invalidRequest(description string) *OAuthError {
	return &OAuthError{Code: ErrCodeInvalidRequest, Description: description}
}

func invalidRedirectURI() *OAuthError {
	return &OAuthError{Code: ErrCodeInvalidRedirectURI, Description: "redirect_uri is not registered for this client"}
}

func unsupportedGrantType() *OAuthError {
	return &OAuthError{Code: ErrCodeUnsupportedGrantType, Description: "grant_type is not supported"}
}

// AsOAuthError unwraps err into an *OAuthError if it is one.
func AsOAuthError(err error) (*OAuthError, bool) {
	var oe *OAuthError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// ErrAuthenticationRequired signals that the authorize endpoint needs an
// authenticated user session before a code can be issued. The handler
// responds with a redirect to the login flow, not an OAuth error.
var ErrAuthenticationRequired = errors.New("authentication required")
