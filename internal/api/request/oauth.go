package request

import (
	"net/http"
)

// AuthorizeParams holds the query parameters of an authorize call.
type AuthorizeParams struct {
	ResponseType    string
	ClientID        string
	RedirectURI     string
	Scope           string
	State           string
	CodeChallenge   string
	ChallengeMethod string
}

// ParseAuthorize extracts authorize parameters from the query string.
func ParseAuthorize(r *http.Request) AuthorizeParams {
	q := r.URL.Query()
	return AuthorizeParams{
		ResponseType:    q.Get("response_type"),
		ClientID:        q.Get("client_id"),
		RedirectURI:     q.Get("redirect_uri"),
		Scope:           q.Get("scope"),
		State:           q.Get("state"),
		CodeChallenge:   q.Get("code_challenge"),
		ChallengeMethod: q.Get("code_challenge_method"),
	}
}

// TokenParams holds the form parameters of a token call. Client credentials
// may arrive either as form fields or as HTTP Basic auth; Basic wins when
// both are present.
type TokenParams struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
	CodeVerifier string
	RefreshToken string
	Scope        string
}

// ParseToken extracts token parameters from an application/x-www-form-urlencoded
// body plus optional Basic auth.
func ParseToken(r *http.Request) (TokenParams, error) {
	if err := r.ParseForm(); err != nil {
		return TokenParams{}, err
	}

	p := TokenParams{
		GrantType:    r.PostForm.Get("grant_type"),
		ClientID:     r.PostForm.Get("client_id"),
		ClientSecret: r.PostForm.Get("client_secret"),
		Code:         r.PostForm.Get("code"),
		RedirectURI:  r.PostForm.Get("redirect_uri"),
		CodeVerifier: r.PostForm.Get("code_verifier"),
		RefreshToken: r.PostForm.Get("refresh_token"),
		Scope:        r.PostForm.Get("scope"),
	}

	if id, secret, ok := r.BasicAuth(); ok {
		p.ClientID = id
		p.ClientSecret = secret
	}

	return p, nil
}

// RevocationParams holds the form parameters of a revoke or introspect call.
type RevocationParams struct {
	Token         string
	TokenTypeHint string
}

// ParseRevocation extracts the token and optional hint from the form body.
func ParseRevocation(r *http.Request) (RevocationParams, error) {
	if err := r.ParseForm(); err != nil {
		return RevocationParams{}, err
	}
	return RevocationParams{
		Token:         r.PostForm.Get("token"),
		TokenTypeHint: r.PostForm.Get("token_type_hint"),
	}, nil
}
