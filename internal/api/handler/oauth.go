package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/bookdesk/platform/internal/api/request"
	"github.com/bookdesk/platform/internal/api/response"
	"github.com/bookdesk/platform/internal/core"
)

// OAuth handles the authorization and token endpoints.
type OAuth struct {
	svc      *core.OAuthService
	loginURL string
}

// NewOAuth creates a new OAuth handler.
func NewOAuth(svc *core.OAuthService, loginURL string) *OAuth {
	return &OAuth{svc: svc, loginURL: loginURL}
}

// Authorize issues an authorization code and redirects back to the client.
// Client and redirect URI failures are answered directly; anything after
// that point is reported through the redirect, per the OAuth error model.
func (h *OAuth) Authorize(w http.ResponseWriter, r *http.Request) {
	params := request.ParseAuthorize(r)

	if params.ResponseType != "code" {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "response_type must be code")
		return
	}
	if params.ClientID == "" {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "client_id is required")
		return
	}

	id := core.IdentityFromContext(r.Context())
	var userID string
	if id.Kind == core.IdentitySession {
		userID = id.UserID
	}

	code, redirect, err := h.svc.Authorize(r.Context(), core.AuthorizeRequest{
		ClientID:        params.ClientID,
		RedirectURI:     params.RedirectURI,
		Scope:           params.Scope,
		CodeChallenge:   params.CodeChallenge,
		ChallengeMethod: params.ChallengeMethod,
		UserID:          userID,
	})
	if err != nil {
		if errors.Is(err, core.ErrAuthenticationRequired) {
			h.redirectToLogin(w, r)
			return
		}
		if oe, ok := core.AsOAuthError(err); ok {
			// The redirect URI is only trusted once it validated, so client
			// and redirect errors never bounce the browser anywhere.
			response.WriteOAuthError(w, http.StatusBadRequest, oe.Code, oe.Description)
			return
		}
		response.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	target, err := url.Parse(redirect)
	if err != nil {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRedirectURI, "redirect_uri is not a valid URL")
		return
	}
	q := target.Query()
	q.Set("code", code)
	if params.State != "" {
		q.Set("state", params.State)
	}
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (h *OAuth) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	login, err := url.Parse(h.loginURL)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	q := login.Query()
	q.Set("next", r.URL.String())
	login.RawQuery = q.Encode()
	http.Redirect(w, r, login.String(), http.StatusFound)
}

// Token exchanges a grant for tokens.
func (h *OAuth) Token(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseToken(r)
	if err != nil {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "malformed form body")
		return
	}
	if params.GrantType == "" {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "grant_type is required")
		return
	}

	resp, err := h.svc.Exchange(r.Context(), core.TokenRequest{
		GrantType:    core.ParseGrantType(params.GrantType),
		ClientID:     params.ClientID,
		ClientSecret: params.ClientSecret,
		Code:         params.Code,
		RedirectURI:  params.RedirectURI,
		CodeVerifier: params.CodeVerifier,
		RefreshToken: params.RefreshToken,
		Scope:        params.Scope,
	})
	if err != nil {
		if oe, ok := core.AsOAuthError(err); ok {
			status := http.StatusBadRequest
			if oe.Code == core.ErrCodeInvalidClient {
				w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
				status = http.StatusUnauthorized
			}
			response.WriteOAuthError(w, status, oe.Code, oe.Description)
			return
		}
		response.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	response.WriteJSON(w, http.StatusOK, resp)
}

// Revoke invalidates a token. Always 200 for well-formed requests, even
// when the token was never issued.
func (h *OAuth) Revoke(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseRevocation(r)
	if err != nil {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "malformed form body")
		return
	}
	if params.Token == "" {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "token is required")
		return
	}

	if err := h.svc.Revoke(r.Context(), params.Token, params.TokenTypeHint); err != nil {
		response.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

// Introspect reports token state. Unknown tokens are {"active": false},
// never an error.
func (h *OAuth) Introspect(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseRevocation(r)
	if err != nil {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "malformed form body")
		return
	}
	if params.Token == "" {
		response.WriteOAuthError(w, http.StatusBadRequest, core.ErrCodeInvalidRequest, "token is required")
		return
	}

	result, err := h.svc.Introspect(r.Context(), params.Token, params.TokenTypeHint)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}
