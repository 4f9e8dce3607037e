package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bookdesk/platform/internal/api/response"
	"github.com/bookdesk/platform/internal/core"
	"github.com/bookdesk/platform/internal/crypto"
	"github.com/bookdesk/platform/internal/model"
	"github.com/bookdesk/platform/internal/store"
)

// apiKeyAuthenticator resolves a presented raw API key, nil when the key
// does not authenticate.
type apiKeyAuthenticator interface {
	Authenticate(ctx context.Context, presented, origin string) (*model.APIKey, error)
}

// bearerValidator resolves an opaque access token to its metadata.
type bearerValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*model.AccessToken, error)
}

// Identity authenticates each request and attaches the resolved identity to
// the context. Sources are checked in a fixed precedence order: browser
// session, then API key, then bearer token. A request with no valid
// credentials proceeds as anonymous; per-route permission checks reject it
// later if the route needs more.
func Identity(sessions core.SessionResolver, keys apiKeyAuthenticator, tokens bearerValidator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := requestOrigin(r)

			id, err := resolveIdentity(r, origin, sessions, keys, tokens)
			if err != nil {
				logger.Error().Err(err).Msg("identity resolution failed")
				response.WriteError(w, http.StatusServiceUnavailable, "authentication unavailable")
				return
			}

			ctx := core.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(r *http.Request, origin string, sessions core.SessionResolver, keys apiKeyAuthenticator, tokens bearerValidator) (*core.Identity, error) {
	if userID, ok := sessions.CurrentUser(r); ok {
		return &core.Identity{
			Kind:           core.IdentitySession,
			UserID:         userID,
			RateIdentifier: "user:" + userID,
		}, nil
	}

	if presented := presentedAPIKey(r); presented != "" {
		key, err := keys.Authenticate(r.Context(), presented, origin)
		if err != nil {
			return nil, err
		}
		if key != nil {
			return &core.Identity{
				Kind:           core.IdentityAPIKey,
				UserID:         key.UserID,
				APIKeyID:       key.KeyID,
				Permissions:    key.Permissions,
				RateLimit:      key.RateLimit,
				RateIdentifier: "key:" + key.KeyID,
			}, nil
		}
		// A failed key falls through to the remaining sources.
	}

	if token := bearerToken(r); token != "" {
		access, err := tokens.ValidateAccessToken(r.Context(), token)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if access != nil {
			id := &core.Identity{
				Kind:           core.IdentityBearer,
				ClientID:       access.ClientID,
				Scope:          access.Scope,
				RateIdentifier: "token:" + crypto.TokenFingerprint(token),
			}
			if access.UserID != nil {
				id.UserID = *access.UserID
			}
			return id, nil
		}
	}

	return core.Anonymous(origin), nil
}

// presentedAPIKey extracts a raw API key from the request. The header wins
// over the query parameter, which wins over the ApiKey authorization scheme.
func presentedAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if key := r.URL.Query().Get("api_key"); key != "" {
		return key
	}
	if scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "ApiKey") {
		return strings.TrimSpace(value)
	}
	return ""
}

func bearerToken(r *http.Request) string {
	if scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(value)
	}
	return ""
}

// requestOrigin returns the caller's IP. RealIP runs ahead of this
// middleware, so RemoteAddr already reflects X-Forwarded-For when present.
func requestOrigin(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RequirePermission rejects requests whose identity lacks the permission.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := core.IdentityFromContext(r.Context())
			if id.Kind == core.IdentityAnonymous {
				response.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !id.HasPermission(permission) {
				response.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
