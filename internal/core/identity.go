package core

import (
	"context"
	"net/http"
)

// IdentityKind discriminates how a request was authenticated.
type IdentityKind string

const (
	IdentitySession   IdentityKind = "session"
	IdentityAPIKey    IdentityKind = "api_key"
	IdentityBearer    IdentityKind = "bearer"
	IdentityAnonymous IdentityKind = "anonymous"
)

// Identity is the resolved caller of one request. It flows through the
// request context as an immutable value; concurrent requests never share
// identity state.
type Identity struct {
	Kind        IdentityKind
	UserID      string
	ClientID    string
	APIKeyID    string
	Scope       string
	Permissions []string

	// RateLimit is the API key's custom limit, nil for the default.
	RateLimit *int

	// RateIdentifier is the precomputed rate-limit bucket key for this
	// caller, chosen by precedence: API key > bearer token > user > origin.
	RateIdentifier string
}

// Anonymous returns the identity for an unauthenticated request,
// rate-limited by network origin.
func Anonymous(origin string) *Identity {
	return &Identity{Kind: IdentityAnonymous, RateIdentifier: "ip:" + origin}
}

// HasPermission reports whether the identity may perform the operation.
// API keys carry explicit permission sets (with the "*" wildcard); session
// and bearer identities are trusted for any permission here because their
// scope enforcement happens downstream.
func (i *Identity) HasPermission(permission string) bool {
	if i == nil {
		return false
	}
	switch i.Kind {
	case IdentityAPIKey:
		for _, p := range i.Permissions {
			if p == "*" || p == permission {
				return true
			}
		}
		return false
	case IdentitySession, IdentityBearer:
		return true
	default:
		return false
	}
}

type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity returns a context carrying the identity.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the request identity, or an anonymous
// identity if none was attached.
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityContextKey).(*Identity); ok && id != nil {
		return id
	}
	return &Identity{Kind: IdentityAnonymous}
}

// SessionResolver is the external identity collaborator: it reports the
// user authenticated by a browser session, if any. Checked first in the
// authentication pipeline, ahead of API keys and bearer tokens.
type SessionResolver interface {
	CurrentUser(r *http.Request) (userID string, ok bool)
}

// NoSession is a SessionResolver that never resolves a user. Used when the
// platform runs without a session collaborator.
type NoSession struct{}

func (NoSession) CurrentUser(*http.Request) (string, bool) { return "", false }
