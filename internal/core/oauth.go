package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookdesk/platform/internal/model"
	"github.com/bookdesk/platform/internal/platform"
	"github.com/bookdesk/platform/internal/store"
)

// GrantType is the closed set of token grant flows.
type GrantType int

const (
	GrantUnsupported GrantType = iota
	GrantAuthorizationCode
	GrantRefreshToken
	GrantClientCredentials
)

// ParseGrantType maps the wire grant_type to a GrantType. Anything
// unrecognized maps to GrantUnsupported.
func ParseGrantType(s string) GrantType {
	switch s {
	case "authorization_code":
		return GrantAuthorizationCode
	case "refresh_token":
		return GrantRefreshToken
	case "client_credentials":
		return GrantClientCredentials
	default:
		return GrantUnsupported
	}
}

func (g GrantType) String() string {
	switch g {
	case GrantAuthorizationCode:
		return "authorization_code"
	case GrantRefreshToken:
		return "refresh_token"
	case GrantClientCredentials:
		return "client_credentials"
	default:
		return "unsupported"
	}
}

// OAuthStore is the credential-store surface the OAuth service needs.
type OAuthStore interface {
	GetClient(ctx context.Context, clientID string) (*model.Client, error)
	SaveClient(ctx context.Context, c *model.Client) error
	SetClientActive(ctx context.Context, clientID string, active bool) error
	ListClients(ctx context.Context, limit int, cursor string) ([]model.Client, bool, error)

	CreateAuthCode(ctx context.Context, code *model.AuthorizationCode) error
	ConsumeAuthCode(ctx context.Context, code, clientID string) (*model.AuthorizationCode, error)

	CreateAccessToken(ctx context.Context, t *model.AccessToken) error
	FindAccessToken(ctx context.Context, token string) (*model.AccessToken, error)
	DeleteAccessToken(ctx context.Context, token string) (bool, error)

	CreateRefreshToken(ctx context.Context, t *model.RefreshToken) error
	FindAndDeleteRefreshToken(ctx context.Context, token, clientID string) (*model.RefreshToken, error)
	FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) (bool, error)
}

// OAuthLifetimes configures credential lifetimes.
type OAuthLifetimes struct {
	AuthCode     time.Duration
	AccessToken  time.Duration
	RefreshToken time.Duration
}

// OAuthService issues authorization codes and manages the token lifecycle
// across the three supported grants.
type OAuthService struct {
	store     OAuthStore
	lifetimes OAuthLifetimes
}

// NewOAuthService creates a new OAuthService.
func NewOAuthService(store OAuthStore, lifetimes OAuthLifetimes) *OAuthService {
	return &OAuthService{store: store, lifetimes: lifetimes}
}

// AuthorizeRequest carries the parameters of an authorize call.
type AuthorizeRequest struct {
	ClientID        string
	RedirectURI     string
	Scope           string
	CodeChallenge   string
	ChallengeMethod string
	// UserID is the already-authenticated user, empty when no session
	// exists.
	UserID string
}

// Authorize validates the client and issues a short-lived single-use
// authorization code bound to the user, redirect URI, and optional PKCE
// challenge. Returns the code and the redirect URI to send it to.
func (s *OAuthService) Authorize(ctx context.Context, req AuthorizeRequest) (string, string, error) {
	client, err := s.store.GetClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", "", invalidClient()
		}
		return "", "", err
	}
	if !client.Active {
		return "", "", invalidClient()
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		if len(client.RedirectURIs) != 1 {
			return "", "", invalidRedirectURI()
		}
		redirectURI = client.RedirectURIs[0]
	} else if !client.AllowsRedirectURI(redirectURI) {
		// Exact-match only; prefix matching opens redirects.
		return "", "", invalidRedirectURI()
	}

	if req.UserID == "" {
		return "", "", ErrAuthenticationRequired
	}

	if req.CodeChallenge != "" {
		switch req.ChallengeMethod {
		case model.ChallengeMethodPlain, model.ChallengeMethodS256, "":
		default:
			return "", "", invalidRequest("unsupported code_challenge_method")
		}
	}

	scope := req.Scope
	if scope == "" {
		scope = client.Scope
	}

	code := &model.AuthorizationCode{
		Code:            platform.NewToken(32),
		ClientID:        client.ID,
		UserID:          req.UserID,
		RedirectURI:     redirectURI,
		Scope:           scope,
		CodeChallenge:   req.CodeChallenge,
		ChallengeMethod: req.ChallengeMethod,
		ExpiresAt:       time.Now().Add(s.lifetimes.AuthCode),
	}

	if err := s.store.CreateAuthCode(ctx, code); err != nil {
		return "", "", err
	}

	return code.Code, redirectURI, nil
}

// TokenRequest carries the parameters of a token endpoint call.
type TokenRequest struct {
	GrantType    GrantType
	ClientID     string
	ClientSecret string

	// authorization_code grant
	Code         string
	RedirectURI  string
	CodeVerifier string

	// refresh_token grant
	RefreshToken string

	// client_credentials grant
	Scope string
}

// TokenResponse is a successful token endpoint result.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Exchange runs the grant-specific token flow. Client credentials are
// validated identically for every grant before any grant logic runs.
func (s *OAuthService) Exchange(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	client, err := s.validateClient(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	if req.GrantType != GrantUnsupported && !client.AllowsGrantType(req.GrantType.String()) {
		return nil, unsupportedGrantType()
	}

	switch req.GrantType {
	case GrantAuthorizationCode:
		return s.exchangeAuthorizationCode(ctx, client, req)
	case GrantRefreshToken:
		return s.exchangeRefreshToken(ctx, client, req)
	case GrantClientCredentials:
		return s.exchangeClientCredentials(ctx, client, req)
	default:
		return nil, unsupportedGrantType()
	}
}

// validateClient authenticates a client by id and secret. Unknown id,
// inactive client, and secret mismatch are indistinguishable to the
// caller.
func (s *OAuthService) validateClient(ctx context.Context, clientID, secret string) (*model.Client, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalidClient()
		}
		return nil, err
	}
	if !client.Active {
		return nil, invalidClient()
	}
	if bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(secret)) != nil {
		return nil, invalidClient()
	}
	return client, nil
}

func (s *OAuthService) exchangeAuthorizationCode(ctx context.Context, client *model.Client, req TokenRequest) (*TokenResponse, error) {
	// The consume is atomic: this deletes the code even if the PKCE check
	// below fails, so a code is burned on its first exchange attempt
	// regardless of outcome.
	code, err := s.store.ConsumeAuthCode(ctx, req.Code, client.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalidGrant()
		}
		return nil, err
	}

	if code.RedirectURI != "" && code.RedirectURI != req.RedirectURI {
		return nil, invalidGrant()
	}

	if !verifyPKCE(code.CodeChallenge, code.ChallengeMethod, req.CodeVerifier) {
		return nil, invalidGrant()
	}

	userID := code.UserID
	return s.issueTokenPair(ctx, client.ID, &userID, code.Scope, GrantAuthorizationCode)
}

func (s *OAuthService) exchangeRefreshToken(ctx context.Context, client *model.Client, req TokenRequest) (*TokenResponse, error) {
	// Rotation: the old token is deleted in the same statement that reads
	// it, so a replayed refresh token fails closed.
	old, err := s.store.FindAndDeleteRefreshToken(ctx, req.RefreshToken, client.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalidGrant()
		}
		return nil, err
	}

	return s.issueTokenPair(ctx, client.ID, old.UserID, old.Scope, GrantRefreshToken)
}

func (s *OAuthService) exchangeClientCredentials(ctx context.Context, client *model.Client, req TokenRequest) (*TokenResponse, error) {
	scope := req.Scope
	if scope == "" {
		scope = client.Scope
	}

	access := &model.AccessToken{
		Token:     platform.NewToken(32),
		ClientID:  client.ID,
		UserID:    nil,
		Scope:     scope,
		ExpiresAt: time.Now().Add(s.lifetimes.AccessToken),
	}
	if err := s.store.CreateAccessToken(ctx, access); err != nil {
		return nil, err
	}

	tokensIssued.WithLabelValues(GrantClientCredentials.String()).Inc()

	return &TokenResponse{
		AccessToken: access.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.lifetimes.AccessToken.Seconds()),
		Scope:       scope,
	}, nil
}

// issueTokenPair creates a fresh access + refresh token pair for grants
// with a user context.
func (s *OAuthService) issueTokenPair(ctx context.Context, clientID string, userID *string, scope string, grant GrantType) (*TokenResponse, error) {
	access := &model.AccessToken{
		Token:     platform.NewToken(32),
		ClientID:  clientID,
		UserID:    userID,
		Scope:     scope,
		ExpiresAt: time.Now().Add(s.lifetimes.AccessToken),
	}
	if err := s.store.CreateAccessToken(ctx, access); err != nil {
		return nil, err
	}

	refresh := &model.RefreshToken{
		Token:     platform.NewToken(32),
		ClientID:  clientID,
		UserID:    userID,
		Scope:     scope,
		ExpiresAt: time.Now().Add(s.lifetimes.RefreshToken),
	}
	if err := s.store.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	tokensIssued.WithLabelValues(grant.String()).Inc()

	return &TokenResponse{
		AccessToken:  access.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.lifetimes.AccessToken.Seconds()),
		RefreshToken: refresh.Token,
		Scope:        scope,
	}, nil
}

// ValidateAccessToken resolves a bearer token to its metadata. Expired or
// unknown tokens return store.ErrNotFound; no side effects.
func (s *OAuthService) ValidateAccessToken(ctx context.Context, token string) (*model.AccessToken, error) {
	return s.store.FindAccessToken(ctx, token)
}

// Token type hints accepted by revoke and introspect.
const (
	HintAccessToken  = "access_token"
	HintRefreshToken = "refresh_token"
)

// Revoke deletes a token from whichever store holds it, narrowed by the
// optional hint. Revoking an absent token succeeds: revocation is
// idempotent.
func (s *OAuthService) Revoke(ctx context.Context, token, hint string) error {
	if hint != HintRefreshToken {
		if deleted, err := s.store.DeleteAccessToken(ctx, token); err != nil {
			return err
		} else if deleted {
			return nil
		}
	}
	if hint != HintAccessToken {
		if _, err := s.store.DeleteRefreshToken(ctx, token); err != nil {
			return err
		}
	}
	return nil
}

// Introspection is the result of a token introspection call.
type Introspection struct {
	Active   bool    `json:"active"`
	ClientID string  `json:"client_id,omitempty"`
	UserID   *string `json:"user_id,omitempty"`
	Scope    string  `json:"scope,omitempty"`
	Exp      int64   `json:"exp,omitempty"`
}

// Introspect reports whether a token is active and for whom. Unknown or
// expired tokens produce {active:false}, never an error, and never reveal
// anything about clients.
func (s *OAuthService) Introspect(ctx context.Context, token, hint string) (*Introspection, error) {
	if hint != HintRefreshToken {
		access, err := s.store.FindAccessToken(ctx, token)
		if err == nil {
			return &Introspection{
				Active:   true,
				ClientID: access.ClientID,
				UserID:   access.UserID,
				Scope:    access.Scope,
				Exp:      access.ExpiresAt.Unix(),
			}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	if hint != HintAccessToken {
		refresh, err := s.store.FindRefreshToken(ctx, token)
		if err == nil {
			return &Introspection{
				Active:   true,
				ClientID: refresh.ClientID,
				UserID:   refresh.UserID,
				Scope:    refresh.Scope,
				Exp:      refresh.ExpiresAt.Unix(),
			}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	return &Introspection{Active: false}, nil
}

// RegisterClient creates a new OAuth client and returns it with the raw
// secret, shown exactly once.
func (s *OAuthService) RegisterClient(ctx context.Context, name, description string, redirectURIs, grantTypes []string, scope, userID string) (*model.Client, string, error) {
	secret := platform.NewToken(32)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	if grantTypes == nil {
		grantTypes = []string{"authorization_code", "refresh_token"}
	}

	client := &model.Client{
		ID:           platform.NewID(),
		SecretHash:   string(hash),
		Name:         name,
		Description:  description,
		RedirectURIs: redirectURIs,
		GrantTypes:   grantTypes,
		Scope:        scope,
		UserID:       userID,
		Active:       true,
	}

	if err := s.store.SaveClient(ctx, client); err != nil {
		return nil, "", err
	}

	return client, secret, nil
}

// RotateClientSecret replaces a client's secret and returns the new raw
// secret, shown exactly once.
func (s *OAuthService) RotateClientSecret(ctx context.Context, clientID string) (string, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return "", err
	}

	secret := platform.NewToken(32)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash client secret: %w", err)
	}

	client.SecretHash = string(hash)
	if err := s.store.SaveClient(ctx, client); err != nil {
		return "", err
	}

	return secret, nil
}

// SetClientActive toggles the client's soft-disable flag. Tokens already
// issued stay in storage but an inactive client fails validateClient, so
// no new grants succeed.
func (s *OAuthService) SetClientActive(ctx context.Context, clientID string, active bool) error {
	return s.store.SetClientActive(ctx, clientID, active)
}

// GetClient retrieves a client for the admin surface.
func (s *OAuthService) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	return s.store.GetClient(ctx, clientID)
}

// ListClients retrieves clients with cursor-based pagination.
func (s *OAuthService) ListClients(ctx context.Context, limit int, cursor string) ([]model.Client, bool, error) {
	return s.store.ListClients(ctx, limit, cursor)
}
