package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
// ScreenHint is a provider-specific routing hint ("signup" sends Auth0-style
// providers to their registration screen); providers that do not understand
// it ignore it.
type BeginInput struct {
	RedirectURL string
	ScreenHint  string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns
	// the provider's raw profile claim bag. The profile is consumed immediately
	// by role derivation and then discarded.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Profile, error)
}

// RoleExtractor derives a canonical application role from a provider profile.
// Implementations must be total: malformed or missing claims fall back to
// RoleUser, never an error.
type RoleExtractor interface {
	Derive(profile domainauth.Profile) domainauth.Role
}

// TokenCodec issues and decodes signed, expiring session tokens.
// The token is the session's source of truth: Decode reconstructs the user
// verbatim from the payload and never re-derives the role from a live profile.
type TokenCodec interface {
	// Issue embeds the user (including the role derived at sign-in) into a
	// signed token valid for the codec's configured max age.
	Issue(user domainauth.User) (string, error)

	// Decode verifies signature and expiry and reconstructs the session.
	// Invalid signature or expiry returns ErrTokenInvalid from the adapter;
	// callers treat that identically to "no session".
	Decode(token string) (domainauth.Session, error)
}

// RevocationStore records sessions invalidated before their natural expiry.
// Entries only need to live until the token would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
