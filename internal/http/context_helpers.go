package httpx

import (
	"context"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext retrieves the session from the request context,
// or nil when the request is unauthenticated.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok {
		return session
	}
	return nil
}

// GetUserFromContext returns the session user, or nil when unauthenticated.
// The nil user feeds straight into Authorizer decisions, which treat it as
// "no roles held".
func GetUserFromContext(ctx context.Context) *domainauth.User {
	if session := GetSessionFromContext(ctx); session != nil {
		u := session.User
		return &u
	}
	return nil
}
