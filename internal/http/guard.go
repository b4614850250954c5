package httpx

import (
	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

// RoleChecker is the slice of the authorization service guards need.
type RoleChecker interface {
	HasRole(role string, user *domainauth.User) bool
}

// GuardConfig is the static configuration of one protected view.
type GuardConfig struct {
	// RequiredRole gates the view when non-empty.
	RequiredRole string

	// HasFallback indicates a fallback view is configured for the
	// unauthenticated state instead of a redirect.
	HasFallback bool

	// SignInPath is the redirect target for unauthenticated visitors.
	// Defaults to /auth/login when empty.
	SignInPath string
}

// GuardInput is the per-request authentication state a guard evaluates.
// Loading means the session is still being resolved and no decision can be
// made yet.
type GuardInput struct {
	Loading bool
	User    *domainauth.User
}

// DecisionKind enumerates guard outcomes.
type DecisionKind int

const (
	// DecisionPlaceholder renders a neutral placeholder; no decision made.
	DecisionPlaceholder DecisionKind = iota
	// DecisionFallback renders the configured fallback view.
	DecisionFallback
	// DecisionRedirect is a redirect intent; the hosting layer executes the
	// navigation, the guard itself never touches browser state.
	DecisionRedirect
	// DecisionDeny renders an access-denied view naming both roles.
	DecisionDeny
	// DecisionAllow renders the protected content.
	DecisionAllow
)

// Decision is the declarative result of evaluating a guard.
type Decision struct {
	Kind         DecisionKind
	RedirectTo   string
	RequiredRole string
	ActualRole   string
}

// EvaluateGuard runs the three-state guard machine:
// Loading -> {Authenticated, Unauthenticated}. It is a pure function of its
// inputs so it can be tested without any HTTP or browser environment. The
// server middleware enforces the same policy before content is produced;
// this guard is defense-in-depth for view rendering.
func EvaluateGuard(checker RoleChecker, cfg GuardConfig, in GuardInput) Decision {
	if in.Loading {
		return Decision{Kind: DecisionPlaceholder}
	}

	if in.User == nil {
		if cfg.HasFallback {
			return Decision{Kind: DecisionFallback}
		}
		signIn := cfg.SignInPath
		if signIn == "" {
			signIn = "/auth/login"
		}
		return Decision{Kind: DecisionRedirect, RedirectTo: signIn}
	}

	if cfg.RequiredRole != "" && !checker.HasRole(cfg.RequiredRole, in.User) {
		return Decision{
			Kind:         DecisionDeny,
			RequiredRole: cfg.RequiredRole,
			ActualRole:   string(in.User.EffectiveRole()),
		}
	}

	return Decision{Kind: DecisionAllow}
}
