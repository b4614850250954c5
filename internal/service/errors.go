package service

import "errors"

// Domain error taxonomy for the auth facade. Callers match with errors.Is;
// the provider's raw failure is folded into the message, never exposed as a
// wrapped type the UI layer could leak.
var (
	// ErrAuthenticationFailed covers any failure of the sign-in flow against
	// the external identity provider.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrSignUpFailed covers failures of the sign-up flow.
	ErrSignUpFailed = errors.New("sign up failed")

	// ErrSignOutFailed covers failures invalidating a session at sign-out.
	ErrSignOutFailed = errors.New("sign out failed")

	// ErrSessionInvalid means a session token failed signature or expiry
	// checks, or was revoked. Guards treat it identically to "no session";
	// it is never a crash.
	ErrSessionInvalid = errors.New("session invalid")
)
