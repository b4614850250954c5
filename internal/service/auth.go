package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
	"github.com/rolegate/rolegate/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
// Revocations is optional: without it the service runs stateless and
// sign-out relies on cookie clearing alone.
// Logger is an observability hook for the session pipeline; it never gates
// control flow and defaults to discarding when nil.
type AuthServiceOptions struct {
	Provider    ports.AuthProvider
	Codec       ports.TokenCodec
	Roles       ports.RoleExtractor
	Revocations ports.RevocationStore
	Logger      *slog.Logger
}

// AuthService orchestrates authentication flows: it coordinates the identity
// provider, role derivation, and the session token codec, and converts
// underlying failures into the domain error taxonomy.
type AuthService struct {
	provider    ports.AuthProvider
	codec       ports.TokenCodec
	roles       ports.RoleExtractor
	revocations ports.RevocationStore
	logger      *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		provider:    opts.Provider,
		codec:       opts.Codec,
		roles:       opts.Roles,
		revocations: opts.Revocations,
		logger:      logger,
	}
}

// BeginResult contains the result of beginning a sign-in or sign-up flow.
type BeginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginSignIn initiates an authentication flow and returns the provider auth
// URL with state and nonce.
func (s *AuthService) BeginSignIn(ctx context.Context, redirectURL string) (*BeginResult, error) {
	return s.begin(ctx, ports.BeginInput{RedirectURL: redirectURL}, ErrAuthenticationFailed)
}

// BeginSignUp initiates a sign-up flow. It is a sign-in request carrying a
// provider hint that routes to the registration screen, not a separate
// account-creation flow.
func (s *AuthService) BeginSignUp(ctx context.Context, redirectURL string) (*BeginResult, error) {
	return s.begin(ctx, ports.BeginInput{RedirectURL: redirectURL, ScreenHint: "signup"}, ErrSignUpFailed)
}

func (s *AuthService) begin(ctx context.Context, in ports.BeginInput, domainErr error) (*BeginResult, error) {
	if in.RedirectURL == "" {
		return nil, fmt.Errorf("%w: redirect URL is required", domainErr)
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, in)
	if err != nil {
		s.logger.DebugContext(ctx, "begin auth flow failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domainErr, err)
	}

	return &BeginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteSignInInput groups parameters for completing a sign-in flow.
type CompleteSignInInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteSignInResult contains the issued token and its decoded view.
type CompleteSignInResult struct {
	Token   string
	Session domainauth.Session
}

// CompleteSignIn exchanges the authorization code for a verified profile,
// derives the role, and issues the signed session token. The profile is
// discarded once the token is issued; the token is the session's source of
// truth from here on.
func (s *AuthService) CompleteSignIn(ctx context.Context, input CompleteSignInInput) (*CompleteSignInResult, error) {
	if input.Code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrAuthenticationFailed)
	}
	if input.State == "" {
		return nil, fmt.Errorf("%w: state parameter is required", ErrAuthenticationFailed)
	}
	if input.Nonce == "" {
		return nil, fmt.Errorf("%w: nonce parameter is required", ErrAuthenticationFailed)
	}

	profile, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "code exchange failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	user := s.userFromProfile(profile)

	token, err := s.codec.Issue(user)
	if err != nil {
		s.logger.DebugContext(ctx, "issue session token failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	sess, err := s.codec.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	s.logger.InfoContext(ctx, "session issued",
		"user_id", user.ID,
		"role", user.Role,
		"expires_at", sess.ExpiresAt,
	)

	return &CompleteSignInResult{Token: token, Session: sess}, nil
}

// Session decodes and validates a session token. Any failure, including
// revocation, surfaces as ErrSessionInvalid so all guards interpret it
// identically to "unauthenticated".
func (s *AuthService) Session(ctx context.Context, token string) (*domainauth.Session, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	sess, err := s.codec.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	if s.revocations != nil {
		revoked, revErr := s.revocations.IsRevoked(ctx, sess.ID)
		if revErr != nil {
			s.logger.WarnContext(ctx, "revocation check failed", "error", revErr)
			return nil, fmt.Errorf("%w: revocation check failed", ErrSessionInvalid)
		}
		if revoked {
			return nil, fmt.Errorf("%w: session revoked", ErrSessionInvalid)
		}
	}

	return &sess, nil
}

// SignOut invalidates a session token. An unparseable or expired token is
// not an error: there is nothing left to invalidate.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sess, err := s.codec.Decode(token)
	if err != nil {
		return nil
	}

	if s.revocations == nil {
		s.logger.DebugContext(ctx, "sign out without revocation store", "session_id", sess.ID)
		return nil
	}

	if err := s.revocations.Revoke(ctx, sess.ID, sess.ExpiresAt); err != nil {
		s.logger.DebugContext(ctx, "revoke session failed", "error", err)
		return fmt.Errorf("%w: %v", ErrSignOutFailed, err)
	}

	s.logger.InfoContext(ctx, "session revoked", "session_id", sess.ID, "user_id", sess.User.ID)
	return nil
}

// userFromProfile builds the immutable session user from standard identity
// claims plus the derived role.
func (s *AuthService) userFromProfile(profile domainauth.Profile) domainauth.User {
	name, _ := profile["name"].(string)
	image, _ := profile["picture"].(string)

	return domainauth.User{
		ID:    profile.Subject(),
		Name:  name,
		Email: profile.Email(),
		Image: image,
		Role:  s.roles.Derive(profile),
	}
}

// IsSessionInvalid reports whether an error from Session means "no session"
// as opposed to an infrastructure failure. Currently every Session error is
// a session-invalid signal; the helper keeps call sites honest.
func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionInvalid)
}
