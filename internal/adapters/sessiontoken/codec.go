package sessiontoken

// Package sessiontoken implements the signed session token codec.
// The token is a trusted-storage round trip: the role embedded at issuance
// is the session's source of truth until the token expires or is revoked.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

// DefaultMaxAge is the default session lifetime (30 days).
const DefaultMaxAge = 30 * 24 * time.Hour

// ErrTokenInvalid is returned when a token fails signature verification or
// has expired. Callers treat it identically to "no session".
var ErrTokenInvalid = errors.New("session token invalid")

// Config holds configuration for the codec.
type Config struct {
	// Secret signs tokens (HS256). Required.
	Secret string

	// MaxAge bounds token validity; defaults to DefaultMaxAge when zero.
	MaxAge time.Duration

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Codec issues and decodes HS256-signed session tokens.
type Codec struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// sessionClaims is the token payload. Identity claims mirror domainauth.User;
// the role travels as a plain string claim next to the registered set.
type sessionClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"picture,omitempty"`
	Role  string `json:"role,omitempty"`
}

// NewCodec constructs a codec from Config.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session signing secret is required")
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret: []byte(cfg.Secret),
		maxAge: maxAge,
		now:    now,
	}, nil
}

// Issue embeds the user into a signed token. The role is copied verbatim
// from the user constructed at sign-in; no re-derivation happens here.
func (c *Codec) Issue(user domainauth.User) (string, error) {
	now := c.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
			ID:        uuid.NewString(),
		},
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Role:  string(user.EffectiveRole()),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature and expiry and reconstructs the session.
// A missing role claim defaults to "user" so tokens issued before the role
// claim existed still decode.
func (c *Codec) Decode(token string) (domainauth.Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var claims sessionClaims
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	role := domainauth.Role(claims.Role)
	if role == "" {
		role = domainauth.RoleUser
	}

	sess := domainauth.Session{
		ID: claims.ID,
		User: domainauth.User{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Email,
			Image: claims.Image,
			Role:  role,
		},
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
