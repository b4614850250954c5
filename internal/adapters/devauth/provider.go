package devauth

// Package devauth provides a simple, config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
	"github.com/rolegate/rolegate/internal/ports"
)

// Config controls the dev auth provider behavior.
// Roles feeds the plain "roles" claim so the standard extractor chain applies.
type Config struct {
	Subject string
	Name    string
	Email   string
	Roles   []string
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce.
// Exchange ignores the code and returns the configured profile.
type Provider struct {
	profile domainauth.Profile
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Subject == "" {
		return nil, errors.New("dev auth: Subject is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}

	roles := make([]any, 0, len(cfg.Roles))
	for _, r := range cfg.Roles {
		roles = append(roles, r)
	}

	profile := domainauth.Profile{
		"sub":   cfg.Subject,
		"email": cfg.Email,
	}
	if cfg.Name != "" {
		profile["name"] = cfg.Name
	}
	if len(roles) > 0 {
		profile["roles"] = roles
	}

	return &Provider{profile: profile}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// The standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler)
// and returns a copy of the configured profile.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Profile, error) {
	out := make(domainauth.Profile, len(p.profile))
	for k, v := range p.profile {
		out[k] = v
	}
	return out, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
