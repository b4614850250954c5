package oidc

// Package oidc provides the OIDC/OAuth2 authentication adapter for rolegate.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
	"github.com/rolegate/rolegate/internal/ports"
)

// Provider implements the AuthProvider interface using OIDC/OAuth2.
// The handshake itself is delegated entirely to go-oidc and oauth2; this
// adapter's job is producing the raw profile claim bag for role derivation.
type Provider struct {
	config     *oauth2.Config
	logoutURL  string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string
	LogoutURL    string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		logoutURL:  config.LogoutURL,
		httpClient: httpClient,
	}

	// Accept either the bare issuer or a full discovery URL.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	scope := config.Scope
	if scope == "" {
		scope = "openid profile email"
	}
	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// Begin starts the login flow with cryptographically secure state and nonce.
// A "signup" screen hint routes Auth0-style providers to their registration
// screen; it is cosmetic routing, not a separate account-creation flow.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	}
	if in.ScreenHint != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("screen_hint", in.ScreenHint),
			oauth2.SetAuthURLParam("prompt", "login"),
		)
	}

	return p.config.AuthCodeURL(state, opts...), state, nonce, nil
}

// Exchange completes the login flow and returns the verified profile claim bag.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Profile, error) {
	if in.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if in.State == "" {
		return nil, errors.New("state is required")
	}
	if in.Nonce == "" {
		return nil, errors.New("nonce is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("exchange code for token: %w", err)
	}

	profile, err := p.profileFromIDToken(ctx, token, in.Nonce)
	if err != nil {
		return nil, err
	}

	// Fill gaps from the userinfo endpoint; Auth0 puts app_metadata and
	// user_metadata there unless a rule copies them into the ID token.
	if err := p.fillFromUserInfo(ctx, token.AccessToken, profile); err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}

	return profile, nil
}

// LogoutURL returns the provider's logout URL with a post-logout return
// destination, or "" when the provider has none configured.
func (p *Provider) LogoutURL(returnTo string) string {
	if p.logoutURL == "" {
		return ""
	}
	u, err := url.Parse(p.logoutURL)
	if err != nil {
		return p.logoutURL
	}
	q := u.Query()
	q.Set("client_id", p.config.ClientID)
	if returnTo != "" {
		q.Set("returnTo", returnTo)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// profileFromIDToken verifies the ID token and decodes every claim into the
// profile bag. All claims are kept: role derivation probes nested and
// provider-specific claims the adapter cannot anticipate.
func (p *Provider) profileFromIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (domainauth.Profile, error) {
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return nil, err
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims map[string]any
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return nil, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}

	if nonce, _ := claims["nonce"].(string); expectedNonce != "" && nonce != expectedNonce {
		return nil, errors.New("invalid nonce")
	}

	return domainauth.Profile(claims), nil
}

// fillFromUserInfo merges userinfo claims into the profile without
// overwriting claims the ID token already carried.
func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, profile domainauth.Profile) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}

	var claims map[string]any
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}

	for k, v := range claims {
		if _, exists := profile[k]; !exists {
			profile[k] = v
		}
	}
	return nil
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
