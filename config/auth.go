package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC identity provider configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	IssuerURL    string `env:"ISSUER_URL"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"        envDefault:"openid profile email"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// SessionConfig controls the signed session token.
type SessionConfig struct {
	// Secret signs session tokens. Required.
	Secret string `env:"SECRET"`

	// MaxAge bounds session validity. 30 days in the reference config.
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"720h"`

	// CookieName carries the token between requests.
	CookieName string `env:"COOKIE_NAME" envDefault:"session_token"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Subject string   `env:"SUBJECT" envDefault:"dev-user"`
	Name    string   `env:"NAME"    envDefault:"Dev User"`
	Email   string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Roles   []string `env:"ROLES"   envDefault:"admin"           envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Session token configuration.
	Session SessionConfig `envPrefix:"SESSION_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// RolesClaim is the provider-namespaced roles claim probed first during
	// role derivation.
	RolesClaim string `env:"ROLES_CLAIM" envDefault:"https://yourapp.com/roles"`

	// EmailAdminFallback grants admin to profiles whose email contains
	// "admin". Debug/testing affordance; must stay off in production.
	EmailAdminFallback bool `env:"EMAIL_ADMIN_FALLBACK" envDefault:"false"`

	// SignInPath is where unauthenticated browser requests are redirected.
	SignInPath string `env:"SIGN_IN_PATH" envDefault:"/auth/login"`

	// ErrorPath is where failed authentication flows land.
	ErrorPath string `env:"ERROR_PATH" envDefault:"/auth/error"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Session.MaxAge <= 0 {
		a.Session.MaxAge = 720 * time.Hour
	}
	if a.Session.CookieName == "" {
		a.Session.CookieName = "session_token"
	}
	if a.SignInPath == "" || !strings.HasPrefix(a.SignInPath, "/") {
		a.SignInPath = "/auth/login"
	}
	if a.ErrorPath == "" || !strings.HasPrefix(a.ErrorPath, "/") {
		a.ErrorPath = "/auth/error"
	}
}
