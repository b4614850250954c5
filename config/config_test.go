package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{input: "oauth", expected: AuthModeOAuth},
		{input: "OAuth", expected: AuthModeOAuth},
		{input: "mock", expected: AuthModeMock},
		{input: "MOCK", expected: AuthModeMock},
		{input: "ldap", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var m AuthMode
			err := m.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, 720*time.Hour, cfg.Auth.Session.MaxAge)
	assert.Equal(t, "session_token", cfg.Auth.Session.CookieName)
	assert.Equal(t, "https://yourapp.com/roles", cfg.Auth.RolesClaim)
	assert.False(t, cfg.Auth.EmailAdminFallback)
	assert.Equal(t, "/auth/login", cfg.Auth.SignInPath)
	assert.Equal(t, "/auth/error", cfg.Auth.ErrorPath)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.Redis.Enabled())
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("SESSION_MAX_AGE", "24h")
	t.Setenv("EMAIL_ADMIN_FALLBACK", "true")
	t.Setenv("DEV_AUTH_ROLES", "admin;user")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.Session.MaxAge)
	assert.True(t, cfg.Auth.EmailAdminFallback)
	assert.Equal(t, []string{"admin", "user"}, cfg.Auth.DevAuth.Roles)
	assert.True(t, cfg.Redis.Enabled())
}

func TestAuthConfig_SanitizeGuardrails(t *testing.T) {
	cfg := AuthConfig{
		Session:    SessionConfig{MaxAge: -time.Hour},
		SignInPath: "not-a-path",
		ErrorPath:  "",
	}
	cfg.Sanitize()

	assert.Equal(t, 720*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "session_token", cfg.Session.CookieName)
	assert.Equal(t, "/auth/login", cfg.SignInPath)
	assert.Equal(t, "/auth/error", cfg.ErrorPath)
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}
