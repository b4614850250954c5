package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

func newTestExtractor(t *testing.T, cfg ExtractorConfig) *Extractor {
	t.Helper()
	e, err := NewExtractor(cfg)
	require.NoError(t, err)
	return e
}

func TestDerive_BaseClaimChain(t *testing.T) {
	e := newTestExtractor(t, ExtractorConfig{})

	tests := []struct {
		name    string
		profile domainauth.Profile
		want    domainauth.Role
	}{
		{
			name:    "no recognized role claims defaults to user",
			profile: domainauth.Profile{"sub": "auth0|1", "email": "a@b.com"},
			want:    domainauth.RoleUser,
		},
		{
			name:    "nil profile defaults to user",
			profile: nil,
			want:    domainauth.RoleUser,
		},
		{
			name:    "namespaced claim with admin",
			profile: domainauth.Profile{"https://yourapp.com/roles": []any{"admin"}},
			want:    domainauth.RoleAdmin,
		},
		{
			name:    "namespaced claim without admin",
			profile: domainauth.Profile{"https://yourapp.com/roles": []any{"user", "editor"}},
			want:    domainauth.RoleUser,
		},
		{
			name:    "plain roles claim with admin",
			profile: domainauth.Profile{"roles": []any{"admin"}},
			want:    domainauth.RoleAdmin,
		},
		{
			name:    "custom namespaced claim as single string",
			profile: domainauth.Profile{"custom:roles": "admin"},
			want:    domainauth.RoleAdmin,
		},
		{
			name:    "single string not admin",
			profile: domainauth.Profile{"roles": "editor"},
			want:    domainauth.RoleUser,
		},
		{
			name: "namespaced claim takes priority over plain roles",
			profile: domainauth.Profile{
				"https://yourapp.com/roles": []any{"user"},
				"roles":                     []any{"admin"},
			},
			want: domainauth.RoleUser,
		},
		{
			name: "empty namespaced claim falls through to plain roles",
			profile: domainauth.Profile{
				"https://yourapp.com/roles": []any{},
				"roles":                     []any{"admin"},
			},
			want: domainauth.RoleAdmin,
		},
		{
			name:    "malformed claim type falls back to user",
			profile: domainauth.Profile{"roles": 42},
			want:    domainauth.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Derive(tt.profile))
		})
	}
}

func TestDerive_MetadataEscalations(t *testing.T) {
	e := newTestExtractor(t, ExtractorConfig{})

	tests := []struct {
		name    string
		profile domainauth.Profile
		want    domainauth.Role
	}{
		{
			name: "app_metadata roles overrides base user claim",
			profile: domainauth.Profile{
				"https://yourapp.com/roles": []any{"user"},
				"app_metadata":              map[string]any{"roles": []any{"admin"}},
			},
			want: domainauth.RoleAdmin,
		},
		{
			name: "user_metadata role escalates",
			profile: domainauth.Profile{
				"user_metadata": map[string]any{"role": "admin"},
			},
			want: domainauth.RoleAdmin,
		},
		{
			name: "user_metadata non-admin role does not escalate",
			profile: domainauth.Profile{
				"user_metadata": map[string]any{"role": "user"},
			},
			want: domainauth.RoleUser,
		},
		{
			name: "authorization roles escalates",
			profile: domainauth.Profile{
				"authorization": map[string]any{"roles": []any{"admin"}},
			},
			want: domainauth.RoleAdmin,
		},
		{
			name: "multiple escalations remain admin",
			profile: domainauth.Profile{
				"roles":         []any{"admin"},
				"app_metadata":  map[string]any{"roles": []any{"admin"}},
				"authorization": map[string]any{"roles": []any{"admin"}},
			},
			want: domainauth.RoleAdmin,
		},
		{
			name: "malformed app_metadata is ignored",
			profile: domainauth.Profile{
				"app_metadata": "oops",
			},
			want: domainauth.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Derive(tt.profile))
		})
	}
}

func TestDerive_EmailFallbackDisabledByDefault(t *testing.T) {
	e := newTestExtractor(t, ExtractorConfig{})

	profile := domainauth.Profile{
		"email":                     "admin@b.com",
		"https://yourapp.com/roles": []any{"user"},
	}
	assert.Equal(t, domainauth.RoleUser, e.Derive(profile))
}

func TestDerive_EmailFallbackOptIn(t *testing.T) {
	e := newTestExtractor(t, ExtractorConfig{EmailAdminFallback: true})

	plain := domainauth.Profile{
		"email":                     "a@b.com",
		"https://yourapp.com/roles": []any{"user"},
	}
	assert.Equal(t, domainauth.RoleUser, e.Derive(plain))

	escalated := domainauth.Profile{
		"email":                     "admin@b.com",
		"https://yourapp.com/roles": []any{"user"},
	}
	assert.Equal(t, domainauth.RoleAdmin, e.Derive(escalated))
}

func TestNewExtractor_CustomNamespace(t *testing.T) {
	e := newTestExtractor(t, ExtractorConfig{NamespaceClaim: "https://rolegate.example/roles"})

	profile := domainauth.Profile{"https://rolegate.example/roles": []any{"admin"}}
	assert.Equal(t, domainauth.RoleAdmin, e.Derive(profile))
}
