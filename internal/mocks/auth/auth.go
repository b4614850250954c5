package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
	"github.com/rolegate/rolegate/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider    = (*MockAuthProvider)(nil)
	_ ports.RoleExtractor   = (*StaticRoleExtractor)(nil)
	_ ports.RevocationStore = (*MemoryRevocationStore)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Profile, error)

	// Deterministic values for predictable testing
	AuthURL        string
	StatePrefix    string
	NoncePrefix    string
	DefaultProfile domainauth.Profile

	// Captured inputs for assertions
	LastBeginInput ports.BeginInput

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/authorize",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultProfile: domainauth.Profile{
			"sub":     "mock-user-1",
			"name":    "Mock User",
			"email":   "mock.user@example.com",
			"picture": "https://mock-idp/avatar.png",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	m.LastBeginInput = in
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	state := fmt.Sprintf("%s-%d", m.StatePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", m.NoncePrefix, m.callCount)
	return m.AuthURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Profile, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	out := make(domainauth.Profile, len(m.DefaultProfile))
	for k, v := range m.DefaultProfile {
		out[k] = v
	}
	return out, nil
}

// StaticRoleExtractor returns a fixed role regardless of the profile.
type StaticRoleExtractor struct {
	Role domainauth.Role
}

func (s StaticRoleExtractor) Derive(_ domainauth.Profile) domainauth.Role {
	if s.Role == "" {
		return domainauth.RoleUser
	}
	return s.Role
}

// MemoryRevocationStore is an in-memory RevocationStore for tests.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time

	// Optional error injection
	RevokeErr    error
	IsRevokedErr error
}

// NewMemoryRevocationStore creates an empty in-memory revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]time.Time)}
}

func (m *MemoryRevocationStore) Revoke(_ context.Context, sessionID string, until time.Time) error {
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = until
	return nil
}

func (m *MemoryRevocationStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	if m.IsRevokedErr != nil {
		return false, m.IsRevokedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.entries[sessionID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(until), nil
}
