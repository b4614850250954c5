package auth

import (
	"testing"
	"time"
)

func TestUser_EffectiveRole(t *testing.T) {
	if got := (User{Role: RoleAdmin}).EffectiveRole(); got != RoleAdmin {
		t.Fatalf("expected admin, got %q", got)
	}
	if got := (User{}).EffectiveRole(); got != RoleUser {
		t.Fatalf("expected unset role to default to user, got %q", got)
	}
}

func TestUser_IsAdmin(t *testing.T) {
	if !(User{Role: RoleAdmin}).IsAdmin() {
		t.Fatalf("expected admin")
	}
	if (User{Role: RoleUser}).IsAdmin() {
		t.Fatalf("did not expect admin")
	}
	if (User{}).IsAdmin() {
		t.Fatalf("did not expect zero-value user to be admin")
	}
}

func TestProfile_ClaimAccessors(t *testing.T) {
	p := Profile{"sub": "auth0|1", "email": "a@example.com"}
	if p.Subject() != "auth0|1" || p.Email() != "a@example.com" {
		t.Fatalf("unexpected profile accessors: %q %q", p.Subject(), p.Email())
	}

	malformed := Profile{"sub": 42, "email": []string{"a"}}
	if malformed.Subject() != "" || malformed.Email() != "" {
		t.Fatalf("expected non-string claims to read as empty")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Hour)}
	if s.Expired(now) {
		t.Fatalf("did not expect expiry")
	}
	if !s.Expired(now.Add(2 * time.Hour)) {
		t.Fatalf("expected expiry")
	}
}
