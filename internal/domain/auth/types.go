package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Profile is the raw claim bag returned by an identity provider after a
// successful handshake. It is untyped on purpose: providers disagree on
// claim names and nesting, and the role extractor probes it with an
// ordered fallback chain rather than a fixed struct.
type Profile map[string]any

// Email returns the profile's email claim, or "" when absent or not a string.
func (p Profile) Email() string {
	s, _ := p["email"].(string)
	return s
}

// Subject returns the profile's sub claim, or "" when absent or not a string.
func (p Profile) Subject() string {
	s, _ := p["sub"].(string)
	return s
}

// User is the authenticated principal as the application sees it.
// Role is always set after derivation; the zero value is not a valid user.
// A User is immutable for the lifetime of one session and is reconstructed
// fresh on every session decode.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
	Role  Role   `json:"role"`
}

// EffectiveRole returns the user's role, defaulting to RoleUser when unset.
func (u User) EffectiveRole() Role {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}

// IsAdmin reports whether the user's role is admin.
func (u User) IsAdmin() bool { return u.EffectiveRole() == RoleAdmin }

// Session is the decoded view of a signed session token.
// ID is the token's unique identifier (jti), used for revocation.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's expiry has passed at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
