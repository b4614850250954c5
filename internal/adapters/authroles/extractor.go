package authroles

// Package authroles derives application roles from identity-provider profiles.

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

// DefaultNamespaceClaim is the provider-namespaced roles claim probed first.
// Auth0 requires custom claims to be namespaced with a URL.
const DefaultNamespaceClaim = "https://yourapp.com/roles"

// ExtractorConfig controls claim probing and the debug email fallback.
type ExtractorConfig struct {
	// NamespaceClaim overrides the provider-namespaced roles claim.
	// Defaults to DefaultNamespaceClaim when empty.
	NamespaceClaim string

	// EmailAdminFallback grants admin to any profile whose email contains
	// "admin". Testing affordance only; must stay off in production.
	EmailAdminFallback bool
}

// Extractor derives a role from a raw profile using an ordered chain of
// claim-path probes. Each probe is a compiled JMESPath expression so nested
// and URL-named claims are addressed uniformly instead of by untyped
// property walking.
type Extractor struct {
	baseChain          []jmespath.JMESPath
	appMetadataRoles   jmespath.JMESPath
	userMetadataRole   jmespath.JMESPath
	authorizationRoles jmespath.JMESPath
	emailAdminFallback bool
}

// NewExtractor compiles the claim-path chain for the given config.
func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	ns := cfg.NamespaceClaim
	if ns == "" {
		ns = DefaultNamespaceClaim
	}

	// Base signal probes in priority order: first non-empty value wins.
	basePaths := []string{
		fmt.Sprintf("%q", ns),
		"roles",
		`"custom:roles"`,
	}

	e := &Extractor{emailAdminFallback: cfg.EmailAdminFallback}
	for _, p := range basePaths {
		expr, err := jmespath.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile claim path %s: %w", p, err)
		}
		e.baseChain = append(e.baseChain, expr)
	}

	var err error
	if e.appMetadataRoles, err = jmespath.Compile("app_metadata.roles"); err != nil {
		return nil, fmt.Errorf("compile app_metadata path: %w", err)
	}
	if e.userMetadataRole, err = jmespath.Compile("user_metadata.role"); err != nil {
		return nil, fmt.Errorf("compile user_metadata path: %w", err)
	}
	if e.authorizationRoles, err = jmespath.Compile("authorization.roles"); err != nil {
		return nil, fmt.Errorf("compile authorization path: %w", err)
	}

	return e, nil
}

// Derive maps a profile claim bag to a role. The function is total: any
// missing or malformed claim falls through to RoleUser. Overrides only ever
// escalate to admin, never demote, so applying several of them is idempotent.
func (e *Extractor) Derive(profile domainauth.Profile) domainauth.Role {
	role := e.baseRole(profile)

	// Application- and user-level metadata escalations.
	if containsAdmin(e.search(e.appMetadataRoles, profile)) {
		role = domainauth.RoleAdmin
	}
	if v, ok := e.search(e.userMetadataRole, profile).(string); ok && v == string(domainauth.RoleAdmin) {
		role = domainauth.RoleAdmin
	}

	// Provider authorization-extension escalation.
	if containsAdmin(e.search(e.authorizationRoles, profile)) {
		role = domainauth.RoleAdmin
	}

	// Debug fallback, off unless explicitly enabled.
	if e.emailAdminFallback && strings.Contains(profile.Email(), "admin") {
		role = domainauth.RoleAdmin
	}

	return role
}

// baseRole evaluates the primary claim chain: first probe that yields a
// non-empty value supplies the base signal.
func (e *Extractor) baseRole(profile domainauth.Profile) domainauth.Role {
	for _, expr := range e.baseChain {
		v := e.search(expr, profile)
		switch claim := v.(type) {
		case []any:
			if len(claim) == 0 {
				continue
			}
			if containsAdmin(claim) {
				return domainauth.RoleAdmin
			}
			return domainauth.RoleUser
		case string:
			if claim == "" {
				continue
			}
			if claim == string(domainauth.RoleAdmin) {
				return domainauth.RoleAdmin
			}
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleUser
}

func (e *Extractor) search(expr jmespath.JMESPath, profile domainauth.Profile) any {
	if expr == nil || profile == nil {
		return nil
	}
	v, err := expr.Search(map[string]any(profile))
	if err != nil {
		// Malformed claims are never an error during derivation.
		return nil
	}
	return v
}

// containsAdmin reports whether a claim value is a sequence containing "admin".
func containsAdmin(v any) bool {
	seq, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range seq {
		if s, ok := item.(string); ok && s == string(domainauth.RoleAdmin) {
			return true
		}
	}
	return false
}
