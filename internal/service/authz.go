package service

import (
	"slices"

	domainauth "github.com/rolegate/rolegate/internal/domain/auth"
)

// Authorizer answers access-control questions from two static tables: a role
// hierarchy (role -> set of roles it is equivalent to or inherits) and
// resource permissions (resource -> set of roles permitted).
//
// Both decision methods are total functions: they always return a value and
// never fail, keeping the access-decision path free of control-flow errors.
// The tables are read-mostly and safe for concurrent reads; AddRole and
// AddResourcePermission are config-time extension points and need external
// synchronization if ever called concurrently with traffic.
type Authorizer struct {
	roleHierarchy       map[string][]string
	resourcePermissions map[string][]string
}

// NewAuthorizer constructs an Authorizer with the reference policy: a flat
// two-tier hierarchy (admin inherits user) and the demo resource map.
func NewAuthorizer() *Authorizer {
	return &Authorizer{
		roleHierarchy: map[string][]string{
			string(domainauth.RoleAdmin): {string(domainauth.RoleAdmin), string(domainauth.RoleUser)},
			string(domainauth.RoleUser):  {string(domainauth.RoleUser)},
		},
		resourcePermissions: map[string][]string{
			"/admin": {string(domainauth.RoleAdmin)},
			"/user":  {string(domainauth.RoleUser), string(domainauth.RoleAdmin)},
			"/":      {}, // public
		},
	}
}

// HasRole reports whether the user holds the target role, directly or by
// inheritance. A nil user never holds any role. Hierarchy lookup is a set
// membership test; there is no notion of rank.
func (a *Authorizer) HasRole(role string, user *domainauth.User) bool {
	if user == nil {
		return false
	}

	allowed := a.roleHierarchy[string(user.EffectiveRole())]
	return slices.Contains(allowed, role)
}

// CanAccess reports whether the user may access the resource. Resources with
// no entry or an empty required-role set are public, even for a nil user.
// Otherwise a nil user is denied and a non-nil user needs at least one of
// the required roles. Resource keys are opaque strings matched exactly.
func (a *Authorizer) CanAccess(resource string, user *domainauth.User) bool {
	required := a.resourcePermissions[resource]
	if len(required) == 0 {
		return true
	}

	if user == nil {
		return false
	}

	for _, role := range required {
		if a.HasRole(role, user) {
			return true
		}
	}
	return false
}

// RequiredRoles returns the roles permitted on a resource, empty for public
// resources. The returned slice is a copy.
func (a *Authorizer) RequiredRoles(resource string) []string {
	return slices.Clone(a.resourcePermissions[resource])
}

// AddRole inserts or overwrites one role-hierarchy entry.
func (a *Authorizer) AddRole(role string, inheritedRoles []string) {
	a.roleHierarchy[role] = slices.Clone(inheritedRoles)
}

// AddResourcePermission inserts or overwrites one resource-permission entry.
// An empty roles slice makes the resource public.
func (a *Authorizer) AddResourcePermission(resource string, roles []string) {
	a.resourcePermissions[resource] = slices.Clone(roles)
}
