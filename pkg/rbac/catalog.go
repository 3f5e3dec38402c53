// Package rbac holds the fixed control-plane authorization catalog: the
// permission names the service provisions for its own API-key tiers, and
// the tier-to-permission mapping checked when an API key acts.
//
// This catalog authorizes the service's own API surface. It is separate
// from the per-application RBAC data stored in the database, which models
// the tenants' users, roles, and permissions.
package rbac

import "slices"

// Permission names provisioned for every bootstrap application.
const (
	PermissionCreate     = "permission:create"
	PermissionRead       = "permission:read"
	RoleCreate           = "role:create"
	RoleRead             = "role:read"
	RolePermissionAdd    = "role:permission:add"
	RolePermissionRemove = "role:permission:remove"
	UserCreate           = "user:create"
	UserRead             = "user:read"
	UserRoleAdd          = "user:role:add"
	UserRoleRemove       = "user:role:remove"
)

// Tier is an API-key authorization level.
type Tier string

const (
	// TierReadAll grants read-only access to permissions, roles, and users.
	TierReadAll Tier = "READ_ALL"
	// TierReadUser grants read-only access to users.
	TierReadUser Tier = "READ_USER"
	// TierAdmin grants full create and association rights.
	TierAdmin Tier = "ADMIN"
)

// allPermissions lists every catalog permission in provisioning order.
var allPermissions = []string{
	PermissionCreate,
	PermissionRead,
	RoleCreate,
	RoleRead,
	RolePermissionAdd,
	RolePermissionRemove,
	UserCreate,
	UserRead,
	UserRoleAdd,
	UserRoleRemove,
}

// tierPermissions is the immutable tier-to-permission table. Never mutated
// after init; lookups are plain set membership.
var tierPermissions = map[Tier][]string{
	TierReadAll: {
		PermissionRead,
		RoleRead,
		UserRead,
	},
	TierReadUser: {
		UserRead,
	},
	TierAdmin: {
		PermissionCreate,
		RoleCreate,
		RolePermissionAdd,
		RolePermissionRemove,
		UserCreate,
		UserRoleAdd,
		UserRoleRemove,
	},
}

// HasPermission reports whether tier grants the named permission. Unknown
// tiers grant nothing.
func HasPermission(tier Tier, permission string) bool {
	return slices.Contains(tierPermissions[tier], permission)
}

// Permissions returns a copy of the permission set granted to tier.
func Permissions(tier Tier) []string {
	return slices.Clone(tierPermissions[tier])
}

// AllPermissions returns a copy of every catalog permission name.
func AllPermissions() []string {
	return slices.Clone(allPermissions)
}

// Tiers returns every tier in provisioning order.
func Tiers() []Tier {
	return []Tier{TierReadAll, TierReadUser, TierAdmin}
}
