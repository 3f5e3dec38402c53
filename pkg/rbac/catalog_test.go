package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accesskit/pkg/rbac"
)

func TestHasPermission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tier       rbac.Tier
		permission string
		want       bool
	}{
		{name: "read all can read permissions", tier: rbac.TierReadAll, permission: rbac.PermissionRead, want: true},
		{name: "read all can read roles", tier: rbac.TierReadAll, permission: rbac.RoleRead, want: true},
		{name: "read all can read users", tier: rbac.TierReadAll, permission: rbac.UserRead, want: true},
		{name: "read all cannot create", tier: rbac.TierReadAll, permission: rbac.PermissionCreate, want: false},
		{name: "read user can read users", tier: rbac.TierReadUser, permission: rbac.UserRead, want: true},
		{name: "read user cannot read roles", tier: rbac.TierReadUser, permission: rbac.RoleRead, want: false},
		{name: "admin can associate", tier: rbac.TierAdmin, permission: rbac.RolePermissionAdd, want: true},
		{name: "admin cannot read", tier: rbac.TierAdmin, permission: rbac.PermissionRead, want: false},
		{name: "unknown tier grants nothing", tier: rbac.Tier("SUPER"), permission: rbac.UserRead, want: false},
		{name: "unknown permission", tier: rbac.TierAdmin, permission: "user:delete", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rbac.HasPermission(tt.tier, tt.permission))
		})
	}
}

func TestCatalogShape(t *testing.T) {
	t.Parallel()

	all := rbac.AllPermissions()
	require.Len(t, all, 10)

	// Every tier permission must exist in the catalog.
	for _, tier := range rbac.Tiers() {
		for _, p := range rbac.Permissions(tier) {
			assert.Contains(t, all, p, "tier %s references unknown permission %s", tier, p)
		}
	}

	assert.Equal(t, []rbac.Tier{rbac.TierReadAll, rbac.TierReadUser, rbac.TierAdmin}, rbac.Tiers())
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	perms := rbac.Permissions(rbac.TierReadUser)
	require.NotEmpty(t, perms)
	perms[0] = "tampered"
	assert.True(t, rbac.HasPermission(rbac.TierReadUser, rbac.UserRead))

	all := rbac.AllPermissions()
	all[0] = "tampered"
	assert.Contains(t, rbac.AllPermissions(), rbac.PermissionCreate)
}
