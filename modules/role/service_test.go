package role_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accesskit/modules/role"
	"github.com/dmitrymomot/accesskit/pkg/validator"
)

type grantKey struct {
	roleID uuid.UUID
	permID uuid.UUID
}

type fakeStorage struct {
	mu     sync.Mutex
	roles  map[uuid.UUID]role.Role
	grants map[grantKey]time.Time
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		roles:  make(map[uuid.UUID]role.Role),
		grants: make(map[grantKey]time.Time),
	}
}

func (f *fakeStorage) inScope(rl role.Role, ownerID, appID uuid.UUID) bool {
	return rl.OwnerID == ownerID && rl.ApplicationID == appID
}

func (f *fakeStorage) Create(_ context.Context, rl role.Role) (role.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.roles {
		if f.inScope(existing, rl.OwnerID, rl.ApplicationID) && existing.Name == rl.Name {
			return role.Role{}, role.ErrRoleNameTaken
		}
	}
	now := time.Now().UTC()
	rl.CreatedAt = now
	rl.UpdatedAt = now
	f.roles[rl.ID] = rl
	return rl, nil
}

func (f *fakeStorage) Update(_ context.Context, ownerID, appID, roleID uuid.UUID, params role.UpdateParams) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rl, ok := f.roles[roleID]
	if !ok || !f.inScope(rl, ownerID, appID) {
		return time.Time{}, role.ErrRoleNotFound
	}
	if params.Name != nil {
		rl.Name = *params.Name
	}
	if params.Description != nil {
		rl.Description = *params.Description
	}
	rl.UpdatedAt = time.Now().UTC()
	f.roles[roleID] = rl
	return rl.UpdatedAt, nil
}

func (f *fakeStorage) List(_ context.Context, ownerID, appID uuid.UUID) ([]role.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []role.Role
	for _, rl := range f.roles {
		if f.inScope(rl, ownerID, appID) {
			out = append(out, rl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (f *fakeStorage) Get(_ context.Context, ownerID, appID, roleID uuid.UUID) (role.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rl, ok := f.roles[roleID]
	if !ok || !f.inScope(rl, ownerID, appID) {
		return role.Role{}, role.ErrRoleNotFound
	}
	return rl, nil
}

func (f *fakeStorage) AddPermissions(_ context.Context, ownerID, appID, roleID uuid.UUID, permissionIDs []uuid.UUID) ([]role.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rl, ok := f.roles[roleID]
	if !ok || !f.inScope(rl, ownerID, appID) {
		return nil, role.ErrRoleNotFound
	}
	// Reject the whole batch before touching state, mirroring the
	// transactional repository.
	for _, permID := range permissionIDs {
		if _, exists := f.grants[grantKey{roleID, permID}]; exists {
			return nil, role.ErrPermissionAlreadyGranted
		}
	}
	now := time.Now().UTC()
	grants := make([]role.Grant, 0, len(permissionIDs))
	for _, permID := range permissionIDs {
		f.grants[grantKey{roleID, permID}] = now
		grants = append(grants, role.Grant{PermissionID: permID, CreatedAt: now})
	}
	return grants, nil
}

func (f *fakeStorage) RemovePermission(_ context.Context, ownerID, appID, roleID, permissionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rl, ok := f.roles[roleID]
	if !ok || !f.inScope(rl, ownerID, appID) {
		return role.ErrPermissionNotFound
	}
	key := grantKey{roleID, permissionID}
	if _, exists := f.grants[key]; !exists {
		return role.ErrPermissionNotFound
	}
	delete(f.grants, key)
	return nil
}

func (f *fakeStorage) ListPermissions(_ context.Context, ownerID, appID, roleID uuid.UUID) ([]role.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []role.Grant
	for key, createdAt := range f.grants {
		if key.roleID == roleID {
			out = append(out, role.Grant{PermissionID: key.permID, CreatedAt: createdAt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PermissionID.String() < out[j].PermissionID.String()
	})
	return out, nil
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := role.NewService(newFakeStorage(), nil)
	owner := uuid.New()
	app := uuid.New()

	t.Run("creates role", func(t *testing.T) {
		rl, err := svc.Create(ctx, owner, app, "editor", "can edit")
		require.NoError(t, err)
		assert.Equal(t, "editor", rl.Name)
	})

	t.Run("duplicate name within application", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, app, "editor", "")
		assert.ErrorIs(t, err, role.ErrRoleNameTaken)
	})

	t.Run("name too short", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, app, "ed", "")
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestServicePermissionGrants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newFakeStorage()
	svc := role.NewService(storage, nil)
	owner := uuid.New()
	app := uuid.New()

	rl, err := svc.Create(ctx, owner, app, "auditor", "")
	require.NoError(t, err)

	permA := uuid.New()
	permB := uuid.New()
	permC := uuid.New()

	t.Run("empty batch rejected", func(t *testing.T) {
		_, err := svc.AddPermissions(ctx, owner, app, rl.ID, nil)
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("grants batch", func(t *testing.T) {
		grants, err := svc.AddPermissions(ctx, owner, app, rl.ID, []uuid.UUID{permA, permB})
		require.NoError(t, err)
		require.Len(t, grants, 2)
		assert.Equal(t, permA, grants[0].PermissionID)
		assert.False(t, grants[0].CreatedAt.IsZero())
	})

	t.Run("duplicate pair fails whole batch", func(t *testing.T) {
		_, err := svc.AddPermissions(ctx, owner, app, rl.ID, []uuid.UUID{permC, permA})
		assert.ErrorIs(t, err, role.ErrPermissionAlreadyGranted)

		// The fresh id must not have been inserted alongside the
		// conflicting one.
		grants, err := svc.ListPermissions(ctx, owner, app, rl.ID)
		require.NoError(t, err)
		for _, g := range grants {
			assert.NotEqual(t, permC, g.PermissionID)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.AddPermissions(ctx, owner, app, uuid.New(), []uuid.UUID{permC})
		assert.ErrorIs(t, err, role.ErrRoleNotFound)
	})

	t.Run("remove grant", func(t *testing.T) {
		require.NoError(t, svc.RemovePermission(ctx, owner, app, rl.ID, permA))

		err := svc.RemovePermission(ctx, owner, app, rl.ID, permA)
		assert.ErrorIs(t, err, role.ErrPermissionNotFound)
	})

	t.Run("list remaining grants", func(t *testing.T) {
		grants, err := svc.ListPermissions(ctx, owner, app, rl.ID)
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Equal(t, permB, grants[0].PermissionID)
	})
}
