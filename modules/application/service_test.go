package application_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accesskit/modules/application"
	"github.com/dmitrymomot/accesskit/pkg/validator"
)

type fakeStorage struct {
	mu   sync.Mutex
	apps map[uuid.UUID]application.Application
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{apps: make(map[uuid.UUID]application.Application)}
}

func (f *fakeStorage) Create(_ context.Context, app application.Application) (application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.OwnerID == app.OwnerID && existing.Name == app.Name {
			return application.Application{}, application.ErrApplicationNameTaken
		}
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeStorage) Update(_ context.Context, ownerID, appID uuid.UUID, params application.UpdateParams) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[appID]
	if !ok || app.OwnerID != ownerID {
		return time.Time{}, application.ErrApplicationNotFound
	}
	if params.Name != nil {
		for id, existing := range f.apps {
			if id != appID && existing.OwnerID == ownerID && existing.Name == *params.Name {
				return time.Time{}, application.ErrApplicationNameTaken
			}
		}
		app.Name = *params.Name
	}
	if params.Description != nil {
		app.Description = *params.Description
	}
	app.UpdatedAt = time.Now().UTC()
	f.apps[appID] = app
	return app.UpdatedAt, nil
}

func (f *fakeStorage) List(_ context.Context, ownerID uuid.UUID) ([]application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []application.Application
	for _, app := range f.apps {
		if app.OwnerID == ownerID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (f *fakeStorage) Get(_ context.Context, ownerID, appID uuid.UUID) (application.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[appID]
	if !ok || app.OwnerID != ownerID {
		return application.Application{}, application.ErrApplicationNotFound
	}
	return app, nil
}

func strPtr(s string) *string { return &s }

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newFakeStorage()
	svc := application.NewService(storage, nil)
	owner := uuid.New()

	t.Run("creates application", func(t *testing.T) {
		app, err := svc.Create(ctx, owner, "billing", "invoicing backend")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, app.ID)
		assert.Equal(t, owner, app.OwnerID)
		assert.Equal(t, "billing", app.Name)
		assert.False(t, app.CreatedAt.IsZero())
	})

	t.Run("duplicate name within owner", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, "billing", "")
		assert.ErrorIs(t, err, application.ErrApplicationNameTaken)
	})

	t.Run("same name under another owner", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), "billing", "")
		assert.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name        string
			appName     string
			description string
		}{
			{"name too short", "ab", ""},
			{"name too long", strings.Repeat("a", 256), ""},
			{"description too long", "valid", strings.Repeat("d", 1001)},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, owner, tc.appName, tc.description)
				var verrs validator.ValidationErrors
				assert.ErrorAs(t, err, &verrs)
			})
		}
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newFakeStorage()
	svc := application.NewService(storage, nil)
	owner := uuid.New()

	app, err := svc.Create(ctx, owner, "reporting", "original")
	require.NoError(t, err)

	t.Run("empty update rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, app.ID, application.UpdateParams{})
		assert.ErrorIs(t, err, application.ErrEmptyUpdate)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, app.ID, application.UpdateParams{
			Description: strPtr("updated"),
		})
		require.NoError(t, err)

		got, err := svc.Get(ctx, owner, app.ID)
		require.NoError(t, err)
		assert.Equal(t, "reporting", got.Name)
		assert.Equal(t, "updated", got.Description)
	})

	t.Run("invalid name rejected before storage", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, app.ID, application.UpdateParams{Name: strPtr("x")})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("unknown application", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, uuid.New(), application.UpdateParams{Name: strPtr("renamed")})
		assert.ErrorIs(t, err, application.ErrApplicationNotFound)
	})

	t.Run("another owner cannot update", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), app.ID, application.UpdateParams{Name: strPtr("hijacked")})
		assert.ErrorIs(t, err, application.ErrApplicationNotFound)
	})
}

func TestServiceListAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newFakeStorage()
	svc := application.NewService(storage, nil)
	owner := uuid.New()

	first, err := svc.Create(ctx, owner, "alpha", "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, "beta", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), "gamma", "")
	require.NoError(t, err)

	t.Run("list is owner scoped", func(t *testing.T) {
		apps, err := svc.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, apps, 2)
		assert.Equal(t, first.ID, apps[0].ID)
		assert.Equal(t, second.ID, apps[1].ID)
	})

	t.Run("get is owner scoped", func(t *testing.T) {
		got, err := svc.Get(ctx, owner, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "alpha", got.Name)

		_, err = svc.Get(ctx, uuid.New(), first.ID)
		assert.ErrorIs(t, err, application.ErrApplicationNotFound)
	})
}
