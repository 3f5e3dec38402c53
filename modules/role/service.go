package role

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// Role is a named bundle of permissions inside one application.
type Role struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	ApplicationID uuid.UUID
	Name          string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Grant is one role-permission association.
type Grant struct {
	PermissionID uuid.UUID
	CreatedAt    time.Time
}

// UpdateParams carries the optional fields of an update. Nil means "leave
// unchanged".
type UpdateParams struct {
	Name        *string
	Description *string
}

// Empty reports whether the update carries no fields.
func (p UpdateParams) Empty() bool {
	return p.Name == nil && p.Description == nil
}

// Storage persists roles and their permission grants. Implementations
// translate driver errors into the module sentinels. AddPermissions is
// atomic: on any conflict nothing is inserted.
type Storage interface {
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, ownerID, appID, roleID uuid.UUID, params UpdateParams) (time.Time, error)
	List(ctx context.Context, ownerID, appID uuid.UUID) ([]Role, error)
	Get(ctx context.Context, ownerID, appID, roleID uuid.UUID) (Role, error)

	AddPermissions(ctx context.Context, ownerID, appID, roleID uuid.UUID, permissionIDs []uuid.UUID) ([]Grant, error)
	RemovePermission(ctx context.Context, ownerID, appID, roleID, permissionID uuid.UUID) error
	ListPermissions(ctx context.Context, ownerID, appID, roleID uuid.UUID) ([]Grant, error)
}

// Service implements the application-scoped role registry and the
// role-permission join management.
type Service struct {
	storage Storage
	log     *slog.Logger
}

// NewService creates the role service.
func NewService(storage Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{storage: storage, log: log}
}

// Create inserts a role into the owner's application scope.
func (s *Service) Create(ctx context.Context, ownerID, appID uuid.UUID, name, description string) (Role, error) {
	if err := validator.Apply(
		validator.MinLenString("name", name, 3),
		validator.MaxLenString("name", name, 255),
		validator.MaxLenString("description", description, 1000),
	); err != nil {
		return Role{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Role{}, fmt.Errorf("mint id: %w", err)
	}

	return s.storage.Create(ctx, Role{
		ID:            id,
		OwnerID:       ownerID,
		ApplicationID: appID,
		Name:          name,
		Description:   description,
	})
}

// Update modifies the named fields of a live role in scope. Empty updates
// are rejected before reaching storage.
func (s *Service) Update(ctx context.Context, ownerID, appID, roleID uuid.UUID, params UpdateParams) (time.Time, error) {
	if params.Empty() {
		return time.Time{}, ErrEmptyUpdate
	}

	var rules []validator.Rule
	if params.Name != nil {
		rules = append(rules,
			validator.MinLenString("name", *params.Name, 3),
			validator.MaxLenString("name", *params.Name, 255),
		)
	}
	if params.Description != nil {
		rules = append(rules, validator.MaxLenString("description", *params.Description, 1000))
	}
	if err := validator.Apply(rules...); err != nil {
		return time.Time{}, err
	}

	return s.storage.Update(ctx, ownerID, appID, roleID, params)
}

// List returns all live roles in the owner's application scope.
func (s *Service) List(ctx context.Context, ownerID, appID uuid.UUID) ([]Role, error) {
	return s.storage.List(ctx, ownerID, appID)
}

// Get returns one live role in scope.
func (s *Service) Get(ctx context.Context, ownerID, appID, roleID uuid.UUID) (Role, error) {
	return s.storage.Get(ctx, ownerID, appID, roleID)
}

// AddPermissions grants the listed permissions to the role in one atomic
// batch. Any already-granted pair fails the whole batch with
// ErrPermissionAlreadyGranted.
func (s *Service) AddPermissions(ctx context.Context, ownerID, appID, roleID uuid.UUID, permissionIDs []uuid.UUID) ([]Grant, error) {
	if err := validator.Apply(
		validator.MinLenSlice("permissionIds", permissionIDs, 1),
	); err != nil {
		return nil, err
	}
	return s.storage.AddPermissions(ctx, ownerID, appID, roleID, permissionIDs)
}

// RemovePermission deletes one grant. Grant rows are hard-deleted.
func (s *Service) RemovePermission(ctx context.Context, ownerID, appID, roleID, permissionID uuid.UUID) error {
	return s.storage.RemovePermission(ctx, ownerID, appID, roleID, permissionID)
}

// ListPermissions returns the role's grants ordered by permission id.
func (s *Service) ListPermissions(ctx context.Context, ownerID, appID, roleID uuid.UUID) ([]Grant, error) {
	return s.storage.ListPermissions(ctx, ownerID, appID, roleID)
}
