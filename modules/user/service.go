package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// User is an end user of one application, the subject permissions are
// resolved for. It is registry data, not a login account.
type User struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	ApplicationID uuid.UUID
	Name          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Assignment is one user-role association.
type Assignment struct {
	RoleID    uuid.UUID
	CreatedAt time.Time
}

// AssignedRole is an assignment joined with the role's current name.
type AssignedRole struct {
	RoleID    uuid.UUID
	Name      string
	CreatedAt time.Time
}

// PermissionGrant is one permission a user holds through some role.
// GrantedAt is the creation time of the role assignment that conveyed it.
type PermissionGrant struct {
	PermissionID uuid.UUID
	Name         string
	GrantedAt    time.Time
}

// UpdateParams carries the optional fields of an update. Nil means "leave
// unchanged".
type UpdateParams struct {
	Name *string
}

// Empty reports whether the update carries no fields.
func (p UpdateParams) Empty() bool {
	return p.Name == nil
}

// Storage persists users and their role assignments. Implementations
// translate driver errors into the module sentinels. AddRoles is atomic:
// on any conflict nothing is inserted. ResolvePermissions returns the raw
// two-hop join rows, one per (assignment, permission) pair, duplicates
// included.
type Storage interface {
	Create(ctx context.Context, usr User) (User, error)
	Update(ctx context.Context, ownerID, appID, userID uuid.UUID, params UpdateParams) (time.Time, error)
	List(ctx context.Context, ownerID, appID uuid.UUID) ([]User, error)
	Get(ctx context.Context, ownerID, appID, userID uuid.UUID) (User, error)

	AddRoles(ctx context.Context, ownerID, appID, userID uuid.UUID, roleIDs []uuid.UUID) ([]Assignment, error)
	RemoveRole(ctx context.Context, ownerID, appID, userID, roleID uuid.UUID) error
	ListRoles(ctx context.Context, ownerID, appID, userID uuid.UUID) ([]AssignedRole, error)
	ResolvePermissions(ctx context.Context, ownerID, appID, userID uuid.UUID) ([]PermissionGrant, error)
}

// Service implements the application-scoped user registry, the user-role
// join management, and the permission resolver.
type Service struct {
	storage Storage
	log     *slog.Logger
}

// NewService creates the user service.
func NewService(storage Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{storage: storage, log: log}
}

// Create inserts a user into the owner's application scope. User names
// carry no uniqueness constraint.
func (s *Service) Create(ctx context.Context, ownerID, appID uuid.UUID, name string) (User, error) {
	if err := validator.Apply(
		validator.RequiredString("name", name),
		validator.MaxLenString("name", name, 255),
	); err != nil {
		return User{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return User{}, fmt.Errorf("mint id: %w", err)
	}

	return s.storage.Create(ctx, User{
		ID:            id,
		OwnerID:       ownerID,
		ApplicationID: appID,
		Name:          name,
	})
}

// Update modifies a live user in scope. Empty updates are rejected before
// reaching storage.
func (s *Service) Update(ctx context.Context, ownerID, appID, userID uuid.UUID, params UpdateParams) (time.Time, error) {
	if params.Empty() {
		return time.Time{}, ErrEmptyUpdate
	}
	if err := validator.Apply(
		validator.RequiredString("name", *params.Name),
		validator.MaxLenString("name", *params.Name, 255),
	); err != nil {
		return time.Time{}, err
	}
	return s.storage.Update(ctx, ownerID, appID, userID, params)
}

// List returns all live users in the owner's application scope.
func (s *Service) List(ctx context.Context, ownerID, appID uuid.UUID) ([]User, error) {
	return s.storage.List(ctx, ownerID, appID)
}

// Get returns one live user in scope.
func (s *Service) Get(ctx context.Context, ownerID, appID, userID uuid.UUID) (User, error) {
	return s.storage.Get(ctx, ownerID, appID, userID)
}

// AddRoles assigns the listed roles to the user in one atomic batch. Any
// already-assigned pair fails the whole batch with ErrRoleAlreadyAssigned.
func (s *Service) AddRoles(ctx context.Context, ownerID, appID, userID uuid.UUID, roleIDs []uuid.UUID) ([]Assignment, error) {
	if err := validator.Apply(
		validator.MinLenSlice("roleIds", roleIDs, 1),
	); err != nil {
		return nil, err
	}
	return s.storage.AddRoles(ctx, ownerID, appID, userID, roleIDs)
}

// RemoveRole deletes one assignment. Assignment rows are hard-deleted.
func (s *Service) RemoveRole(ctx context.Context, ownerID, appID, userID, roleID uuid.UUID) error {
	return s.storage.RemoveRole(ctx, ownerID, appID, userID, roleID)
}

// ListRoles returns the user's assignments joined with role names.
func (s *Service) ListRoles(ctx context.Context, ownerID, appID, userID uuid.UUID) ([]AssignedRole, error) {
	return s.storage.ListRoles(ctx, ownerID, appID, userID)
}

// ResolvePermissions returns every permission the user holds through any
// of its roles. A permission reachable through several roles appears once,
// with GrantedAt set to the earliest contributing assignment time. The
// result is ordered by permission id.
func (s *Service) ResolvePermissions(ctx context.Context, ownerID, appID, userID uuid.UUID) ([]PermissionGrant, error) {
	rows, err := s.storage.ResolvePermissions(ctx, ownerID, appID, userID)
	if err != nil {
		return nil, err
	}
	return reduceGrants(rows), nil
}

// reduceGrants deduplicates raw join rows by permission id, keeping the
// earliest GrantedAt among duplicates.
func reduceGrants(rows []PermissionGrant) []PermissionGrant {
	byID := make(map[uuid.UUID]PermissionGrant, len(rows))
	for _, row := range rows {
		kept, ok := byID[row.PermissionID]
		if !ok || row.GrantedAt.Before(kept.GrantedAt) {
			byID[row.PermissionID] = row
		}
	}

	out := make([]PermissionGrant, 0, len(byID))
	for _, grant := range byID {
		out = append(out, grant)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PermissionID.String() < out[j].PermissionID.String()
	})
	return out
}
