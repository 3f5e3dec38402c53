package permission

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// Permission is a named capability inside one application. It carries no
// behavior of its own until a role grants it to a user.
type Permission struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	ApplicationID uuid.UUID
	Name          string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
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

// Storage persists permissions. Implementations translate driver errors
// into the module sentinels.
type Storage interface {
	Create(ctx context.Context, perm Permission) (Permission, error)
	Update(ctx context.Context, ownerID, appID, permID uuid.UUID, params UpdateParams) (time.Time, error)
	List(ctx context.Context, ownerID, appID uuid.UUID) ([]Permission, error)
	Get(ctx context.Context, ownerID, appID, permID uuid.UUID) (Permission, error)
}

// Service implements the application-scoped permission registry.
type Service struct {
	storage Storage
	log     *slog.Logger
}

// NewService creates the permission service.
func NewService(storage Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{storage: storage, log: log}
}

// Create inserts a permission into the owner's application scope.
func (s *Service) Create(ctx context.Context, ownerID, appID uuid.UUID, name, description string) (Permission, error) {
	if err := validator.Apply(
		validator.RequiredString("name", name),
		validator.MaxLenString("name", name, 255),
		validator.MaxLenString("description", description, 1000),
	); err != nil {
		return Permission{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Permission{}, fmt.Errorf("mint id: %w", err)
	}

	return s.storage.Create(ctx, Permission{
		ID:            id,
		OwnerID:       ownerID,
		ApplicationID: appID,
		Name:          name,
		Description:   description,
	})
}

// Update modifies the named fields of a live permission in scope. Empty
// updates are rejected before reaching storage.
func (s *Service) Update(ctx context.Context, ownerID, appID, permID uuid.UUID, params UpdateParams) (time.Time, error) {
	if params.Empty() {
		return time.Time{}, ErrEmptyUpdate
	}

	var rules []validator.Rule
	if params.Name != nil {
		rules = append(rules,
			validator.RequiredString("name", *params.Name),
			validator.MaxLenString("name", *params.Name, 255),
		)
	}
	if params.Description != nil {
		rules = append(rules, validator.MaxLenString("description", *params.Description, 1000))
	}
	if err := validator.Apply(rules...); err != nil {
		return time.Time{}, err
	}

	return s.storage.Update(ctx, ownerID, appID, permID, params)
}

// List returns all live permissions in the owner's application scope.
func (s *Service) List(ctx context.Context, ownerID, appID uuid.UUID) ([]Permission, error) {
	return s.storage.List(ctx, ownerID, appID)
}

// Get returns one live permission in scope.
func (s *Service) Get(ctx context.Context, ownerID, appID, permID uuid.UUID) (Permission, error) {
	return s.storage.Get(ctx, ownerID, appID, permID)
}
