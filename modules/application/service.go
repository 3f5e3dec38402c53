package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// Application is the tenancy boundary: every permission, role, and user
// below it is scoped to one application owned by one service user.
type Application struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
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

// Storage persists applications. Implementations translate driver errors
// into the module sentinels.
type Storage interface {
	Create(ctx context.Context, app Application) (Application, error)
	Update(ctx context.Context, ownerID, appID uuid.UUID, params UpdateParams) (time.Time, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]Application, error)
	Get(ctx context.Context, ownerID, appID uuid.UUID) (Application, error)
}

// Service implements the owner-scoped application registry.
type Service struct {
	storage Storage
	log     *slog.Logger
}

// NewService creates the application service.
func NewService(storage Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{storage: storage, log: log}
}

// Create inserts an application owned by the acting service user.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (Application, error) {
	if err := validator.Apply(
		validator.MinLenString("name", name, 3),
		validator.MaxLenString("name", name, 255),
		validator.MaxLenString("description", description, 1000),
	); err != nil {
		return Application{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Application{}, fmt.Errorf("mint id: %w", err)
	}

	return s.storage.Create(ctx, Application{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	})
}

// Update modifies the named fields of a live application in the owner's
// scope. Empty updates are rejected before reaching storage.
func (s *Service) Update(ctx context.Context, ownerID, appID uuid.UUID, params UpdateParams) (time.Time, error) {
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

	return s.storage.Update(ctx, ownerID, appID, params)
}

// List returns all live applications owned by the acting service user.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]Application, error) {
	return s.storage.List(ctx, ownerID)
}

// Get returns one live application in the owner's scope.
func (s *Service) Get(ctx context.Context, ownerID, appID uuid.UUID) (Application, error) {
	return s.storage.Get(ctx, ownerID, appID)
}
