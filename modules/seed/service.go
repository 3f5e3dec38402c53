package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/modules/permission"
	"github.com/dmitrymomot/accesskit/modules/role"
	"github.com/dmitrymomot/accesskit/pkg/async"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/rbac"
	"github.com/dmitrymomot/accesskit/pkg/scrypt"
	"github.com/dmitrymomot/accesskit/pkg/sanitizer"
)

// Storage covers the bootstrap rows created with well-known ids. The
// registry services mint their own ids, so permissions and roles go
// through them instead.
type Storage interface {
	ServiceUserExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateServiceUser(ctx context.Context, id uuid.UUID, email, passwordHash string) error
	CreateApplication(ctx context.Context, id, ownerID uuid.UUID, name string) error
}

// PermissionRegistry is the slice of the permission service seeding needs.
type PermissionRegistry interface {
	Create(ctx context.Context, ownerID, appID uuid.UUID, name, description string) (permission.Permission, error)
}

// RoleRegistry is the slice of the role service seeding needs.
type RoleRegistry interface {
	Create(ctx context.Context, ownerID, appID uuid.UUID, name, description string) (role.Role, error)
	AddPermissions(ctx context.Context, ownerID, appID, roleID uuid.UUID, permissionIDs []uuid.UUID) ([]role.Grant, error)
}

// Service provisions the bootstrap service user, application, and the
// static permission catalog on first start.
type Service struct {
	cfg         Config
	storage     Storage
	permissions PermissionRegistry
	roles       RoleRegistry
	log         *slog.Logger
}

// NewService creates the seed service.
func NewService(cfg Config, storage Storage, permissions PermissionRegistry, roles RoleRegistry, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{cfg: cfg, storage: storage, permissions: permissions, roles: roles, log: log}
}

// EnsureSeeded checks whether the configured service user exists and, if
// not, provisions the bootstrap rows: service user, application, every
// catalog permission, every tier role, and the tier grants. Permission and
// role creation fan out concurrently; the grant step waits for both sets.
// Any failure aborts with no cleanup, so a half-seeded database needs
// manual intervention before the next start. Not safe to run from two
// processes at once.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	exists, err := s.storage.ServiceUserExists(ctx, s.cfg.ServiceUserID)
	if err != nil {
		return fmt.Errorf("seed: check service user: %w", err)
	}
	if exists {
		s.log.InfoContext(ctx, "database already seeded", logger.Component("seed"))
		return nil
	}

	hash, err := scrypt.Hash(s.cfg.Password)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}
	email := sanitizer.NormalizeEmail(s.cfg.Email)
	if err := s.storage.CreateServiceUser(ctx, s.cfg.ServiceUserID, email, hash); err != nil {
		return fmt.Errorf("seed: create service user: %w", err)
	}
	if err := s.storage.CreateApplication(ctx, s.cfg.ApplicationID, s.cfg.ServiceUserID, s.cfg.ApplicationName); err != nil {
		return fmt.Errorf("seed: create application: %w", err)
	}

	ownerID, appID := s.cfg.ServiceUserID, s.cfg.ApplicationID

	permFutures := make([]*async.Future[permission.Permission], 0, len(rbac.AllPermissions()))
	for _, name := range rbac.AllPermissions() {
		name := name
		permFutures = append(permFutures, async.Run(ctx, func(ctx context.Context) (permission.Permission, error) {
			return s.permissions.Create(ctx, ownerID, appID, name, "")
		}))
	}

	roleFutures := make([]*async.Future[role.Role], 0, len(rbac.Tiers()))
	for _, tier := range rbac.Tiers() {
		tier := tier
		roleFutures = append(roleFutures, async.Run(ctx, func(ctx context.Context) (role.Role, error) {
			return s.roles.Create(ctx, ownerID, appID, string(tier), "")
		}))
	}

	perms, err := async.WaitAll(permFutures...)
	if err != nil {
		return fmt.Errorf("seed: create permissions: %w", err)
	}
	roles, err := async.WaitAll(roleFutures...)
	if err != nil {
		return fmt.Errorf("seed: create roles: %w", err)
	}

	permIDs := make(map[string]uuid.UUID, len(perms))
	for _, p := range perms {
		permIDs[p.Name] = p.ID
	}

	for i, tier := range rbac.Tiers() {
		names := rbac.Permissions(tier)
		ids := make([]uuid.UUID, 0, len(names))
		for _, name := range names {
			ids = append(ids, permIDs[name])
		}
		if _, err := s.roles.AddPermissions(ctx, ownerID, appID, roles[i].ID, ids); err != nil {
			return fmt.Errorf("seed: grant permissions to %s: %w", tier, err)
		}
	}

	s.log.InfoContext(ctx, "database seeded",
		logger.Component("seed"),
		logger.ServiceUserID(ownerID),
		logger.ApplicationID(appID))
	return nil
}
