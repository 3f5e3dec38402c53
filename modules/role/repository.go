package role

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/accesskit/pkg/pg"
)

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the PostgreSQL-backed Storage implementation.
type Repository struct {
	db db
}

func NewRepository(db db) *Repository {
	return &Repository{db: db}
}

var _ Storage = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, role Role) (Role, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO role (id, owner_service_user_id, owner_application_id, name, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		role.ID, role.OwnerID, role.ApplicationID, role.Name, role.Description,
	).Scan(&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Role{}, ErrRoleNameTaken
		}
		return Role{}, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

func (r *Repository) Update(ctx context.Context, ownerID, appID, roleID uuid.UUID, params UpdateParams) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow(ctx,
		`UPDATE role
		 SET name = COALESCE($4, name),
		     description = COALESCE($5, description),
		     updated_at = now()
		 WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
		   AND deleted_at IS NULL
		 RETURNING updated_at`,
		roleID, ownerID, appID, params.Name, params.Description,
	).Scan(&updatedAt)
	if err != nil {
		switch {
		case pg.IsNotFoundError(err):
			return time.Time{}, ErrRoleNotFound
		case pg.IsDuplicateKeyError(err):
			return time.Time{}, ErrRoleNameTaken
		}
		return time.Time{}, fmt.Errorf("update role: %w", err)
	}
	return updatedAt, nil
}

func (r *Repository) List(ctx context.Context, ownerID, appID uuid.UUID) ([]Role, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_service_user_id, owner_application_id, name, COALESCE(description, ''), created_at, updated_at
		 FROM role
		 WHERE owner_service_user_id = $1 AND owner_application_id = $2 AND deleted_at IS NULL
		 ORDER BY id`,
		ownerID, appID,
	)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles, err := pgx.CollectRows(rows, scanRole)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (r *Repository) Get(ctx context.Context, ownerID, appID, roleID uuid.UUID) (Role, error) {
	var role Role
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_service_user_id, owner_application_id, name, COALESCE(description, ''), created_at, updated_at
		 FROM role
		 WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
		   AND deleted_at IS NULL`,
		roleID, ownerID, appID,
	).Scan(&role.ID, &role.OwnerID, &role.ApplicationID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// AddPermissions inserts all grant rows in one transaction using a single
// batched round trip. Any duplicate pair rolls the whole batch back.
func (r *Repository) AddPermissions(ctx context.Context, ownerID, appID, roleID uuid.UUID, permissionIDs []uuid.UUID) ([]Grant, error) {
	var grants []Grant
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// The role must be live and in scope before any grant lands.
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (
			   SELECT 1 FROM role
			   WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
			     AND deleted_at IS NULL
			 )`,
			roleID, ownerID, appID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check role: %w", err)
		}
		if !exists {
			return ErrRoleNotFound
		}

		batch := &pgx.Batch{}
		for _, permID := range permissionIDs {
			batch.Queue(
				`INSERT INTO role_permission (owner_service_user_id, owner_application_id, role_id, permission_id)
				 VALUES ($1, $2, $3, $4)
				 RETURNING created_at`,
				ownerID, appID, roleID, permID,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		grants = make([]Grant, 0, len(permissionIDs))
		for _, permID := range permissionIDs {
			var createdAt time.Time
			if err := results.QueryRow().Scan(&createdAt); err != nil {
				switch {
				case pg.IsDuplicateKeyError(err):
					return ErrPermissionAlreadyGranted
				case pg.IsForeignKeyViolationError(err):
					return ErrPermissionNotFound
				}
				return fmt.Errorf("grant permission %s: %w", permID, err)
			}
			grants = append(grants, Grant{PermissionID: permID, CreatedAt: createdAt})
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *Repository) RemovePermission(ctx context.Context, ownerID, appID, roleID, permissionID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM role_permission
		 WHERE owner_service_user_id = $1 AND owner_application_id = $2
		   AND role_id = $3 AND permission_id = $4`,
		ownerID, appID, roleID, permissionID,
	)
	if err != nil {
		return fmt.Errorf("remove permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPermissionNotFound
	}
	return nil
}

func (r *Repository) ListPermissions(ctx context.Context, ownerID, appID, roleID uuid.UUID) ([]Grant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT permission_id, created_at
		 FROM role_permission
		 WHERE owner_service_user_id = $1 AND owner_application_id = $2 AND role_id = $3
		 ORDER BY permission_id`,
		ownerID, appID, roleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()

	grants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Grant, error) {
		var g Grant
		err := row.Scan(&g.PermissionID, &g.CreatedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	return grants, nil
}

func scanRole(row pgx.CollectableRow) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.OwnerID, &role.ApplicationID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}
