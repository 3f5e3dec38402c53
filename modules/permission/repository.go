package permission

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

func (r *Repository) Create(ctx context.Context, perm Permission) (Permission, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO permission (id, owner_service_user_id, owner_application_id, name, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		perm.ID, perm.OwnerID, perm.ApplicationID, perm.Name, perm.Description,
	).Scan(&perm.CreatedAt, &perm.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Permission{}, ErrPermissionNameTaken
		}
		return Permission{}, fmt.Errorf("create permission: %w", err)
	}
	return perm, nil
}

func (r *Repository) Update(ctx context.Context, ownerID, appID, permID uuid.UUID, params UpdateParams) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow(ctx,
		`UPDATE permission
		 SET name = COALESCE($4, name),
		     description = COALESCE($5, description),
		     updated_at = now()
		 WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
		   AND deleted_at IS NULL
		 RETURNING updated_at`,
		permID, ownerID, appID, params.Name, params.Description,
	).Scan(&updatedAt)
	if err != nil {
		switch {
		case pg.IsNotFoundError(err):
			return time.Time{}, ErrPermissionNotFound
		case pg.IsDuplicateKeyError(err):
			return time.Time{}, ErrPermissionNameTaken
		}
		return time.Time{}, fmt.Errorf("update permission: %w", err)
	}
	return updatedAt, nil
}

func (r *Repository) List(ctx context.Context, ownerID, appID uuid.UUID) ([]Permission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_service_user_id, owner_application_id, name, COALESCE(description, ''), created_at, updated_at
		 FROM permission
		 WHERE owner_service_user_id = $1 AND owner_application_id = $2 AND deleted_at IS NULL
		 ORDER BY id`,
		ownerID, appID,
	)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	perms, err := pgx.CollectRows(rows, scanPermission)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

func (r *Repository) Get(ctx context.Context, ownerID, appID, permID uuid.UUID) (Permission, error) {
	var perm Permission
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_service_user_id, owner_application_id, name, COALESCE(description, ''), created_at, updated_at
		 FROM permission
		 WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
		   AND deleted_at IS NULL`,
		permID, ownerID, appID,
	).Scan(&perm.ID, &perm.OwnerID, &perm.ApplicationID, &perm.Name, &perm.Description, &perm.CreatedAt, &perm.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Permission{}, ErrPermissionNotFound
		}
		return Permission{}, fmt.Errorf("get permission: %w", err)
	}
	return perm, nil
}

func scanPermission(row pgx.CollectableRow) (Permission, error) {
	var perm Permission
	err := row.Scan(&perm.ID, &perm.OwnerID, &perm.ApplicationID, &perm.Name, &perm.Description, &perm.CreatedAt, &perm.UpdatedAt)
	return perm, err
}
