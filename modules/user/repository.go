package user

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

func (r *Repository) Create(ctx context.Context, usr User) (User, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO "user" (id, owner_service_user_id, owner_application_id, name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		usr.ID, usr.OwnerID, usr.ApplicationID, usr.Name,
	).Scan(&usr.CreatedAt, &usr.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return usr, nil
}

func (r *Repository) Update(ctx context.Context, ownerID, appID, userID uuid.UUID, params UpdateParams) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow(ctx,
		`UPDATE "user"
		 SET name = COALESCE($4, name), updated_at = now()
		 WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
		   AND deleted_at IS NULL
		 RETURNING updated_at`,
		userID, ownerID, appID, params.Name,
	).Scan(&updatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return time.Time{}, ErrUserNotFound
		}
		return time.Time{}, fmt.Errorf("update user: %w", err)
	}
	return updatedAt, nil
}

func (r *Repository) List(ctx context.Context, ownerID, appID uuid.UUID) ([]User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_service_user_id, owner_application_id, name, created_at, updated_at
		 FROM "user"
		 WHERE owner_service_user_id = $1 AND owner_application_id = $2 AND deleted_at IS NULL
		 ORDER BY id`,
		ownerID, appID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *Repository) Get(ctx context.Context, ownerID, appID, userID uuid.UUID) (User, error) {
	var usr User
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_service_user_id, owner_application_id, name, created_at, updated_at
		 FROM "user"
		 WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
		   AND deleted_at IS NULL`,
		userID, ownerID, appID,
	).Scan(&usr.ID, &usr.OwnerID, &usr.ApplicationID, &usr.Name, &usr.CreatedAt, &usr.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return usr, nil
}

// AddRoles inserts all assignment rows in one transaction using a single
// batched round trip. Any duplicate pair rolls the whole batch back.
func (r *Repository) AddRoles(ctx context.Context, ownerID, appID, userID uuid.UUID, roleIDs []uuid.UUID) ([]Assignment, error) {
	var assignments []Assignment
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (
			   SELECT 1 FROM "user"
			   WHERE id = $1 AND owner_service_user_id = $2 AND owner_application_id = $3
			     AND deleted_at IS NULL
			 )`,
			userID, ownerID, appID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}

		batch := &pgx.Batch{}
		for _, roleID := range roleIDs {
			batch.Queue(
				`INSERT INTO user_role (owner_service_user_id, owner_application_id, user_id, role_id)
				 VALUES ($1, $2, $3, $4)
				 RETURNING created_at`,
				ownerID, appID, userID, roleID,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		assignments = make([]Assignment, 0, len(roleIDs))
		for _, roleID := range roleIDs {
			var createdAt time.Time
			if err := results.QueryRow().Scan(&createdAt); err != nil {
				switch {
				case pg.IsDuplicateKeyError(err):
					return ErrRoleAlreadyAssigned
				case pg.IsForeignKeyViolationError(err):
					return ErrRoleNotFound
				}
				return fmt.Errorf("assign role %s: %w", roleID, err)
			}
			assignments = append(assignments, Assignment{RoleID: roleID, CreatedAt: createdAt})
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *Repository) RemoveRole(ctx context.Context, ownerID, appID, userID, roleID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_role
		 WHERE owner_service_user_id = $1 AND owner_application_id = $2
		   AND user_id = $3 AND role_id = $4`,
		ownerID, appID, userID, roleID,
	)
	if err != nil {
		return fmt.Errorf("remove role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *Repository) ListRoles(ctx context.Context, ownerID, appID, userID uuid.UUID) ([]AssignedRole, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ur.role_id, rl.name, ur.created_at
		 FROM user_role ur
		 JOIN role rl ON rl.id = ur.role_id
		 WHERE ur.owner_service_user_id = $1 AND ur.owner_application_id = $2
		   AND ur.user_id = $3 AND rl.deleted_at IS NULL
		 ORDER BY ur.role_id`,
		ownerID, appID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	defer rows.Close()

	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AssignedRole, error) {
		var ar AssignedRole
		err := row.Scan(&ar.RoleID, &ar.Name, &ar.CreatedAt)
		return ar, err
	})
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	return roles, nil
}

// ResolvePermissions walks the two-hop join. Soft-deleted roles and
// permissions drop out of the result. Duplicate permission rows are
// returned as-is, the service reduces them.
func (r *Repository) ResolvePermissions(ctx context.Context, ownerID, appID, userID uuid.UUID) ([]PermissionGrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name, ur.created_at
		 FROM user_role ur
		 JOIN role rl ON rl.id = ur.role_id AND rl.deleted_at IS NULL
		 JOIN role_permission rp ON rp.role_id = ur.role_id
		 JOIN permission p ON p.id = rp.permission_id AND p.deleted_at IS NULL
		 WHERE ur.owner_service_user_id = $1 AND ur.owner_application_id = $2
		   AND ur.user_id = $3`,
		ownerID, appID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve user permissions: %w", err)
	}
	defer rows.Close()

	grants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PermissionGrant, error) {
		var g PermissionGrant
		err := row.Scan(&g.PermissionID, &g.Name, &g.GrantedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve user permissions: %w", err)
	}
	return grants, nil
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var usr User
	err := row.Scan(&usr.ID, &usr.OwnerID, &usr.ApplicationID, &usr.Name, &usr.CreatedAt, &usr.UpdatedAt)
	return usr, err
}
