package application

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

func (r *Repository) Create(ctx context.Context, app Application) (Application, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO application (id, owner_service_user_id, name, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		app.ID, app.OwnerID, app.Name, app.Description,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Application{}, ErrApplicationNameTaken
		}
		return Application{}, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func (r *Repository) Update(ctx context.Context, ownerID, appID uuid.UUID, params UpdateParams) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow(ctx,
		`UPDATE application
		 SET name = COALESCE($3, name),
		     description = COALESCE($4, description),
		     updated_at = now()
		 WHERE id = $1 AND owner_service_user_id = $2 AND deleted_at IS NULL
		 RETURNING updated_at`,
		appID, ownerID, params.Name, params.Description,
	).Scan(&updatedAt)
	if err != nil {
		switch {
		case pg.IsNotFoundError(err):
			return time.Time{}, ErrApplicationNotFound
		case pg.IsDuplicateKeyError(err):
			return time.Time{}, ErrApplicationNameTaken
		}
		return time.Time{}, fmt.Errorf("update application: %w", err)
	}
	return updatedAt, nil
}

func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_service_user_id, name, COALESCE(description, ''), created_at, updated_at
		 FROM application
		 WHERE owner_service_user_id = $1 AND deleted_at IS NULL
		 ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Application, error) {
		var app Application
		err := row.Scan(&app.ID, &app.OwnerID, &app.Name, &app.Description, &app.CreatedAt, &app.UpdatedAt)
		return app, err
	})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (r *Repository) Get(ctx context.Context, ownerID, appID uuid.UUID) (Application, error) {
	var app Application
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_service_user_id, name, COALESCE(description, ''), created_at, updated_at
		 FROM application
		 WHERE id = $1 AND owner_service_user_id = $2 AND deleted_at IS NULL`,
		appID, ownerID,
	).Scan(&app.ID, &app.OwnerID, &app.Name, &app.Description, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Application{}, ErrApplicationNotFound
		}
		return Application{}, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}
