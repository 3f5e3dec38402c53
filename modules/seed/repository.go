package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
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

func (r *Repository) ServiceUserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM service_user WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check service user: %w", err)
	}
	return exists, nil
}

func (r *Repository) CreateServiceUser(ctx context.Context, id uuid.UUID, email, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO service_user (id, email, password_hash) VALUES ($1, $2, $3)`,
		id, email, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("insert service user: %w", err)
	}
	return nil
}

func (r *Repository) CreateApplication(ctx context.Context, id, ownerID uuid.UUID, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO application (id, owner_service_user_id, name) VALUES ($1, $2, $3)`,
		id, ownerID, name,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}
