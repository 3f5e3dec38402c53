package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/accesskit/pkg/pg"
)

// db is the subset of pgxpool.Pool and pgx.Tx the repository needs, so the
// same query code runs inside and outside transactions.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the PostgreSQL-backed Storage implementation.
type Repository struct {
	db db
}

// NewRepository creates a repository over a pgx pool or transaction.
func NewRepository(db db) *Repository {
	return &Repository{db: db}
}

var _ Storage = (*Repository)(nil)

func (r *Repository) InTx(ctx context.Context, fn func(tx Storage) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) CreateServiceUser(ctx context.Context, user ServiceUser) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO service_user (id, email, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.PasswordHash,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyInUse
		}
		return fmt.Errorf("create service user: %w", err)
	}
	return nil
}

func (r *Repository) FindServiceUserByEmail(ctx context.Context, email string) (ServiceUser, error) {
	var user ServiceUser
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM service_user
		 WHERE lower(email) = $1 AND deleted_at IS NULL`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return ServiceUser{}, ErrInvalidCredentials
		}
		return ServiceUser{}, fmt.Errorf("find service user by email: %w", err)
	}
	return user, nil
}

func (r *Repository) CreateSession(ctx context.Context, session Session) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO session (id, service_user_id, expires_at) VALUES ($1, $2, $3)`,
		session.ID, session.ServiceUserID, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *Repository) FindSessionUser(ctx context.Context, sessionID uuid.UUID) (ServiceUser, error) {
	var user ServiceUser
	err := r.db.QueryRow(ctx,
		`SELECT su.id, su.email, su.created_at
		 FROM session s
		 JOIN service_user su ON su.id = s.service_user_id
		 WHERE s.id = $1 AND s.deleted_at IS NULL AND su.deleted_at IS NULL
		   AND s.expires_at > now()`,
		sessionID,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return ServiceUser{}, ErrNotLoggedIn
		}
		return ServiceUser{}, fmt.Errorf("find session user: %w", err)
	}
	return user, nil
}
