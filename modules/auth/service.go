package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/sanitizer"
	"github.com/dmitrymomot/accesskit/pkg/scrypt"
	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// ServiceUser is the root account that owns applications.
type ServiceUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an opaque login session with a server-assigned expiry.
type Session struct {
	ID            uuid.UUID
	ServiceUserID uuid.UUID
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Storage persists service users and sessions. Implementations translate
// driver errors into the module sentinels (ErrEmailAlreadyInUse,
// ErrNotLoggedIn) so the service never inspects driver details.
type Storage interface {
	// InTx runs fn against a transactional view of the storage. The
	// transaction commits iff fn returns nil.
	InTx(ctx context.Context, fn func(tx Storage) error) error

	CreateServiceUser(ctx context.Context, user ServiceUser) error

	// FindServiceUserByEmail looks up a live account by normalized email.
	// A miss returns ErrInvalidCredentials.
	FindServiceUserByEmail(ctx context.Context, email string) (ServiceUser, error)

	CreateSession(ctx context.Context, session Session) error

	// FindSessionUser resolves a valid session (not deleted, not expired)
	// to its owner. A miss returns ErrNotLoggedIn.
	FindSessionUser(ctx context.Context, sessionID uuid.UUID) (ServiceUser, error)
}

// Service implements registration, login, and session resolution.
type Service struct {
	storage Storage
	cfg     Config
	log     *slog.Logger
}

// NewService creates the auth service.
func NewService(storage Storage, cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{storage: storage, cfg: cfg, log: log}
}

// Register creates a service user from email and password. The email is
// normalized to lowercase before storage so uniqueness is case-insensitive.
func (s *Service) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = sanitizer.NormalizeEmail(email)

	if err := validator.Apply(
		validator.RequiredString("email", email),
		validator.ValidEmail("email", email),
		validator.MinLenString("password", password, 8),
		validator.MaxLenString("password", password, 128),
	); err != nil {
		return uuid.Nil, err
	}

	digest, err := scrypt.Hash(password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("mint id: %w", err)
	}

	if err := s.storage.CreateServiceUser(ctx, ServiceUser{
		ID:           id,
		Email:        email,
		PasswordHash: digest,
	}); err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

// Login verifies credentials and mints a session. Lookup, verification,
// and the session insert run in one transaction so concurrent logins
// cannot create sessions for failed verifications. When the email is
// unknown a dummy verification still runs, keeping response timing
// uniform across "no such account" and "wrong password".
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = sanitizer.NormalizeEmail(email)

	var session Session
	err := s.storage.InTx(ctx, func(tx Storage) error {
		var digest string
		user, err := tx.FindServiceUserByEmail(ctx, email)
		switch {
		case err == nil:
			digest = user.PasswordHash
		case errors.Is(err, ErrInvalidCredentials):
			// Fall through with an empty digest: VerifyAny burns the same
			// derivation cost before we report failure.
		default:
			return err
		}

		ok, err := scrypt.VerifyAny(password, digest)
		if err != nil {
			return fmt.Errorf("verify password: %w", err)
		}
		if !ok {
			return ErrInvalidCredentials
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("mint session id: %w", err)
		}

		session = Session{
			ID:            id,
			ServiceUserID: user.ID,
			ExpiresAt:     time.Now().Add(s.cfg.SessionTTL),
		}
		return tx.CreateSession(ctx, session)
	})
	if err != nil {
		return Session{}, err
	}

	return session, nil
}

// CurrentUser resolves a session to its owning service user.
func (s *Service) CurrentUser(ctx context.Context, sessionID uuid.UUID) (ServiceUser, error) {
	return s.storage.FindSessionUser(ctx, sessionID)
}

// AuthenticateSession resolves a session to the owning service-user id.
// The Authenticate middleware uses it to guard every ownership-scoped
// operation.
func (s *Service) AuthenticateSession(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	user, err := s.storage.FindSessionUser(ctx, sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}
