package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accesskit/modules/auth"
	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// fakeStorage is an in-memory Storage honoring the same sentinel-error
// contract as the pgx repository.
type fakeStorage struct {
	users    map[string]auth.ServiceUser
	sessions map[uuid.UUID]auth.Session
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:    make(map[string]auth.ServiceUser),
		sessions: make(map[uuid.UUID]auth.Session),
	}
}

func (f *fakeStorage) InTx(ctx context.Context, fn func(tx auth.Storage) error) error {
	return fn(f)
}

func (f *fakeStorage) CreateServiceUser(ctx context.Context, user auth.ServiceUser) error {
	if _, exists := f.users[user.Email]; exists {
		return auth.ErrEmailAlreadyInUse
	}
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return nil
}

func (f *fakeStorage) FindServiceUserByEmail(ctx context.Context, email string) (auth.ServiceUser, error) {
	user, ok := f.users[email]
	if !ok {
		return auth.ServiceUser{}, auth.ErrInvalidCredentials
	}
	return user, nil
}

func (f *fakeStorage) CreateSession(ctx context.Context, session auth.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStorage) FindSessionUser(ctx context.Context, sessionID uuid.UUID) (auth.ServiceUser, error) {
	session, ok := f.sessions[sessionID]
	if !ok || time.Now().After(session.ExpiresAt) {
		return auth.ServiceUser{}, auth.ErrNotLoggedIn
	}
	for _, user := range f.users {
		if user.ID == session.ServiceUserID {
			return user, nil
		}
	}
	return auth.ServiceUser{}, auth.ErrNotLoggedIn
}

func newService(storage auth.Storage) *auth.Service {
	return auth.NewService(storage, auth.Config{SessionTTL: time.Hour, CookieName: "sessionId"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(newFakeStorage())

	id, err := svc.Register(ctx, "User@Example.com", "correct horse")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	// Login with a different case of the same email.
	session, err := svc.Login(ctx, "user@example.COM", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, id, session.ServiceUserID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	user, err := svc.CurrentUser(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(newFakeStorage())

	_, err := svc.Register(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "USER@example.com", "password456")
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyInUse)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(newFakeStorage())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "invalid email", email: "not-an-email", password: "password123"},
		{name: "empty email", email: "", password: "password123"},
		{name: "short password", email: "user@example.com", password: "short"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Register(ctx, tt.email, tt.password)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(newFakeStorage())

	_, err := svc.Register(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody@example.com", "password123")
	_, wrongErr := svc.Login(ctx, "user@example.com", "wrong password")

	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginFailureCreatesNoSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newFakeStorage()
	svc := newService(storage)

	_, err := svc.Register(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "user@example.com", "wrong password")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Empty(t, storage.sessions)
}

func TestAuthenticateSessionExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newFakeStorage()
	svc := newService(storage)

	userID := uuid.Must(uuid.NewV7())
	storage.users["user@example.com"] = auth.ServiceUser{ID: userID, Email: "user@example.com"}

	sessionID := uuid.Must(uuid.NewV7())
	storage.sessions[sessionID] = auth.Session{
		ID:            sessionID,
		ServiceUserID: userID,
		ExpiresAt:     time.Now().Add(-time.Minute),
	}

	_, err := svc.AuthenticateSession(ctx, sessionID)
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestAuthenticateSessionUnknown(t *testing.T) {
	t.Parallel()

	svc := newService(newFakeStorage())
	_, err := svc.AuthenticateSession(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}
