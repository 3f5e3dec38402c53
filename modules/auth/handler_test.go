package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accesskit/modules/auth"
)

func jsonRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func newHandler(storage auth.Storage) *auth.Handler {
	svc := newService(storage)
	return auth.NewHandler(svc, auth.Config{CookieName: "sessionId", CookieSecure: true})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	h := newHandler(newFakeStorage())
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/register", `{"email":"user@example.com","password":"password123"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "id")
}

func TestRegisterEndpointConflict(t *testing.T) {
	t.Parallel()

	h := newHandler(newFakeStorage())
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/register", `{"email":"user@example.com","password":"password123"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/register", `{"email":"user@example.com","password":"password123"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpointSetsCookie(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	h := newHandler(storage)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/register", `{"email":"user@example.com","password":"password123"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/login", `{"email":"user@example.com","password":"password123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "sessionId", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	_, err := uuid.Parse(cookie.Value)
	assert.NoError(t, err)
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	t.Parallel()

	h := newHandler(newFakeStorage())
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/login", `{"email":"nobody@example.com","password":"password123"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	h := newHandler(storage)
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/register", `{"email":"user@example.com","password":"password123"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, jsonRequest(http.MethodPost, "/login", `{"email":"user@example.com","password":"password123"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	sessionCookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie)
	// A second unrelated cookie must not confuse the name match.
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user@example.com")
}

func TestMeEndpointWithoutCookie(t *testing.T) {
	t.Parallel()

	h := newHandler(newFakeStorage())
	router := h.Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMiddleware(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	svc := newService(storage)

	var gotID uuid.UUID
	protected := svc.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.ServiceUserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed session id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sessionId", Value: "not-a-uuid"})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		ctx := context.Background()
		userID, err := svc.Register(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		session, err := svc.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sessionId", Value: session.ID.String()})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, gotID)
	})
}
