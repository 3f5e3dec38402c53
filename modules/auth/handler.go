package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/binder"
	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/respond"
	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// Handler exposes the /auth routes.
type Handler struct {
	svc *Service
	cfg Config
}

// NewHandler creates the auth HTTP handler.
func NewHandler(svc *Service, cfg Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// Routes returns the /auth subrouter.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Get("/me", h.me)
	return r
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	id, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			respond.BadRequest(w, verrs)
		case errors.Is(err, ErrEmailAlreadyInUse):
			respond.Error(w, http.StatusConflict, "Email already in use")
		default:
			respond.InternalError(r.Context(), h.svc.log, w, err)
		}
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respond.InternalError(r.Context(), h.svc.log, w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    session.ID.String(),
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	h.svc.log.InfoContext(r.Context(), "service user logged in",
		logger.ServiceUserID(session.ServiceUserID), logger.Component("auth"))

	respond.JSON(w, http.StatusOK, map[string]string{
		"expiresAt": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cfg.CookieName)
	if err != nil {
		respond.Unauthorized(w)
		return
	}
	sessionID, err := uuid.Parse(cookie.Value)
	if err != nil {
		respond.Unauthorized(w)
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			respond.Unauthorized(w)
			return
		}
		respond.InternalError(r.Context(), h.svc.log, w, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	})
}
