package permission

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/modules/auth"
	"github.com/dmitrymomot/accesskit/pkg/binder"
	"github.com/dmitrymomot/accesskit/pkg/respond"
	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// Handler exposes the permission routes nested under
// /applications/{applicationID}/permissions.
type Handler struct {
	svc *Service
}

// NewHandler creates the permission HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the permissions subrouter. The applicationID path
// parameter comes from the parent route.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{permissionID}", h.get)
	r.Patch("/{permissionID}", h.update)
	return r
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type permissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toResponse(perm Permission) permissionResponse {
	return permissionResponse{
		ID:          perm.ID.String(),
		Name:        perm.Name,
		Description: perm.Description,
		CreatedAt:   perm.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   perm.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// requestScope resolves the acting service user and the application id
// from the request, writing the rejection itself on failure. A malformed
// application id behaves like an unknown one.
func requestScope(w http.ResponseWriter, r *http.Request) (ownerID, appID uuid.UUID, ok bool) {
	ownerID, ok = auth.ServiceUserIDFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return uuid.Nil, uuid.Nil, false
	}
	appID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Application not found")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, appID, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	perm, err := h.svc.Create(r.Context(), ownerID, appID, req.Name, req.Description)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(perm))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	perms, err := h.svc.List(r.Context(), ownerID, appID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]permissionResponse, 0, len(perms))
	for _, perm := range perms {
		out = append(out, toResponse(perm))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	permID, err := uuid.Parse(chi.URLParam(r, "permissionID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Permission not found")
		return
	}

	perm, err := h.svc.Get(r.Context(), ownerID, appID, permID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(perm))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	permID, err := uuid.Parse(chi.URLParam(r, "permissionID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Permission not found")
		return
	}

	var req updateRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	updatedAt, err := h.svc.Update(r.Context(), ownerID, appID, permID, UpdateParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"updatedAt": updatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respond.BadRequest(w, verrs)
	case errors.Is(err, ErrEmptyUpdate):
		respond.Error(w, http.StatusBadRequest, "Update requires at least one field")
	case errors.Is(err, ErrPermissionNotFound):
		respond.Error(w, http.StatusNotFound, "Permission not found")
	case errors.Is(err, ErrPermissionNameTaken):
		respond.Error(w, http.StatusConflict, "Permission name already exists")
	default:
		respond.InternalError(r.Context(), h.svc.log, w, err)
	}
}
