package application

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

// Handler exposes the /applications routes. All routes require an
// authenticated service user in the request context.
type Handler struct {
	svc *Service
}

// NewHandler creates the application HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the /applications subrouter. Nested route groups are
// attached under /{applicationID}, so the per-application resources
// (permissions, roles, users) hang off the same tree.
func (h *Handler) Routes(nested ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Route("/{applicationID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		for _, attach := range nested {
			attach(r)
		}
	})
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

type applicationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toResponse(app Application) applicationResponse {
	return applicationResponse{
		ID:          app.ID.String(),
		Name:        app.Name,
		Description: app.Description,
		CreatedAt:   app.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   app.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ServiceUserIDFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var req createRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	app, err := h.svc.Create(r.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(app))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ServiceUserIDFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	apps, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toResponse(app))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ServiceUserIDFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	appID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Application not found")
		return
	}

	app, err := h.svc.Get(r.Context(), ownerID, appID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.ServiceUserIDFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}

	appID, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Application not found")
		return
	}

	var req updateRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	updatedAt, err := h.svc.Update(r.Context(), ownerID, appID, UpdateParams{
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
	case errors.Is(err, ErrApplicationNotFound):
		respond.Error(w, http.StatusNotFound, "Application not found")
	case errors.Is(err, ErrApplicationNameTaken):
		respond.Error(w, http.StatusConflict, "Application name already exists")
	default:
		respond.InternalError(r.Context(), h.svc.log, w, err)
	}
}
