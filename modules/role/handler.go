package role

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/modules/auth"
	"github.com/dmitrymomot/accesskit/pkg/binder"
	"github.com/dmitrymomot/accesskit/pkg/respond"
	"github.com/dmitrymomot/accesskit/pkg/validator"
)

// Handler exposes the role routes nested under
// /applications/{applicationID}/roles.
type Handler struct {
	svc *Service
}

// NewHandler creates the role HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the roles subrouter, including the role-permission join
// routes. The applicationID path parameter comes from the parent route.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{roleID}", h.get)
	r.Patch("/{roleID}", h.update)
	r.Post("/{roleID}/permissions", h.addPermissions)
	r.Get("/{roleID}/permissions", h.listPermissions)
	r.Delete("/{roleID}/permissions/{permissionID}", h.removePermission)
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

type grantRequest struct {
	PermissionIDs []string `json:"permissionIds"`
}

type roleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type grantResponse struct {
	PermissionID string `json:"permissionId"`
	CreatedAt    string `json:"createdAt"`
}

func toResponse(role Role) roleResponse {
	return roleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		CreatedAt:   role.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   role.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toGrantResponses(grants []Grant) []grantResponse {
	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, grantResponse{
			PermissionID: g.PermissionID.String(),
			CreatedAt:    g.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// requestScope resolves the acting service user and the application id
// from the request, writing the rejection itself on failure.
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

	role, err := h.svc.Create(r.Context(), ownerID, appID, req.Name, req.Description)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(role))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	roles, err := h.svc.List(r.Context(), ownerID, appID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, toResponse(role))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Role not found")
		return
	}

	role, err := h.svc.Get(r.Context(), ownerID, appID, roleID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(role))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Role not found")
		return
	}

	var req updateRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	updatedAt, err := h.svc.Update(r.Context(), ownerID, appID, roleID, UpdateParams{
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

func (h *Handler) addPermissions(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Role not found")
		return
	}

	var req grantRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	permissionIDs := make([]uuid.UUID, 0, len(req.PermissionIDs))
	for _, raw := range req.PermissionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respond.BadRequest(w, fmt.Errorf("invalid permission id %q", raw))
			return
		}
		permissionIDs = append(permissionIDs, id)
	}

	grants, err := h.svc.AddPermissions(r.Context(), ownerID, appID, roleID, permissionIDs)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toGrantResponses(grants))
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Role not found")
		return
	}

	grants, err := h.svc.ListPermissions(r.Context(), ownerID, appID, roleID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toGrantResponses(grants))
}

func (h *Handler) removePermission(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Role not found")
		return
	}
	permissionID, err := uuid.Parse(chi.URLParam(r, "permissionID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Permission not found")
		return
	}

	if err := h.svc.RemovePermission(r.Context(), ownerID, appID, roleID, permissionID); err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respond.BadRequest(w, verrs)
	case errors.Is(err, ErrEmptyUpdate):
		respond.Error(w, http.StatusBadRequest, "Update requires at least one field")
	case errors.Is(err, ErrRoleNotFound):
		respond.Error(w, http.StatusNotFound, "Role not found")
	case errors.Is(err, ErrPermissionNotFound):
		respond.Error(w, http.StatusNotFound, "Permission not found")
	case errors.Is(err, ErrRoleNameTaken):
		respond.Error(w, http.StatusConflict, "Role name already exists")
	case errors.Is(err, ErrPermissionAlreadyGranted):
		respond.Error(w, http.StatusConflict, "Permission already granted to role")
	default:
		respond.InternalError(r.Context(), h.svc.log, w, err)
	}
}
