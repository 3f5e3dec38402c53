package user

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

// Handler exposes the user routes nested under
// /applications/{applicationID}/users.
type Handler struct {
	svc *Service
}

// NewHandler creates the user HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the users subrouter, including the user-role join routes
// and the permission resolver. The applicationID path parameter comes
// from the parent route.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{userID}", h.get)
	r.Patch("/{userID}", h.update)
	r.Post("/{userID}/roles", h.addRoles)
	r.Get("/{userID}/roles", h.listRoles)
	r.Delete("/{userID}/roles/{roleID}", h.removeRole)
	r.Get("/{userID}/permissions", h.resolvePermissions)
	return r
}

type createRequest struct {
	Name string `json:"name"`
}

type updateRequest struct {
	Name *string `json:"name"`
}

type assignRequest struct {
	RoleIDs []string `json:"roleIds"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type assignmentResponse struct {
	RoleID    string `json:"roleId"`
	CreatedAt string `json:"createdAt"`
}

type assignedRoleResponse struct {
	RoleID    string `json:"roleId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type grantResponse struct {
	PermissionID string `json:"permissionId"`
	Name         string `json:"name"`
	GrantedAt    string `json:"grantedAt"`
}

func toResponse(usr User) userResponse {
	return userResponse{
		ID:        usr.ID.String(),
		Name:      usr.Name,
		CreatedAt: usr.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: usr.UpdatedAt.UTC().Format(time.RFC3339),
	}
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

	usr, err := h.svc.Create(r.Context(), ownerID, appID, req.Name)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(usr))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	users, err := h.svc.List(r.Context(), ownerID, appID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, usr := range users {
		out = append(out, toResponse(usr))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}

	usr, err := h.svc.Get(r.Context(), ownerID, appID, userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(usr))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}

	var req updateRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	updatedAt, err := h.svc.Update(r.Context(), ownerID, appID, userID, UpdateParams{Name: req.Name})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"updatedAt": updatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) addRoles(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}

	var req assignRequest
	if err := binder.JSON(r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	roleIDs := make([]uuid.UUID, 0, len(req.RoleIDs))
	for _, raw := range req.RoleIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respond.BadRequest(w, fmt.Errorf("invalid role id %q", raw))
			return
		}
		roleIDs = append(roleIDs, id)
	}

	assignments, err := h.svc.AddRoles(r.Context(), ownerID, appID, userID, roleIDs)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, assignmentResponse{
			RoleID:    a.RoleID.String(),
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	respond.JSON(w, http.StatusCreated, out)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}

	roles, err := h.svc.ListRoles(r.Context(), ownerID, appID, userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]assignedRoleResponse, 0, len(roles))
	for _, ar := range roles {
		out = append(out, assignedRoleResponse{
			RoleID:    ar.RoleID.String(),
			Name:      ar.Name,
			CreatedAt: ar.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Role not found")
		return
	}

	if err := h.svc.RemoveRole(r.Context(), ownerID, appID, userID, roleID); err != nil {
		h.renderError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) resolvePermissions(w http.ResponseWriter, r *http.Request) {
	ownerID, appID, ok := requestScope(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}

	grants, err := h.svc.ResolvePermissions(r.Context(), ownerID, appID, userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, grantResponse{
			PermissionID: g.PermissionID.String(),
			Name:         g.Name,
			GrantedAt:    g.GrantedAt.UTC().Format(time.RFC3339),
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respond.BadRequest(w, verrs)
	case errors.Is(err, ErrEmptyUpdate):
		respond.Error(w, http.StatusBadRequest, "Update requires at least one field")
	case errors.Is(err, ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrRoleNotFound):
		respond.Error(w, http.StatusNotFound, "Role not found")
	case errors.Is(err, ErrRoleAlreadyAssigned):
		respond.Error(w, http.StatusConflict, "Role already assigned to user")
	default:
		respond.InternalError(r.Context(), h.svc.log, w, err)
	}
}
