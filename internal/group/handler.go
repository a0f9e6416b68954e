package group

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the group endpoints to r so ledger views of a group
// can share the /groups prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Archive)

	// Member management
	r.Post("/{id}/members", h.AddMember)
	r.Delete("/{id}/members/{userId}", h.RemoveMember)
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group; the creator becomes its admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=Group}
// @Failure      400 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, group)
}

// List handles GET /groups
// @Summary      List my groups
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Group}
// @Security     BearerAuth
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	groups, err := h.service.List(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, groups, &response.Meta{Total: len(groups)})
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Description  Get a group with its members; members only
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=Group}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	group, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, group)
}

// Update handles PUT /groups/{id}
// @Summary      Update a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=Group}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, group)
}

// Archive handles DELETE /groups/{id}
// @Summary      Archive a group
// @Description  Soft-deletes a group; admins only. Archived groups reject new expenses.
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id} [delete]
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	if err := h.service.Archive(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, http.StatusOK, "Group archived successfully")
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add member to group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      201 {object} response.APIResponse{data=Group}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.AddMember(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, group)
}

// RemoveMember handles DELETE /groups/{id}/members/{userId}
// @Summary      Remove member from group
// @Description  Admins remove members; any member may remove themselves
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        userId path string true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	err := h.service.RemoveMember(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, http.StatusOK, "Member removed successfully")
}
