package expense

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the expense endpoints to r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Record a shared expense split equally, by explicit amounts (custom) or by percentage
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=Expense}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, expense)
}

// List handles GET /expenses
// @Summary      List my expenses
// @Description  Every expense the caller created, paid or participates in
// @Tags         expenses
// @Produce      json
// @Param        group_id query string false "Only expenses of this group"
// @Success      200 {object} response.APIResponse{data=[]Expense}
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	expenses, err := h.service.List(r.Context(), actor, r.URL.Query().Get("group_id"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	writeList(w, expenses)
}

// ListByGroup handles GET /groups/{id}/expenses
// @Summary      List group expenses
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]Expense}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/expenses [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	expenses, err := h.service.ListByGroup(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	writeList(w, expenses)
}

func writeList(w http.ResponseWriter, expenses []*Expense) {
	if expenses == nil {
		expenses = []*Expense{}
	}
	response.JSONWithMeta(w, http.StatusOK, expenses, &response.Meta{Total: len(expenses)})
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=Expense}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	expense, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, expense)
}

// Update handles PUT /expenses/{id}
// @Summary      Update an expense
// @Description  Creator or payer only, and only while the expense is not fully settled
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=Expense}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, expense)
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Creator or payer only
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, http.StatusOK, "Expense deleted successfully")
}
