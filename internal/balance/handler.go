package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for balance queries
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{userId}", h.WithUser)

	return r
}

// List handles GET /balances
// @Summary      Get my net balances
// @Description  Net balance against every user I share unsettled expenses with. Positive means they owe me.
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]NetBalance}
// @Security     BearerAuth
// @Router       /balances [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	balances, err := h.service.All(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, balances, &response.Meta{Total: len(balances)})
}

// WithUser handles GET /balances/{userId}
// @Summary      Get net balance with a user
// @Tags         balances
// @Produce      json
// @Param        userId path string true "Other user ID"
// @Success      200 {object} response.APIResponse{data=NetBalance}
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /balances/{userId} [get]
func (h *Handler) WithUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	balance, err := h.service.WithUser(r.Context(), actor, chi.URLParam(r, "userId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, balance)
}

// GroupBalances handles GET /groups/{id}/balances
// @Summary      Get group balances
// @Description  Every member's net position plus suggested transfers that settle the group
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupBalanceResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/balances [get]
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	balances, err := h.service.ForGroup(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, balances)
}
