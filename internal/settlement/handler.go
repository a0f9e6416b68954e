package settlement

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Settle handles POST /expenses/{id}/settle
// @Summary      Settle a share
// @Description  Mark a participant's share as paid. Without user_id the caller settles their own share; the payer may settle any participant.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body SettleRequest false "Whose share to settle"
// @Success      200 {object} response.APIResponse{data=Receipt}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id}/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}

	receipt, err := h.service.SettleSplit(r.Context(), actor, chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, receipt)
}
