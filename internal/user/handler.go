package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for user operations
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints. Registration is public;
// everything else goes through requireActor.
func (h *Handler) Routes(requireActor func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)

	r.Group(func(r chi.Router) {
		r.Use(requireActor)
		r.Get("/me/friends", h.ListFriends)
		r.Post("/me/friends", h.AddFriend)
		r.Get("/{id}", h.GetByID)
	})

	return r
}

// Create handles POST /users
// @Summary      Create a new user
// @Description  Register a user with username and email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} response.APIResponse{data=User}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.Create(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, user)
}

// GetByID handles GET /users/{id}
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse{data=User}
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, user)
}

// ListFriends handles GET /users/me/friends
// @Summary      List my friends
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]User}
// @Security     BearerAuth
// @Router       /users/me/friends [get]
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	friends, err := h.service.ListFriends(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, friends, &response.Meta{Total: len(friends)})
}

// AddFriend handles POST /users/me/friends
// @Summary      Add a friend
// @Description  Creates a symmetric friendship with another user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body AddFriendRequest true "Friend to add"
// @Success      201 {object} response.APIResponse{data=User}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /users/me/friends [post]
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUserID(r.Context())

	var req AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	friend, err := h.service.AddFriend(r.Context(), actor, req.FriendID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, friend)
}
