package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fkhayef/splitledger/internal/apperr"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Meta contains listing metadata
type Meta struct {
	Total int `json:"total"`
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// JSONWithMeta sends a JSON response with listing metadata
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

// Message sends a successful response that only carries a message
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Message: message,
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "FORBIDDEN", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

// FromError maps a ledger error to its HTTP status. Unknown errors become a
// generic 500 so internal details are not leaked.
func FromError(w http.ResponseWriter, err error) {
	var (
		ve *apperr.ValidationError
		ae *apperr.AuthError
	)
	switch {
	case errors.As(err, &ve):
		write(w, http.StatusBadRequest, APIResponse{
			Message: ve.Error(),
			Error:   &APIError{Code: "VALIDATION_ERROR", Message: ve.Error(), Field: ve.Field},
		})
	case errors.As(err, &ae):
		status := http.StatusBadRequest
		if ae.Code == apperr.NotMember {
			status = http.StatusForbidden
		}
		Error(w, status, string(ae.Code), ae.Error())
	case errors.Is(err, apperr.ErrValidation):
		Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, apperr.ErrAlreadySettled):
		Error(w, http.StatusBadRequest, "ALREADY_SETTLED", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		Conflict(w, err.Error())
	case errors.Is(err, apperr.ErrUnauthenticated):
		Unauthorized(w, err.Error())
	default:
		InternalError(w, "Internal server error")
	}
}
