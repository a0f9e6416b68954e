// Package apperr defines the error kinds shared by the ledger packages.
// Handlers map kinds to HTTP status codes; services wrap kinds with context.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorizedSplit = errors.New("split not authorized")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadySettled    = errors.New("share already settled")
	ErrConflict          = errors.New("conflict")
	ErrUnauthenticated   = errors.New("authentication required")
)

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field    string
	Message  string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Field, e.Message)
	if e.Expected != "" || e.Actual != "" {
		msg += fmt.Sprintf(" (expected %s, got %s)", e.Expected, e.Actual)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Mismatch builds a ValidationError carrying expected and actual values.
func Mismatch(field, message, expected, actual string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Expected: expected, Actual: actual}
}

// AuthCode identifies which eligibility rule rejected a split.
type AuthCode string

const (
	NotMember              AuthCode = "NOT_MEMBER"
	PayerNotMember         AuthCode = "PAYER_NOT_MEMBER"
	ParticipantsNotMembers AuthCode = "PARTICIPANTS_NOT_MEMBERS"
	PayerNotFriend         AuthCode = "PAYER_NOT_FRIEND"
	ParticipantNotEligible AuthCode = "PARTICIPANT_NOT_ELIGIBLE"
)

var authMessages = map[AuthCode]string{
	NotMember:              "you are not a member of this group",
	PayerNotMember:         "payer must be a member of the group",
	ParticipantsNotMembers: "all participants must be members of the group",
	PayerNotFriend:         "payer must be you or one of your friends",
	ParticipantNotEligible: "participant must be you, the payer, or one of your friends",
}

// AuthError reports that the actor may not split an expense with the given
// payer and participants.
type AuthError struct {
	Code     AuthCode
	Identity string
}

func (e *AuthError) Error() string {
	msg := authMessages[e.Code]
	if e.Identity != "" {
		return fmt.Sprintf("%s: %s", msg, e.Identity)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return ErrUnauthorizedSplit }

// Forbidden wraps ErrForbidden with a reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// NotFound wraps ErrNotFound with the missing resource name.
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthorizedSplit):
		return "auth"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrAlreadySettled):
		return "already_settled"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "internal"
	}
}
