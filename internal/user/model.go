package user

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fkhayef/splitledger/internal/apperr"
)

const maxUsernameLength = 50

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// normalize trims the request and checks username and email
func (req *CreateUserRequest) normalize() error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" {
		return apperr.Invalid("username", "username is required")
	}
	if utf8.RuneCountInString(req.Username) > maxUsernameLength {
		return apperr.Invalid("username", "username must be at most 50 characters")
	}
	if req.Email == "" {
		return apperr.Invalid("email", "email is required")
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return apperr.Invalid("email", "email is not a valid address")
	}
	return nil
}
