package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID  = errors.New("user ID cannot be empty")
	ErrInvalidEmail = errors.New("invalid email format")
	ErrEmptyEmail   = errors.New("email cannot be empty")
)

// defaultDisplayName is used in greetings when a user never set a name.
const defaultDisplayName = "User"

// User represents a registered user. Users are created by the external
// registration flow and are read-only for the reminder service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name to greet the user with.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return defaultDisplayName
	}
	return u.Name
}

// ValidateContact checks that the user can be emailed.
func (u *User) ValidateContact() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// validateEmailFormat accepts a bare RFC 5322 address with a dotted domain.
func validateEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domainPart := email[strings.LastIndex(email, "@")+1:]
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
