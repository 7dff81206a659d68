package store

import (
	"context"

	"github.com/advancetodo/api/internal/domain"
	"github.com/google/uuid"
)

// UserStore is the read side of the account collection. Accounts are created
// and edited by the account service; this process only needs contact details.
type UserStore interface {
	// FindAll returns every registered user ordered by creation time, then ID.
	// Users with malformed contact details are still returned so the caller
	// can report them.
	FindAll(ctx context.Context) ([]domain.User, error)

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
