package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/storefront/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrAmbiguous indicates a lookup that must match one row matched several.
var ErrAmbiguous = errors.New("more than one record matches")

// UserStore captures persistence operations needed by the account services.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	// FindByEmail expects an already normalized (trimmed, lowercased) email and
	// returns ErrNotFound for zero matches and ErrAmbiguous for more than one.
	FindByEmail(ctx context.Context, email string) (models.User, error)
}
