package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/storage"
)

// Registration is the sign-up form.
type Registration struct {
	FirstName    string
	LastName     string
	Email        string
	MobileNumber string
	Password     string
}

// Validate checks every field of the form and returns the first problem.
func (r Registration) Validate() error {
	if err := requireField("firstname", r.FirstName); err != nil {
		return err
	}
	if err := requireField("lastname", r.LastName); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if err := requireField("mobile_number", r.MobileNumber); err != nil {
		return err
	}
	return validatePassword(r.Password)
}

// Registrar creates accounts.
type Registrar struct {
	store storage.UserStore
	log   logging.Logger
	hash  func(string) (string, error)
}

// NewRegistrar builds a Registrar over store.
func NewRegistrar(store storage.UserStore, log logging.Logger) *Registrar {
	return &Registrar{store: store, log: log, hash: auth.HashPassword}
}

// Register validates the form, hashes the password and stores the new user.
func (r *Registrar) Register(ctx context.Context, reg Registration) (models.Profile, error) {
	if err := reg.Validate(); err != nil {
		return models.Profile{}, err
	}

	hash, err := r.hash(reg.Password)
	if err != nil {
		return models.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := r.store.CreateUser(ctx, models.User{
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		Email:        NormalizeEmail(reg.Email),
		MobileNumber: strings.TrimSpace(reg.MobileNumber),
		PasswordHash: hash,
	})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrAlreadyExists):
		return models.Profile{}, ErrAccountExists
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.Profile{}, err
	default:
		r.log.Error(ctx, "create user failed", "error", err)
		return models.Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	r.log.Info(ctx, "user registered", "user_id", created.ID)
	return created.Profile(), nil
}
