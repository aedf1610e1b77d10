// Package session verifies credentials against the user store and turns a
// matching record into an authenticated profile.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/storage"
)

// dummyHash is compared against when no account matches, so both failure
// paths spend one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	hash, err := auth.HashPassword("storefront-placeholder-password")
	if err != nil {
		return ""
	}
	return hash
})

// Establisher signs users in. It is safe for concurrent use.
type Establisher struct {
	store  storage.UserStore
	log    logging.Logger
	verify func(candidate, storedHash string) bool
	flight singleflight.Group
}

// NewEstablisher builds an Establisher over store.
func NewEstablisher(store storage.UserStore, log logging.Logger) *Establisher {
	return &Establisher{
		store:  store,
		log:    log,
		verify: auth.VerifyPassword,
	}
}

// SignIn validates creds, looks the account up by normalized email and
// verifies the password. Unknown accounts and wrong passwords both yield
// ErrInvalidCredentials; a failing store yields ErrUnavailable.
//
// Concurrent calls with identical credentials share a single lookup. Each
// caller stops waiting when its own ctx is done, and a caller whose shared
// lookup was cancelled by another caller's ctx runs the lookup again.
func (e *Establisher) SignIn(ctx context.Context, creds Credentials) (models.Profile, error) {
	if err := creds.Validate(); err != nil {
		return models.Profile{}, err
	}

	email := NormalizeEmail(creds.Email)
	key := flightKey(email, creds.Password)
	for {
		var led bool
		ch := e.flight.DoChan(key, func() (any, error) {
			led = true
			return e.establish(ctx, email, creds.Password)
		})

		select {
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(models.Profile), nil
			}
			if !led && isContextErr(res.Err) && ctx.Err() == nil {
				e.log.Debug(ctx, "shared sign-in cancelled by another caller, retrying", "email", email)
				continue
			}
			return models.Profile{}, res.Err
		case <-ctx.Done():
			return models.Profile{}, ctx.Err()
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *Establisher) establish(ctx context.Context, email, password string) (models.Profile, error) {
	user, err := e.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		e.verify(password, dummyHash())
		e.log.Info(ctx, "sign-in rejected", "email", email, "reason", "unknown account")
		return models.Profile{}, ErrInvalidCredentials
	case errors.Is(err, storage.ErrAmbiguous):
		e.verify(password, dummyHash())
		e.log.Warn(ctx, "sign-in rejected", "email", email, "reason", "duplicate account rows")
		return models.Profile{}, ErrInvalidCredentials
	case isContextErr(err):
		return models.Profile{}, err
	default:
		e.log.Error(ctx, "sign-in lookup failed", "email", email, "error", err)
		return models.Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !e.verify(password, user.PasswordHash) {
		e.log.Info(ctx, "sign-in rejected", "email", email, "reason", "password mismatch")
		return models.Profile{}, ErrInvalidCredentials
	}

	e.log.Debug(ctx, "sign-in accepted", "user_id", user.ID)
	return user.Profile(), nil
}

func flightKey(email, password string) string {
	sum := sha256.Sum256([]byte(email + "\x00" + password))
	return hex.EncodeToString(sum[:])
}
