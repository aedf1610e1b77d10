// Package memory is an in-process UserStore used by tests and local runs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps users in a slice guarded by a mutex. Emails are compared
// case-insensitively, matching the unique index of the Postgres schema.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	users   []models.User
	queries int
}

// NewUserStore returns an empty store.
func NewUserStore() *Store {
	return &Store{nextID: 1}
}

// CreateUser inserts a new user, assigning ID and CreatedAt.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = s.nextID
	s.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users = append(s.users, user)
	return user, nil
}

// Insert adds a user without the uniqueness check, for seeding broken data in tests.
func (s *Store) Insert(user models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	s.users = append(s.users, user)
	return user
}

// FindByEmail returns the single user whose email matches.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	s.queries++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found models.User
		n     int
	)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found = u
			n++
			if n > 1 {
				return models.User{}, storage.ErrAmbiguous
			}
		}
	}
	if n == 0 {
		return models.User{}, storage.ErrNotFound
	}
	return found, nil
}

// Queries reports how many lookups have been issued.
func (s *Store) Queries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries
}
