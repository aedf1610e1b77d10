// Package app holds the top-level screen state of the storefront client:
// splash, the sign-in / sign-up choice, and the authenticated home screen.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/session"
)

// DefaultSplashDuration is how long the splash screen stays up.
const DefaultSplashDuration = 5 * time.Second

var (
	// ErrBusy is returned when a sign-in or sign-up is already running on the screen.
	ErrBusy = errors.New("request already in progress")
	// ErrWrongState is returned when an action is not available on the current screen.
	ErrWrongState = errors.New("action not available on this screen")
)

// State is the top-level screen.
type State int

const (
	StateSplash State = iota
	StateLogin
	StateRegister
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateSplash:
		return "splash"
	case StateLogin:
		return "login"
	case StateRegister:
		return "register"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Section is the part of the home screen picked from the menu.
type Section int

const (
	SectionHome Section = iota
	SectionProfile
	SectionProducts
)

// Authenticator signs users in.
type Authenticator interface {
	SignIn(ctx context.Context, creds session.Credentials) (models.Profile, error)
}

// Enroller creates accounts.
type Enroller interface {
	Register(ctx context.Context, reg session.Registration) (models.Profile, error)
}

// Router is the screen state machine. Its methods are safe to call from
// several goroutines, although a terminal front end drives it from one.
type Router struct {
	auth   Authenticator
	enroll Enroller
	splash time.Duration

	mu       sync.Mutex
	state    State
	screen   uint64
	stop     context.CancelFunc
	screenCx context.Context
	busy     bool
	profile  *models.Profile
	section  Section
	selected *models.Product
}

// NewRouter returns a router on the splash screen.
func NewRouter(auth Authenticator, enroll Enroller, splash time.Duration) *Router {
	if splash <= 0 {
		splash = DefaultSplashDuration
	}
	r := &Router{auth: auth, enroll: enroll, splash: splash, state: StateSplash}
	r.screenCx, r.stop = context.WithCancel(context.Background())
	return r
}

// Run shows the splash screen for the configured duration and then moves to
// the login screen. It returns early only when ctx ends.
func (r *Router) Run(ctx context.Context) error {
	timer := time.NewTimer(r.splash)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateSplash {
		r.enter(StateLogin)
	}
	return nil
}

// State reports the current screen.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Busy reports whether a sign-in or sign-up is in flight.
func (r *Router) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// Profile returns the signed-in user, if any.
func (r *Router) Profile() (models.Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil {
		return models.Profile{}, false
	}
	return *r.profile, true
}

// ShowRegister switches from the login screen to the sign-up screen.
func (r *Router) ShowRegister() error {
	return r.switchChoice(StateLogin, StateRegister)
}

// ShowLogin switches from the sign-up screen to the login screen.
func (r *Router) ShowLogin() error {
	return r.switchChoice(StateRegister, StateLogin)
}

func (r *Router) switchChoice(from, to State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == to {
		return nil
	}
	if r.state != from {
		return ErrWrongState
	}
	r.enter(to)
	return nil
}

// SignIn authenticates on the login screen. The request is cancelled when the
// screen is left, and its outcome is applied only to the screen that issued it.
func (r *Router) SignIn(ctx context.Context, creds session.Credentials) (models.Profile, error) {
	ctx, screen, release, err := r.begin(ctx, StateLogin)
	if err != nil {
		return models.Profile{}, err
	}
	defer release()

	profile, err := r.auth.SignIn(ctx, creds)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen != screen {
		if err == nil {
			err = context.Canceled
		}
		return models.Profile{}, err
	}
	if err != nil {
		return models.Profile{}, err
	}
	r.enter(StateAuthenticated)
	r.profile = &profile
	return profile, nil
}

// Register creates an account on the sign-up screen and returns to login.
func (r *Router) Register(ctx context.Context, reg session.Registration) (models.Profile, error) {
	ctx, screen, release, err := r.begin(ctx, StateRegister)
	if err != nil {
		return models.Profile{}, err
	}
	defer release()

	profile, err := r.enroll.Register(ctx, reg)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		return models.Profile{}, err
	}
	if r.screen == screen {
		r.enter(StateLogin)
	}
	return profile, nil
}

// begin marks the screen busy and returns a context bound to both the caller
// and the lifetime of the current screen.
func (r *Router) begin(ctx context.Context, want State) (context.Context, uint64, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != want {
		return nil, 0, nil, ErrWrongState
	}
	if r.busy {
		return nil, 0, nil, ErrBusy
	}
	r.busy = true
	screen := r.screen

	ctx, cancel := context.WithCancel(ctx)
	unbind := context.AfterFunc(r.screenCx, cancel)
	release := func() {
		unbind()
		cancel()
		r.mu.Lock()
		if r.screen == screen {
			r.busy = false
		}
		r.mu.Unlock()
	}
	return ctx, screen, release, nil
}

// Navigate picks a home screen section.
func (r *Router) Navigate(s Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateAuthenticated {
		return ErrWrongState
	}
	r.section = s
	r.selected = nil
	return nil
}

// Section reports the current home section.
func (r *Router) Section() Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.section
}

// Select opens the detail view for p.
func (r *Router) Select(p models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateAuthenticated || r.section != SectionProducts {
		return ErrWrongState
	}
	r.selected = &p
	return nil
}

// Selected returns the product shown in the detail view.
func (r *Router) Selected() (models.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return models.Product{}, false
	}
	return *r.selected, true
}

// CloseDetail dismisses the detail view.
func (r *Router) CloseDetail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = nil
}

// Logout leaves the home screen for the login screen and forgets the
// profile and everything shown for it. Outside the home screen it does nothing.
func (r *Router) Logout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateAuthenticated {
		return
	}
	r.enter(StateLogin)
}

// enter switches screens, cancelling work bound to the old one and clearing
// per-session state. r.mu must be held.
func (r *Router) enter(s State) {
	r.stop()
	r.screenCx, r.stop = context.WithCancel(context.Background())
	r.screen++
	r.state = s
	r.busy = false
	r.profile = nil
	r.section = SectionHome
	r.selected = nil
}
