package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/session"
)

var jane = models.Profile{ID: 1, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}

// fakeAuth answers from a fixed result; when gate is set it waits for it first.
type fakeAuth struct {
	profile models.Profile
	err     error
	gate    chan struct{}
	entered chan struct{}
	calls   int
}

func (f *fakeAuth) SignIn(ctx context.Context, _ session.Credentials) (models.Profile, error) {
	f.calls++
	if f.entered != nil {
		close(f.entered)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return models.Profile{}, ctx.Err()
		}
	}
	return f.profile, f.err
}

type fakeEnroll struct {
	err error
	got session.Registration
}

func (f *fakeEnroll) Register(_ context.Context, reg session.Registration) (models.Profile, error) {
	f.got = reg
	if f.err != nil {
		return models.Profile{}, f.err
	}
	return models.Profile{ID: 2, Email: reg.Email}, nil
}

func loginRouter(t *testing.T, auth Authenticator) *Router {
	t.Helper()
	r := NewRouter(auth, &fakeEnroll{}, time.Millisecond)
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, StateLogin, r.State())
	return r
}

func signedInRouter(t *testing.T) *Router {
	t.Helper()
	r := loginRouter(t, &fakeAuth{profile: jane})
	_, err := r.SignIn(context.Background(), session.Credentials{Email: jane.Email, Password: "secret1"})
	require.NoError(t, err)
	return r
}

func TestRouter_StartsOnSplash(t *testing.T) {
	r := NewRouter(&fakeAuth{}, &fakeEnroll{}, 0)
	assert.Equal(t, StateSplash, r.State())
	assert.Equal(t, DefaultSplashDuration, r.splash)

	_, err := r.SignIn(context.Background(), session.Credentials{})
	require.ErrorIs(t, err, ErrWrongState)
	require.ErrorIs(t, r.ShowRegister(), ErrWrongState)
}

func TestRouter_SplashWaitsForTimer(t *testing.T) {
	r := NewRouter(&fakeAuth{}, &fakeEnroll{}, 30*time.Millisecond)
	start := time.Now()
	require.NoError(t, r.Run(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, StateLogin, r.State())
}

func TestRouter_SplashStopsWithContext(t *testing.T) {
	r := NewRouter(&fakeAuth{}, &fakeEnroll{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, r.Run(ctx), context.Canceled)
	assert.Equal(t, StateSplash, r.State())
}

func TestRouter_SwitchAuthChoice(t *testing.T) {
	r := loginRouter(t, &fakeAuth{})

	require.NoError(t, r.ShowRegister())
	assert.Equal(t, StateRegister, r.State())
	require.NoError(t, r.ShowRegister())
	assert.Equal(t, StateRegister, r.State())

	require.NoError(t, r.ShowLogin())
	assert.Equal(t, StateLogin, r.State())
}

func TestRouter_SignInSuccess(t *testing.T) {
	r := signedInRouter(t)

	assert.Equal(t, StateAuthenticated, r.State())
	p, ok := r.Profile()
	require.True(t, ok)
	assert.Equal(t, jane, p)
	assert.Equal(t, SectionHome, r.Section())
	assert.False(t, r.Busy())
}

func TestRouter_SignInFailureStaysOnLogin(t *testing.T) {
	r := loginRouter(t, &fakeAuth{err: session.ErrInvalidCredentials})

	_, err := r.SignIn(context.Background(), session.Credentials{Email: jane.Email, Password: "wrong12"})
	require.ErrorIs(t, err, session.ErrInvalidCredentials)
	assert.Equal(t, StateLogin, r.State())
	_, ok := r.Profile()
	assert.False(t, ok)
	assert.False(t, r.Busy())
}

func TestRouter_RejectsOverlappingSignIn(t *testing.T) {
	auth := &fakeAuth{profile: jane, gate: make(chan struct{}), entered: make(chan struct{})}
	r := loginRouter(t, auth)

	done := make(chan error, 1)
	go func() {
		_, err := r.SignIn(context.Background(), session.Credentials{})
		done <- err
	}()
	<-auth.entered
	assert.True(t, r.Busy())

	_, err := r.SignIn(context.Background(), session.Credentials{})
	require.ErrorIs(t, err, ErrBusy)

	close(auth.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, StateAuthenticated, r.State())
}

func TestRouter_LeavingScreenCancelsSignIn(t *testing.T) {
	auth := &fakeAuth{profile: jane, gate: make(chan struct{}), entered: make(chan struct{})}
	r := loginRouter(t, auth)

	done := make(chan error, 1)
	go func() {
		_, err := r.SignIn(context.Background(), session.Credentials{})
		done <- err
	}()
	<-auth.entered
	require.NoError(t, r.ShowRegister())

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sign-in was not cancelled when the screen was left")
	}
	assert.Equal(t, StateRegister, r.State())
	_, ok := r.Profile()
	assert.False(t, ok)
	assert.False(t, r.Busy())
}

func TestRouter_Register(t *testing.T) {
	enroll := &fakeEnroll{}
	r := NewRouter(&fakeAuth{}, enroll, time.Millisecond)
	require.NoError(t, r.Run(context.Background()))
	require.NoError(t, r.ShowRegister())

	reg := session.Registration{Email: "new@example.com"}
	p, err := r.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", p.Email)
	assert.Equal(t, reg, enroll.got)
	assert.Equal(t, StateLogin, r.State())
}

func TestRouter_RegisterFailureStays(t *testing.T) {
	r := NewRouter(&fakeAuth{}, &fakeEnroll{err: session.ErrAccountExists}, time.Millisecond)
	require.NoError(t, r.Run(context.Background()))
	require.NoError(t, r.ShowRegister())

	_, err := r.Register(context.Background(), session.Registration{})
	require.True(t, errors.Is(err, session.ErrAccountExists))
	assert.Equal(t, StateRegister, r.State())

	require.NoError(t, r.ShowLogin())
	_, err = r.Register(context.Background(), session.Registration{})
	require.ErrorIs(t, err, ErrWrongState)
}

func TestRouter_HomeSections(t *testing.T) {
	r := signedInRouter(t)
	product := models.Product{ID: 3, Title: "Jacket"}

	require.ErrorIs(t, r.Select(product), ErrWrongState)
	require.NoError(t, r.Navigate(SectionProducts))
	require.NoError(t, r.Select(product))
	got, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, product, got)

	r.CloseDetail()
	_, ok = r.Selected()
	assert.False(t, ok)

	require.NoError(t, r.Select(product))
	require.NoError(t, r.Navigate(SectionProfile))
	_, ok = r.Selected()
	assert.False(t, ok)
}

func TestRouter_LogoutClearsSession(t *testing.T) {
	r := signedInRouter(t)
	require.NoError(t, r.Navigate(SectionProducts))
	require.NoError(t, r.Select(models.Product{ID: 3}))

	r.Logout()

	assert.Equal(t, StateLogin, r.State())
	_, ok := r.Profile()
	assert.False(t, ok)
	_, ok = r.Selected()
	assert.False(t, ok)
	assert.Equal(t, SectionHome, r.Section())
	require.ErrorIs(t, r.Navigate(SectionProfile), ErrWrongState)
}

func TestRouter_LogoutIsNoOpOutsideHome(t *testing.T) {
	r := loginRouter(t, &fakeAuth{})
	r.Logout()
	assert.Equal(t, StateLogin, r.State())

	require.NoError(t, r.ShowRegister())
	r.Logout()
	assert.Equal(t, StateRegister, r.State())

	r.Logout()
	assert.Equal(t, StateRegister, r.State())

	splash := NewRouter(&fakeAuth{}, &fakeEnroll{}, time.Hour)
	splash.Logout()
	assert.Equal(t, StateSplash, splash.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "splash", StateSplash.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "state(9)", State(9).String())
}
