// Package tui is the terminal front end of the storefront: it renders the
// screens of an app.Router and feeds user input back into it.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hongminglow/storefront/internal/app"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/session"
)

const banner = `
  +----------------------+
  |      STOREFRONT      |
  +----------------------+
`

var errQuit = errors.New("quit")

// PasswordReader reads a password without echoing it.
type PasswordReader func() (string, error)

// ProductLister loads the catalog.
type ProductLister interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// UI drives a Router from line-based input.
type UI struct {
	router       *app.Router
	products     ProductLister
	in           *bufio.Scanner
	out          io.Writer
	readPassword PasswordReader
	log          logging.Logger
}

// New builds a UI. When readPassword is nil passwords are read as plain lines from in.
func New(router *app.Router, products ProductLister, in io.Reader, out io.Writer, readPassword PasswordReader, log logging.Logger) *UI {
	return &UI{
		router:       router,
		products:     products,
		in:           bufio.NewScanner(in),
		out:          out,
		readPassword: readPassword,
		log:          log,
	}
}

// Run shows the splash screen and then loops over screens until the user
// quits, input ends, or ctx is done.
func (u *UI) Run(ctx context.Context) error {
	fmt.Fprint(u.out, banner)
	if err := u.router.Run(ctx); err != nil {
		return err
	}

	for ctx.Err() == nil {
		var err error
		switch u.router.State() {
		case app.StateLogin:
			err = u.loginScreen(ctx)
		case app.StateRegister:
			err = u.registerScreen(ctx)
		case app.StateAuthenticated:
			err = u.homeScreen(ctx)
		default:
			return fmt.Errorf("unexpected screen %s", u.router.State())
		}
		if errors.Is(err, errQuit) {
			fmt.Fprintln(u.out, "Bye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (u *UI) loginScreen(ctx context.Context) error {
	fmt.Fprintln(u.out, "\n== Sign in ==  (r: sign up, q: quit)")
	email, err := u.prompt("Email: ")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(email)) {
	case "q":
		return errQuit
	case "r":
		return u.router.ShowRegister()
	}

	password, err := u.password("Password: ")
	if err != nil {
		return err
	}

	fmt.Fprintln(u.out, "Signing in...")
	profile, err := u.router.SignIn(ctx, session.Credentials{Email: email, Password: password})
	if err != nil {
		u.report("Login failed", err)
		return nil
	}
	fmt.Fprintf(u.out, "Signed in successfully.\n")
	u.log.Debug(ctx, "signed in", "user_id", profile.ID)
	return nil
}

func (u *UI) registerScreen(ctx context.Context) error {
	fmt.Fprintln(u.out, "\n== Sign up ==  (b: back to sign in, q: quit)")
	first, err := u.prompt("First name: ")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(first)) {
	case "q":
		return errQuit
	case "b":
		return u.router.ShowLogin()
	}

	var reg session.Registration
	reg.FirstName = first
	fields := []struct {
		label string
		dst   *string
	}{
		{"Last name: ", &reg.LastName},
		{"Email: ", &reg.Email},
		{"Mobile number: ", &reg.MobileNumber},
	}
	for _, f := range fields {
		if *f.dst, err = u.prompt(f.label); err != nil {
			return err
		}
	}
	if reg.Password, err = u.password("Password: "); err != nil {
		return err
	}

	if _, err := u.router.Register(ctx, reg); err != nil {
		u.report("Sign up failed", err)
		return nil
	}
	fmt.Fprintln(u.out, "Account created. You can sign in now.")
	return nil
}

func (u *UI) homeScreen(ctx context.Context) error {
	profile, ok := u.router.Profile()
	if !ok {
		return nil
	}

	switch u.router.Section() {
	case app.SectionHome:
		fmt.Fprintf(u.out, "\nWelcome, %s!\n", profile.FirstName)
	case app.SectionProfile:
		u.renderProfile(profile)
	case app.SectionProducts:
		if err := u.productsScreen(ctx); err != nil {
			return err
		}
		if u.router.State() != app.StateAuthenticated {
			return nil
		}
	}

	fmt.Fprintln(u.out, "\nMenu: 1) Home  2) Profile  3) Products  4) Logout  q) Quit")
	choice, err := u.prompt("> ")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "1":
		return u.router.Navigate(app.SectionHome)
	case "2":
		return u.router.Navigate(app.SectionProfile)
	case "3":
		return u.router.Navigate(app.SectionProducts)
	case "4":
		u.router.Logout()
		fmt.Fprintln(u.out, "Signed out.")
	case "q":
		return errQuit
	default:
		fmt.Fprintln(u.out, "Unknown option.")
	}
	return nil
}

func (u *UI) renderProfile(p models.Profile) {
	fmt.Fprintln(u.out, "\n== Profile ==")
	fmt.Fprintf(u.out, "%s\n", p.FullName())
	if p.AvatarURL != "" {
		fmt.Fprintf(u.out, "Avatar: %s\n", p.AvatarURL)
	}
	fmt.Fprintf(u.out, "Email:  %s\n", p.Email)
	fmt.Fprintf(u.out, "Mobile: %s\n", p.MobileNumber)
}

func (u *UI) productsScreen(ctx context.Context) error {
	fmt.Fprintln(u.out, "\nLoading products...")
	products, err := u.products.Products(ctx)
	if err != nil {
		u.log.Error(ctx, "load products", "error", err)
		fmt.Fprintln(u.out, "Could not load products, try again later.")
		return nil
	}

	fmt.Fprintln(u.out, "== Products ==")
	for i, p := range products {
		fmt.Fprintf(u.out, "%2d. %s  $%.2f\n", i+1, p.Title, p.Price)
	}

	answer, err := u.prompt("Product number for details (enter for menu): ")
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(answer))
	if convErr != nil || n < 1 || n > len(products) {
		return nil
	}
	if err := u.router.Select(products[n-1]); err != nil {
		return err
	}
	return u.detailScreen()
}

func (u *UI) detailScreen() error {
	p, ok := u.router.Selected()
	if !ok {
		return nil
	}
	defer u.router.CloseDetail()

	for {
		fmt.Fprintf(u.out, "\n== %s ==\n%s\nImage: %s\n$%.2f\n", p.Title, p.Description, p.Image, p.Price)
		fmt.Fprintln(u.out, "a) Add to cart  c) Close")
		choice, err := u.prompt("> ")
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "a":
			fmt.Fprintln(u.out, "Added to cart.")
		case "c", "":
			return nil
		}
	}
}

// report prints a failure the way the sign-in and sign-up screens show it.
func (u *UI) report(title string, err error) {
	var ve *session.ValidationError
	switch {
	case errors.As(err, &ve):
		fmt.Fprintf(u.out, "Validation: %s\n", ve.Reason)
	case errors.Is(err, session.ErrInvalidCredentials):
		fmt.Fprintf(u.out, "%s: %s\n", title, session.ErrInvalidCredentials)
	case errors.Is(err, session.ErrAccountExists):
		fmt.Fprintf(u.out, "%s: an account with this email already exists\n", title)
	case errors.Is(err, app.ErrBusy):
		fmt.Fprintf(u.out, "%s: please wait for the current request\n", title)
	default:
		fmt.Fprintf(u.out, "%s: service unavailable, try again\n", title)
	}
}

func (u *UI) prompt(label string) (string, error) {
	fmt.Fprint(u.out, label)
	if !u.in.Scan() {
		if err := u.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return u.in.Text(), nil
}

func (u *UI) password(label string) (string, error) {
	if u.readPassword == nil {
		return u.prompt(label)
	}
	fmt.Fprint(u.out, label)
	pw, err := u.readPassword()
	fmt.Fprintln(u.out)
	return pw, err
}
