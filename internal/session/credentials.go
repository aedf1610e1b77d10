package session

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/storefront/internal/auth"
)

// MinPasswordLength is the shortest password accepted at sign-in and registration.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Credentials is the raw input of one sign-in attempt.
type Credentials struct {
	Email    string
	Password string
}

// String keeps passwords out of logs and %v output.
func (c Credentials) String() string {
	return "Credentials{Email: " + c.Email + ", Password: [redacted]}"
}

// Validate checks the email shape and password length.
func (c Credentials) Validate() error {
	if err := validateEmail(c.Email); err != nil {
		return err
	}
	return validatePassword(c.Password)
}

// NormalizeEmail trims and lowercases an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !emailPattern.MatchString(trimmed) {
		return &ValidationError{Field: "email", Reason: "email format is invalid"}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Reason: "password is required"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Reason: "password must be at least 6 characters"}
	}
	if len(password) > auth.MaxPasswordBytes {
		return &ValidationError{Field: "password", Reason: "password must be at most 72 bytes"}
	}
	return nil
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: field + " is required"}
	}
	return nil
}
