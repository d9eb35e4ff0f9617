package models

import (
	"net/mail"
	"strconv"
	"strings"
)

const (
	// DefaultAge is used when registration omits the age field.
	DefaultAge = 18

	minPasswordLength = 6
	maxAge            = 100
)

// ValidationError reports a field that failed input validation. Handlers
// map it to a 400 response with the message as detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Email is a normalized, syntactically valid email address. Values are
// trimmed and lowercased so the unique index on users.email is effectively
// case-insensitive.
type Email string

func NewEmail(value string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", &ValidationError{Field: "email", Message: "email is required"}
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", &ValidationError{Field: "email", Message: "email is invalid"}
	}
	return Email(v), nil
}

func (e Email) String() string {
	return string(e)
}

// Password is a validated plaintext password. It only exists between request
// decoding and hashing; the stored form is always the Argon2id hash.
type Password string

func NewPassword(value string) (Password, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", &ValidationError{Field: "password", Message: "password is required"}
	}
	if len(v) < minPasswordLength {
		return "", &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	if strings.Contains(strings.ToLower(v), "password") {
		return "", &ValidationError{Field: "password", Message: `password cannot contain the string "password"`}
	}
	return Password(v), nil
}

func (p Password) String() string {
	return string(p)
}

// NewAge validates a user's age against the accepted 0-100 range.
func NewAge(value int) (int, error) {
	if value < 0 {
		return 0, &ValidationError{Field: "age", Message: "age cannot be negative"}
	}
	if value > maxAge {
		return 0, &ValidationError{Field: "age", Message: "age must be at most " + strconv.Itoa(maxAge)}
	}
	return value, nil
}

// NewName validates and trims a user's display name.
func NewName(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", &ValidationError{Field: "name", Message: "name is required"}
	}
	return v, nil
}

// NewDescription validates and trims a task description.
func NewDescription(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", &ValidationError{Field: "description", Message: "description is required"}
	}
	return v, nil
}
