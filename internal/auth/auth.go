// Package auth signs visitors in with email and password against an identity
// service.
package auth

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
)

// Identity is a signed-in user.
type Identity struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Provider authenticates users.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
}

// Error codes shared by the providers.
const (
	CodeEmailExists     = "EMAIL_EXISTS"
	CodeEmailNotFound   = "EMAIL_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeMissingPassword = "MISSING_PASSWORD"
	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeWeakPassword    = "WEAK_PASSWORD"
)

// Error is a rejection from the identity service. Message is shown to the
// user as is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Code returns the leading error code of Message, e.g. WEAK_PASSWORD for
// "WEAK_PASSWORD : Password should be at least 6 characters".
func (e *Error) Code() string {
	code, _, _ := strings.Cut(e.Message, " ")
	return code
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" {
		return &Error{Status: http.StatusBadRequest, Message: CodeInvalidEmail}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &Error{Status: http.StatusBadRequest, Message: CodeInvalidEmail}
	}
	if password == "" {
		return &Error{Status: http.StatusBadRequest, Message: CodeMissingPassword}
	}
	return nil
}
