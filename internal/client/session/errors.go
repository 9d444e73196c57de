package session

import (
	"errors"

	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
)

var (
	ErrLoginFailed          = errors.New("login failed")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrPasswordResetFailed  = errors.New("password reset failed")
	ErrProfileFailed        = errors.New("profile operation failed")
	ErrDeleteAccountFailed  = errors.New("account deletion failed")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrConfirmationMismatch = errors.New("confirmation text does not match")
)

// Fallback display messages used when the gateway gives none.
const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
	msgForgotFailed       = "Failed to send reset link. Please try again."
	msgResetFailed        = "Failed to reset password. Please try again."
	msgProfileLoadFailed  = "Failed to load your profile data."
	msgProfileSaveFailed  = "Failed to update profile. Please try again."
	msgDeleteFailed       = "Failed to delete account. Please try again."
	msgLoginRequired      = "Please log in to continue"
	msgConfirmDelete      = `Type "DELETE" to confirm`
)

// OpError is returned by session operations. It matches both the
// operation sentinel (ErrLoginFailed, ...) and the underlying cause with
// errors.Is, so callers can ask "did login fail?" and "was it the
// network?" of the same value.
type OpError struct {
	Op      error
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Op}
	}
	return []error{e.Op, e.Err}
}

func opError(op error, err error, fallback string) *OpError {
	return &OpError{Op: op, Message: gateway.MessageOf(err, fallback), Err: err}
}

func notAuthenticated(op string) error {
	return &gateway.Error{Kind: gateway.KindAuth, Op: op, Message: msgLoginRequired, Err: ErrNotAuthenticated}
}
