package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure so callers do not match on strings.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindUnknown    Kind = "unknown"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

const networkMessage = "Network error, please try again"

// Error is the normalised failure of a gateway call.
type Error struct {
	Kind      Kind
	Op        string
	Status    int
	Message   string
	Fields    map[string]string
	RequestID string
	Err       error
}

// Error returns the display message. Diagnostic detail (op, status,
// request id, cause) is logged by the transport and kept in the fields.
func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Kind == KindNetwork:
		return networkMessage
	case e.Status != 0:
		return fmt.Sprintf("Request failed with status code %d", e.Status)
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind) + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps kinds onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// NewValidationError builds a validation failure detected on the client
// side, before any request is sent.
func NewValidationError(op string, fields map[string]string) *Error {
	msg := "Invalid input"
	if len(fields) == 1 {
		for _, m := range fields {
			msg = m
		}
	} else if len(fields) > 1 {
		msg = fmt.Sprintf("Invalid input (%d fields)", len(fields))
	}
	return &Error{Kind: KindValidation, Op: op, Message: msg, Fields: fields}
}

// NewAuthError reports a call that needs credentials the caller does not have.
func NewAuthError(op, message string) *Error {
	return &Error{Kind: KindAuth, Op: op, Message: message}
}

// KindOf returns the Kind of err, KindUnknown for foreign errors and ""
// for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// MessageOf returns the server-provided message of err when there is one,
// otherwise fallback. Network failures never carry a server message.
func MessageOf(err error, fallback string) string {
	var ge *Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return fallback
}
