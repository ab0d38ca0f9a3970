// Package apperr classifies storage and validation failures into the fixed
// taxonomy the HTTP layer turns into responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the taxonomy bucket of a failure.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUserExists      Kind = "user_exists"
	KindValidation      Kind = "validation"
	KindPoolExhausted   Kind = "pool_exhausted"
	KindConnectFailed   Kind = "connect_failed"
	KindMigrationFailed Kind = "migration_failed"
	KindStorage         Kind = "storage"
)

const internalMessage = "internal server error"

// Internal reports whether failures of this kind must be hidden from clients.
func (k Kind) Internal() bool {
	switch k {
	case KindNotFound, KindUserExists, KindValidation:
		return false
	default:
		return true
	}
}

// Error is a classified failure. Op names the operation that produced it,
// Cause keeps the underlying error for logs and errors.Is/As.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two classified errors of the same kind, so callers can write
// errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// HTTPStatus maps the kind onto a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUserExists:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON body sent to clients.
type Response struct {
	Error string `json:"error"`
	Type  Kind   `json:"type"`
}

// Public returns the client-facing body. Internal kinds never carry detail.
func (e *Error) Public() Response {
	if e.Kind.Internal() {
		return Response{Error: internalMessage, Type: e.Kind}
	}
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Kind)
	}
	return Response{Error: msg, Type: e.Kind}
}

func defaultMessage(k Kind) string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindUserExists:
		return "user already exists"
	case KindValidation:
		return "invalid request"
	default:
		return internalMessage
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUserExists      = &Error{Kind: KindUserExists}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrPoolExhausted   = &Error{Kind: KindPoolExhausted}
	ErrConnectFailed   = &Error{Kind: KindConnectFailed}
	ErrMigrationFailed = &Error{Kind: KindMigrationFailed}
	ErrStorage         = &Error{Kind: KindStorage}
)

func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func UserExists(op, username string) *Error {
	return &Error{Kind: KindUserExists, Op: op, Message: fmt.Sprintf("user %q already exists", username)}
}

func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func PoolExhausted(op string, cause error) *Error {
	return &Error{Kind: KindPoolExhausted, Op: op, Message: "no database connection available", Cause: cause}
}

func ConnectFailed(op string, cause error) *Error {
	return &Error{Kind: KindConnectFailed, Op: op, Message: "failed to connect to database", Cause: cause}
}

func MigrationFailed(op string, cause error) *Error {
	return &Error{Kind: KindMigrationFailed, Op: op, Message: "schema migration failed", Cause: cause}
}

func Storage(op string, cause error) *Error {
	return &Error{Kind: KindStorage, Op: op, Message: "storage failure", Cause: cause}
}

// As converts any error into a classified one. Already classified errors are
// returned unchanged; anything else becomes a storage failure.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return Storage("", err)
}

// Classify returns the taxonomy kind of err.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}
