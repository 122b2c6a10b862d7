package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error carrying the HTTP status it maps to.
type Error struct {
	Code    int
	Message string
	Err     error

	// generic sentinels match every error with their code.
	generic bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrAlreadyExists) hold for every 409 store error,
// while narrower sentinels made with WithMessage only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code != e.Code {
		return false
	}
	return t.generic || t.Message == e.Message
}

// HTTPCode returns the status this error maps to.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a copy with msg.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

var (
	ErrNotFound      = &Error{Code: http.StatusNotFound, Message: "resource not found", generic: true}
	ErrAlreadyExists = &Error{Code: http.StatusConflict, Message: "resource already exists", generic: true}
	ErrInvalidCursor = &Error{Code: http.StatusBadRequest, Message: "invalid cursor", generic: true}
)

// IndexConflictError reports which unique index rejected a write.
type IndexConflictError struct {
	Index string
	Value string
}

func (e *IndexConflictError) Error() string {
	return fmt.Sprintf("index %s conflict on %q", e.Index, e.Value)
}

func (e *IndexConflictError) Unwrap() error { return ErrAlreadyExists }
