package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrReferenced        = errors.New("referenced")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotInitialized    = errors.New("not initialized")
	ErrConflict          = errors.New("conflict")
	ErrExpired           = errors.New("expired")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error is a domain error carrying a kind and a caller-facing message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string) *Error {
	return newError(ErrNotFound, "%s not found", entity)
}

func invalid(format string, args ...interface{}) *Error {
	return newError(ErrInvalidArgument, format, args...)
}

// lookupError turns a missing row into a not-found error for entity
func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return err
}

// writeError maps a unique index violation onto a duplicate error with message
func writeError(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return newError(ErrDuplicate, format, args...)
	}
	return err
}
