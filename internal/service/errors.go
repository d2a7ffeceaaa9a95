package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// NotFoundError: a referenced entity does not exist. Surfaced unchanged.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// BadRequestError: a precondition violation with a human-readable reason.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string { return e.Reason }

// ConflictError: double booking or an already-claimed slot. Distinct from
// BadRequestError so callers can offer "pick another time".
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func badRequest(format string, args ...any) error {
	return &BadRequestError{Reason: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// orNotFound translates the record-not-found sentinel at the repository
// boundary; other errors pass through.
func orNotFound(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}
