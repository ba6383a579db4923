package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"pebble/internal/repository"
)

// ValidationError reports a missing or malformed field. Nothing was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// StorageError wraps a failure of the underlying repository.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// fromValidator converts the first go-playground validation failure.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("request", "%v", err)
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "max":
		return invalid(field, "must be at most %s characters", fe.Param())
	case "len":
		return invalid(field, "must be exactly %s characters", fe.Param())
	case "hexcolor":
		return invalid(field, "must be a hex color such as #3B82F6")
	case "email":
		return invalid(field, "must be an email address")
	default:
		return invalid(field, "failed %s check", fe.Tag())
	}
}

// asNotFound maps repository sentinels onto NotFoundError, or returns nil.
func asNotFound(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrIssueNotFound):
		return &NotFoundError{Entity: "issue", ID: id}
	case errors.Is(err, repository.ErrProjectNotFound):
		return &NotFoundError{Entity: "project", ID: id}
	case errors.Is(err, repository.ErrUserNotFound):
		return &NotFoundError{Entity: "user", ID: id}
	case errors.Is(err, repository.ErrLabelNotFound):
		return &NotFoundError{Entity: "label", ID: id}
	}
	return nil
}

// asInvalid maps constraint violations reported by the storage layer onto
// ValidationError, or returns nil.
func asInvalid(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return invalid("key", "is already taken")
	case errors.Is(err, repository.ErrInvalidValue):
		return invalid("issue", "type, priority or status is not allowed")
	}
	return nil
}
