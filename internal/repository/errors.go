package repository

import (
	"errors"

	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Common repository errors
var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrLabelNotFound is returned when a label is not found
	ErrLabelNotFound = errors.New("label not found")

	// ErrIssueNotFound is returned when an issue is not found
	ErrIssueNotFound = errors.New("issue not found")

	// ErrDuplicateKey is returned when a unique column (project key, issue key, email) is already taken
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidValue is returned when an issue type, priority or status is outside its allowed set
	ErrInvalidValue = errors.New("invalid value")
)

// translate maps driver-level constraint violations onto the sentinels above.
// gorm's sqlite dialector cannot decode modernc errors, so those are matched
// by their extended result code.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrInvalidValue
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrDuplicateKey
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ErrInvalidValue
		}
	}
	return err
}
