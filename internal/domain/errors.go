package domain

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// HTTPError is an error that knows which status code it maps to.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinels for errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// ConflictCode tells a caller which rule rejected a write.
type ConflictCode string

const (
	CodeDuplicateName  ConflictCode = "DuplicateName"
	CodeDuplicateValue ConflictCode = "DuplicateValue"
	CodeNameConflict   ConflictCode = "NameConflict"
	CodeParentDeleted  ConflictCode = "ParentDeleted"
)

type (
	// NotFoundError covers "missing", "wrong owner" and "wrong lifecycle state" alike.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input.
	ValidationError struct {
		Message string
	}

	// ConflictError is a write rejected by a uniqueness or lifecycle precondition.
	ConflictError struct {
		Code    ConflictCode
		Message string
		// Column is set for DuplicateValue.
		Column string
	}

	// PartialNotFoundError rejects a bulk request when some of the requested ids
	// are not in the required state.
	PartialNotFoundError struct {
		Message   string
		Requested int
		Found     int
	}
)

func (e *NotFoundError) Error() string        { return e.Message }
func (e *ValidationError) Error() string      { return e.Message }
func (e *ConflictError) Error() string        { return e.Message }
func (e *PartialNotFoundError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int        { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ConflictError) StatusCode() int        { return http.StatusBadRequest }
func (e *PartialNotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *NotFoundError) Is(target error) bool        { return target == ErrNotFound }
func (e *PartialNotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool      { return target == ErrValidation }
func (e *ConflictError) Is(target error) bool        { return target == ErrConflict }

func NotFound(message string) error {
	return &NotFoundError{Message: message}
}

func Invalid(message string) error {
	return &ValidationError{Message: message}
}

func Conflict(code ConflictCode, message string) error {
	return &ConflictError{Code: code, Message: message}
}

func DuplicateValue(column string) error {
	return &ConflictError{
		Code:    CodeDuplicateValue,
		Message: "Duplicate value for unique column: " + column,
		Column:  column,
	}
}

func PartialNotFound(message string, requested, found int) error {
	return &PartialNotFoundError{Message: message, Requested: requested, Found: found}
}

// HasConflictCode reports whether err is a ConflictError carrying code.
func HasConflictCode(err error, code ConflictCode) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Code == code
}

// IsUniqueViolation recognises unique-index failures from every store we run on:
// translated gorm errors, pgx errors and raw driver text (sqlite, lib/pq).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
