package records

import (
	"errors"
	"fmt"

	"github.com/dhima/mysql-crud/internal/query"
)

// ErrTableNotFound is returned for tables outside the allowlist.
var ErrTableNotFound = errors.New("table not found")

// ValidationError represents user-facing validation issues.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

// NewValidationError creates a new validation error.
func NewValidationError(format string, args ...interface{}) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// asValidation turns statement builder errors into validation errors; any
// other error is returned unchanged.
func asValidation(err error) error {
	var idErr query.ErrInvalidIdentifier
	switch {
	case err == nil:
		return nil
	case errors.As(err, &idErr),
		errors.Is(err, query.ErrNoValues),
		errors.Is(err, query.ErrColumnValueMismatch),
		errors.Is(err, query.ErrEmptySet),
		errors.Is(err, query.ErrEmptyClause),
		errors.Is(err, query.ErrInvalidLimit):
		return ValidationError{msg: err.Error()}
	default:
		return err
	}
}
