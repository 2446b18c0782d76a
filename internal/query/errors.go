package query

import (
	"errors"
	"fmt"
)

var (
	ErrDoubleWhereClause = errors.New("where clause is already present")

	ErrLimitAlreadySet = errors.New("limit value has already been set")
	ErrInvalidLimit    = errors.New("limit and offset must not be negative")

	ErrNoValues            = errors.New("insert statement has no values")
	ErrColumnValueMismatch = errors.New("number of columns does not match number of values")
	ErrEmptySet            = errors.New("update statement has no set clause")
	ErrEmptyClause         = errors.New("clause must not be empty")

	ErrArgCountMismatch = errors.New("number of placeholders does not match number of arguments")
)

// ErrInvalidIdentifier occurs when a string provided cannot be used as a table or column name.
type ErrInvalidIdentifier struct {
	Name string
}

func (e ErrInvalidIdentifier) Error() string {
	return fmt.Sprintf("%q is not a valid identifier", e.Name)
}
