// Package query builds MySQL statements from table, column and clause
// fragments. Values are never interpolated into the statement text; they are
// returned alongside it for the driver to bind.
package query

// Builder is implemented by every statement builder in this package.
type Builder interface {
	Build() (string, []any, error)
	Table() string
}

var (
	_ Builder = SelectBuilder{}
	_ Builder = InsertBuilder{}
	_ Builder = UpdateBuilder{}
	_ Builder = DeleteBuilder{}
)
