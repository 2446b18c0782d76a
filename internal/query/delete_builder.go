package query

import "strings"

// DeleteBuilder assembles a DELETE statement. Without Where every row goes.
type DeleteBuilder struct {
	table string
	where whereClause

	err error
}

// Delete starts a DELETE from table.
func Delete(table string) DeleteBuilder {
	d := DeleteBuilder{table: table}
	if err := checkIdentifiers(table); err != nil {
		d.err = err
	}
	return d
}

// Table returns the table name as given to Delete.
func (d DeleteBuilder) Table() string { return d.table }

// Where sets the condition; see SelectBuilder.Where.
func (d DeleteBuilder) Where(condition string, args ...any) DeleteBuilder {
	if d.where.set() {
		return d.fail(ErrDoubleWhereClause)
	}
	return d.And(condition, args...)
}

// And appends another condition to the WHERE clause.
func (d DeleteBuilder) And(condition string, args ...any) DeleteBuilder {
	w, err := d.where.add(condition, args)
	if err != nil {
		return d.fail(err)
	}
	d.where = w
	return d
}

// Scoped reports whether the statement carries a WHERE clause.
func (d DeleteBuilder) Scoped() bool { return d.where.set() }

// Build returns the statement and the arguments for its placeholders.
func (d DeleteBuilder) Build() (string, []any, error) {
	if d.err != nil {
		return "", nil, d.err
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("DELETE FROM ")
	sb.WriteString(QuoteIdentifier(d.table))
	args = d.where.write(&sb, args)

	return sb.String(), args, nil
}

// Render returns the statement with its arguments inlined as MySQL literals.
func (d DeleteBuilder) Render() (string, error) {
	return render(d.Build())
}

func (d DeleteBuilder) fail(err error) DeleteBuilder {
	if d.err == nil {
		d.err = err
	}
	return d
}
