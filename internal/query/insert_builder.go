package query

import "strings"

// InsertBuilder assembles a single-row INSERT statement.
type InsertBuilder struct {
	table   string
	columns []string
	values  []any

	err error
}

// Insert starts an INSERT into table.
func Insert(table string) InsertBuilder {
	i := InsertBuilder{table: table}
	if err := checkIdentifiers(table); err != nil {
		i.err = err
	}
	return i
}

// Table returns the table name as given to Insert.
func (i InsertBuilder) Table() string { return i.table }

// Columns names the target columns. When omitted the statement relies on the
// table's column order.
func (i InsertBuilder) Columns(columns ...string) InsertBuilder {
	if err := checkIdentifiers(columns...); err != nil {
		return i.fail(err)
	}
	i.columns = appendCopy(i.columns, columns...)
	return i
}

// Values appends the values of the row, bound in order to the placeholders.
func (i InsertBuilder) Values(values ...any) InsertBuilder {
	i.values = appendCopy(i.values, values...)
	return i
}

// Record sets columns and values from a map. Columns are sorted by name.
func (i InsertBuilder) Record(record map[string]any) InsertBuilder {
	for _, k := range sortedKeys(record) {
		i = i.Columns(k).Values(record[k])
	}
	return i
}

// MapValues returns a copy with fn applied to every value.
func (i InsertBuilder) MapValues(fn func(any) any) InsertBuilder {
	mapped := make([]any, len(i.values))
	for n, v := range i.values {
		mapped[n] = fn(v)
	}
	i.values = mapped
	return i
}

// Build returns the statement and the arguments for its placeholders.
func (i InsertBuilder) Build() (string, []any, error) {
	if i.err != nil {
		return "", nil, i.err
	}
	if len(i.values) == 0 {
		return "", nil, ErrNoValues
	}
	if len(i.columns) > 0 && len(i.columns) != len(i.values) {
		return "", nil, ErrColumnValueMismatch
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(QuoteIdentifier(i.table))
	if len(i.columns) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(quoteAll(i.columns), ", "))
		sb.WriteString(")")
	}
	sb.WriteString(" VALUES (")
	sb.WriteString(placeholders(len(i.values)))
	sb.WriteString(")")

	return sb.String(), appendCopy(i.values), nil
}

// Render returns the statement with its arguments inlined as MySQL literals.
func (i InsertBuilder) Render() (string, error) {
	return render(i.Build())
}

func (i InsertBuilder) fail(err error) InsertBuilder {
	if i.err == nil {
		i.err = err
	}
	return i
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
