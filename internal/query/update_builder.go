package query

import "strings"

// UpdateBuilder assembles an UPDATE statement. Without Where the statement
// affects every row of the table; callers decide whether that is acceptable.
type UpdateBuilder struct {
	table string
	set   []clause
	where whereClause

	err error
}

// Update starts an UPDATE of table.
func Update(table string) UpdateBuilder {
	u := UpdateBuilder{table: table}
	if err := checkIdentifiers(table); err != nil {
		u.err = err
	}
	return u
}

// Table returns the table name as given to Update.
func (u UpdateBuilder) Table() string { return u.table }

// Set appends a raw assignment such as "count = count + ?".
func (u UpdateBuilder) Set(assignment string, args ...any) UpdateBuilder {
	assignment = strings.TrimSpace(assignment)
	if assignment == "" {
		return u.fail(ErrEmptyClause)
	}
	u.set = appendCopy(u.set, clause{text: assignment, args: args})
	return u
}

// SetValues appends "column = ?" assignments, sorted by column name.
func (u UpdateBuilder) SetValues(values map[string]any) UpdateBuilder {
	for _, k := range sortedKeys(values) {
		if err := checkIdentifiers(k); err != nil {
			return u.fail(err)
		}
		u = u.Set(QuoteIdentifier(k)+" = ?", values[k])
	}
	return u
}

// Where sets the condition; see SelectBuilder.Where.
func (u UpdateBuilder) Where(condition string, args ...any) UpdateBuilder {
	if u.where.set() {
		return u.fail(ErrDoubleWhereClause)
	}
	return u.And(condition, args...)
}

// And appends another condition to the WHERE clause.
func (u UpdateBuilder) And(condition string, args ...any) UpdateBuilder {
	w, err := u.where.add(condition, args)
	if err != nil {
		return u.fail(err)
	}
	u.where = w
	return u
}

// Scoped reports whether the statement carries a WHERE clause.
func (u UpdateBuilder) Scoped() bool { return u.where.set() }

// MapValues returns a copy with fn applied to the arguments of the SET
// clause. WHERE arguments are left alone.
func (u UpdateBuilder) MapValues(fn func(any) any) UpdateBuilder {
	mapped := make([]clause, len(u.set))
	for n, c := range u.set {
		args := make([]any, len(c.args))
		for j, a := range c.args {
			args[j] = fn(a)
		}
		mapped[n] = clause{text: c.text, args: args}
	}
	u.set = mapped
	return u
}

// Build returns the statement and the arguments for its placeholders, SET
// arguments first.
func (u UpdateBuilder) Build() (string, []any, error) {
	if u.err != nil {
		return "", nil, u.err
	}
	if len(u.set) == 0 {
		return "", nil, ErrEmptySet
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("UPDATE ")
	sb.WriteString(QuoteIdentifier(u.table))
	sb.WriteString(" SET ")
	for n, c := range u.set {
		if n > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.text)
		args = append(args, c.args...)
	}
	args = u.where.write(&sb, args)

	return sb.String(), args, nil
}

// Render returns the statement with its arguments inlined as MySQL literals.
func (u UpdateBuilder) Render() (string, error) {
	return render(u.Build())
}

func (u UpdateBuilder) fail(err error) UpdateBuilder {
	if u.err == nil {
		u.err = err
	}
	return u
}
