package query

import (
	"strconv"
	"strings"
)

type orderTerm struct {
	column string
	desc   bool
}

// SelectBuilder assembles a SELECT statement. Builders are values: every
// method returns a modified copy and the first error is kept until Build.
type SelectBuilder struct {
	table   string
	columns []string
	where   whereClause
	order   []orderTerm

	limit    int
	offset   int
	limitSet bool

	count bool

	err error
}

// Select starts a SELECT on table. Without Columns every column is selected.
func Select(table string) SelectBuilder {
	s := SelectBuilder{table: table}
	if err := checkIdentifiers(table); err != nil {
		s.err = err
	}
	return s
}

// Table returns the table name as given to Select.
func (s SelectBuilder) Table() string { return s.table }

// Columns appends to the selected columns. "*" is accepted as is.
func (s SelectBuilder) Columns(columns ...string) SelectBuilder {
	for _, c := range columns {
		if c == "*" {
			continue
		}
		if err := checkIdentifiers(c); err != nil {
			return s.fail(err)
		}
	}
	s.columns = appendCopy(s.columns, columns...)
	return s
}

// Where sets the condition. The clause text is used verbatim and its
// placeholders are bound to args.
func (s SelectBuilder) Where(condition string, args ...any) SelectBuilder {
	if s.where.set() {
		return s.fail(ErrDoubleWhereClause)
	}
	return s.And(condition, args...)
}

// And appends another condition to an existing WHERE clause.
func (s SelectBuilder) And(condition string, args ...any) SelectBuilder {
	w, err := s.where.add(condition, args)
	if err != nil {
		return s.fail(err)
	}
	s.where = w
	return s
}

// OrderBy appends an ORDER BY term, descending when desc is true.
func (s SelectBuilder) OrderBy(column string, desc bool) SelectBuilder {
	if err := checkIdentifiers(column); err != nil {
		return s.fail(err)
	}
	s.order = appendCopy(s.order, orderTerm{column: column, desc: desc})
	return s
}

// Limit sets LIMIT; it may be set once and must not be negative.
func (s SelectBuilder) Limit(limit int) SelectBuilder {
	if s.limitSet {
		return s.fail(ErrLimitAlreadySet)
	}
	if limit < 0 {
		return s.fail(ErrInvalidLimit)
	}
	s.limit = limit
	s.limitSet = true
	return s
}

// Offset only takes effect together with Limit.
func (s SelectBuilder) Offset(offset int) SelectBuilder {
	if offset < 0 {
		return s.fail(ErrInvalidLimit)
	}
	s.offset = offset
	return s
}

// Count turns the statement into "SELECT COUNT(*) AS total" over the same
// table and condition. Columns, ordering and limits are dropped.
func (s SelectBuilder) Count() SelectBuilder {
	s.count = true
	return s
}

// Build returns the statement and the arguments for its placeholders.
func (s SelectBuilder) Build() (string, []any, error) {
	if s.err != nil {
		return "", nil, s.err
	}

	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT ")
	if s.count {
		sb.WriteString("COUNT(*) AS total FROM ")
		sb.WriteString(QuoteIdentifier(s.table))
		args = s.where.write(&sb, args)
		return sb.String(), args, nil
	}
	if len(s.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(quoteAll(s.columns), ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(QuoteIdentifier(s.table))

	args = s.where.write(&sb, args)

	if len(s.order) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(QuoteIdentifier(o.column))
			if o.desc {
				sb.WriteString(" DESC")
			}
		}
	}

	if s.limitSet {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(s.limit))
		if s.offset > 0 {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(s.offset))
		}
	}

	return sb.String(), args, nil
}

// Render returns the statement with its arguments inlined as MySQL literals.
func (s SelectBuilder) Render() (string, error) {
	return render(s.Build())
}

func (s SelectBuilder) fail(err error) SelectBuilder {
	if s.err == nil {
		s.err = err
	}
	return s
}
