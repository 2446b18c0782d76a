package query

import (
	"regexp"
	"sort"
	"strings"
)

// An identifier is a bare name, optionally qualified by a schema: "users" or "app.users".
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// ValidIdentifier reports whether name can be used verbatim as a table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !ValidIdentifier(n) {
			return ErrInvalidIdentifier{n}
		}
	}
	return nil
}

// clause is a raw SQL fragment plus the arguments bound to its placeholders.
type clause struct {
	text string
	args []any
}

// whereClause holds the conditions joined with AND.
type whereClause []clause

func (w whereClause) set() bool { return len(w) > 0 }

func (w whereClause) add(text string, args []any) (whereClause, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return w, ErrEmptyClause
	}
	next := make(whereClause, len(w), len(w)+1)
	copy(next, w)
	return append(next, clause{text: text, args: args}), nil
}

func (w whereClause) write(sb *strings.Builder, args []any) []any {
	if !w.set() {
		return args
	}
	sb.WriteString(" WHERE ")
	for i, c := range w {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(c.text)
		args = append(args, c.args...)
	}
	return args
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func appendCopy[T any](base []T, more ...T) []T {
	out := make([]T, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
