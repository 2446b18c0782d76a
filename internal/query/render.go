package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dhima/mysql-crud/internal/sanitize"
)

// render inlines args into stmt. Question marks inside quoted literals or
// backtick identifiers are not treated as placeholders.
func render(stmt string, args []any, err error) (string, error) {
	if err != nil {
		return "", err
	}

	var (
		sb    strings.Builder
		quote rune
		next  int
	)
	for i := 0; i < len(stmt); i++ {
		ch := rune(stmt[i])
		switch {
		case quote != 0:
			if ch == '\\' && i+1 < len(stmt) {
				sb.WriteByte(stmt[i])
				i++
				sb.WriteByte(stmt[i])
				continue
			}
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == '?':
			if next >= len(args) {
				return "", ErrArgCountMismatch
			}
			sb.WriteString(Literal(args[next]))
			next++
			continue
		}
		sb.WriteByte(stmt[i])
	}

	if next != len(args) {
		return "", ErrArgCountMismatch
	}
	return sb.String(), nil
}

// Literal formats v the way MySQL would read it back inside a statement.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + sanitize.EscapeString(val) + "'"
	case []byte:
		return "'" + sanitize.EscapeString(string(val)) + "'"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32, int16, int8, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case time.Time:
		if val.IsZero() {
			return "'0000-00-00'"
		}
		return "'" + val.Format("2006-01-02 15:04:05.999999") + "'"
	default:
		return "'" + sanitize.EscapeString(fmt.Sprint(val)) + "'"
	}
}
