package sanitize

import (
	"html"
	"strings"
)

// mysqlReplacer escapes the characters listed in the MySQL string literal table.
// The result must be placed inside a single or double quoted literal.
var mysqlReplacer = strings.NewReplacer(
	"\x00", "\\0",
	"'", "\\'",
	"\"", "\\\"",
	"\b", "\\b",
	"\n", "\\n",
	"\r", "\\r",
	"\x1A", "\\Z",
	"\\", "\\\\",
)

// EscapeString applies MySQL string literal escaping, the same set of
// replacements the driver performs when it interpolates parameters.
func EscapeString(s string) string {
	return mysqlReplacer.Replace(s)
}

// Input trims surrounding whitespace, HTML-escapes the value and then applies
// MySQL escaping. Use it only when a value must end up inside a literal;
// values passed as statement arguments should go through Value instead.
func Input(s string) string {
	s = strings.TrimSpace(s)
	s = html.EscapeString(s)
	return EscapeString(s)
}

// Value trims and HTML-escapes a value that will be bound as a parameter.
func Value(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// Output HTML-escapes a value for display.
func Output(s string) string {
	return html.EscapeString(s)
}
