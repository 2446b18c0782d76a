package query

import "strings"

// reserved holds MySQL keywords that commonly show up as column or table
// names and must be backtick-quoted to parse.
var reserved = map[string]struct{}{
	"add": {}, "all": {}, "alter": {}, "and": {}, "as": {}, "asc": {},
	"between": {}, "by": {}, "call": {}, "case": {}, "change": {}, "check": {},
	"column": {}, "condition": {}, "constraint": {}, "create": {}, "cross": {},
	"current_date": {}, "current_time": {}, "current_timestamp": {}, "current_user": {},
	"database": {}, "default": {}, "delete": {}, "desc": {}, "describe": {},
	"distinct": {}, "div": {}, "drop": {}, "else": {}, "exists": {}, "explain": {},
	"false": {}, "fetch": {}, "for": {}, "foreign": {}, "from": {}, "grant": {},
	"group": {}, "having": {}, "if": {}, "in": {}, "index": {}, "inner": {},
	"insert": {}, "interval": {}, "into": {}, "is": {}, "join": {}, "key": {},
	"keys": {}, "kill": {}, "left": {}, "like": {}, "limit": {}, "lines": {},
	"load": {}, "lock": {}, "match": {}, "mod": {}, "natural": {}, "not": {},
	"null": {}, "on": {}, "option": {}, "or": {}, "order": {}, "outer": {},
	"primary": {}, "range": {}, "read": {}, "references": {}, "regexp": {},
	"rename": {}, "repeat": {}, "replace": {}, "require": {}, "restrict": {},
	"return": {}, "revoke": {}, "right": {}, "rlike": {}, "schema": {},
	"select": {}, "set": {}, "show": {}, "signal": {}, "table": {}, "then": {},
	"to": {}, "trigger": {}, "true": {}, "union": {}, "unique": {}, "unlock": {},
	"update": {}, "usage": {}, "use": {}, "using": {}, "values": {}, "when": {},
	"where": {}, "while": {}, "with": {}, "write": {},
}

// QuoteIdentifier backtick-quotes every part of a valid identifier that is
// a reserved word; other names are returned unchanged.
func QuoteIdentifier(name string) string {
	if !strings.ContainsRune(name, '.') {
		return quotePart(name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quotePart(p)
	}
	return strings.Join(parts, ".")
}

func quotePart(p string) string {
	if _, ok := reserved[strings.ToLower(p)]; ok {
		return "`" + p + "`"
	}
	return p
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = QuoteIdentifier(n)
	}
	return out
}
