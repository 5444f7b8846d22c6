package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsBlank reports whether the query is empty or whitespace only
func IsBlank(query string) bool {
	return strings.TrimFunc(query, unicode.IsSpace) == ""
}

// Matches decides whether a person matches a query.
//
// A blank query matches everyone. Otherwise the query must be a
// case-insensitive substring of one of "FirstLast", "First Last" or the
// initials "F L". An empty name field contributes an empty initial, so
// {First: "", Last: "Dion"} has the initials candidate " D".
func Matches(p Person, query string) bool {
	if IsBlank(query) {
		return true
	}

	q := strings.ToLower(query)
	candidates := [...]string{
		p.First + p.Last,
		p.First + " " + p.Last,
		initial(p.First) + " " + initial(p.Last),
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

// initial returns the first rune of s, or "" for an empty string
func initial(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
