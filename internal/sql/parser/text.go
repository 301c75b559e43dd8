package parser

import (
	"strings"
	"unicode"
)

// splitTopLevel splits s on commas that are not nested inside parentheses,
// so "id int, kind enum(a, b)" yields two entries.
func splitTopLevel(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// parseColumns reads a projection list: "*" or "a, b, c".
func parseColumns(s string) ColumnSelector {
	s = strings.TrimSpace(s)
	if s == "*" {
		return AllColumns()
	}

	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return Columns(names...)
}

// splitValues extracts the bare tokens of a comma separated list. Values are
// kept verbatim, quotes included.
func splitValues(s string) []string {
	return reValue.FindAllString(s, -1)
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }
