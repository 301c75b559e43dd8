package engine

import (
	"github.com/tuannm99/flatsql/internal/record"
	"github.com/tuannm99/flatsql/internal/sql/parser"
)

// Match reports whether row satisfies cond. A nil cond matches everything
// and a row without cond.Key never matches.
//
// Values are compared as strings for every operator, whatever the column
// type, so "9" > "10".
func Match(cond *parser.Condition, row record.Row) bool {
	if cond == nil {
		return true
	}

	v, ok := row[cond.Key]
	if !ok {
		return false
	}

	switch cond.Operator {
	case parser.Eq:
		return v == cond.Value
	case parser.NotEq:
		return v != cond.Value
	case parser.Gt:
		return v > cond.Value
	case parser.GtEq:
		return v >= cond.Value
	case parser.Lt:
		return v < cond.Value
	case parser.LtEq:
		return v <= cond.Value
	default:
		return false
	}
}
