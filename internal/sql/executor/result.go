package executor

// Result is the generic query result returned to the caller.
//
// Columns is non-nil for statements that produce rows (SELECT, SHOW); a
// nil entry in Rows is a value missing from the stored row.
type Result struct {
	Columns []string
	Rows    [][]any

	// For DML:
	AffectedRows int64
}

// HasRows reports whether the result is a row set rather than a status.
func (r *Result) HasRows() bool { return r.Columns != nil }
