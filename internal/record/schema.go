package record

import "slices"

// Schema binds column names to types by position.
type Schema struct {
	Columns []string   `json:"columns"`
	Types   []DataType `json:"types"`
}

// Row is one stored record. Every value is kept as text.
type Row map[string]string

func (s Schema) NumCols() int { return len(s.Columns) }

// Position returns the index of the column or -1.
func (s Schema) Position(name string) int {
	return slices.Index(s.Columns, name)
}

// TypeOf returns the declared type of a column. ok is false when the column
// is missing or has no type at its position.
func (s Schema) TypeOf(name string) (DataType, bool) {
	pos := s.Position(name)
	if pos < 0 || pos >= len(s.Types) {
		return DataType{}, false
	}
	return s.Types[pos], true
}

// Consistent reports whether names and types line up one to one.
func (s Schema) Consistent() bool { return len(s.Columns) == len(s.Types) }
