package parser

import "github.com/tuannm99/flatsql/internal/record"

// Query is the root interface for all parsed statements.
type Query interface {
	queryNode()
}

// ----- SHOW -----
type ShowDatabasesQuery struct{}

func (*ShowDatabasesQuery) queryNode() {}

type ShowCurrentDatabaseQuery struct{}

func (*ShowCurrentDatabaseQuery) queryNode() {}

type ShowTablesQuery struct{}

func (*ShowTablesQuery) queryNode() {}

// ----- DATABASE -----
type DatabaseAction uint8

const (
	CreateDatabase DatabaseAction = iota + 1
	DropDatabase
	UseDatabase
)

func (a DatabaseAction) String() string {
	switch a {
	case CreateDatabase:
		return "CREATE"
	case DropDatabase:
		return "DROP"
	case UseDatabase:
		return "USE"
	default:
		return "UNKNOWN"
	}
}

type DatabaseQuery struct {
	Name   string
	Action DatabaseAction
}

func (*DatabaseQuery) queryNode() {}

// ----- TABLE -----

// TableQuery targets one table of the current database.
type TableQuery struct {
	Name string
	Op   TableOp
}

func (*TableQuery) queryNode() {}

// TableOp is the table-scoped part of a TableQuery.
type TableOp interface {
	tableOp()
}

type CreateTable struct {
	Columns []string
	Types   []record.DataType
}

type DropTable struct{}

type TruncateTable struct{}

type AddColumn struct {
	Column string
	Type   record.DataType
}

type AlterColumn struct {
	Column string
	Type   record.DataType
}

type DropColumn struct {
	Column string
}

type Select struct {
	Columns   ColumnSelector
	Condition *Condition // nil selects every row
}

type Insert struct {
	Columns ColumnSelector
	Values  [][]string
}

type Delete struct {
	Condition Condition
}

func (*CreateTable) tableOp()   {}
func (*DropTable) tableOp()     {}
func (*TruncateTable) tableOp() {}
func (*AddColumn) tableOp()     {}
func (*AlterColumn) tableOp()   {}
func (*DropColumn) tableOp()    {}
func (*Select) tableOp()        {}
func (*Insert) tableOp()        {}
func (*Delete) tableOp()        {}

// ColumnSelector is either every column (All) or an ordered subset.
type ColumnSelector struct {
	All   bool
	Names []string
}

func AllColumns() ColumnSelector { return ColumnSelector{All: true} }

func Columns(names ...string) ColumnSelector { return ColumnSelector{Names: names} }

// ----- Conditions -----
type Operator uint8

const (
	Eq Operator = iota + 1
	NotEq
	Gt
	Lt
	GtEq
	LtEq
)

var operatorSymbols = map[Operator]string{
	Eq:    "=",
	NotEq: "!=",
	Gt:    ">",
	Lt:    "<",
	GtEq:  ">=",
	LtEq:  "<=",
}

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return "?"
}

// Condition is a single binary predicate over one column, used by SELECT
// and DELETE.
type Condition struct {
	Key      string
	Operator Operator
	Value    string
}
