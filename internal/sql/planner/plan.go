package planner

import (
	"github.com/tuannm99/flatsql/internal/record"
	"github.com/tuannm99/flatsql/internal/sql/parser"
)

// Plan is the interface for executable plans.
type Plan interface {
	planNode()
}

// TableRef names a table inside the database that was current when the
// statement was planned.
type TableRef struct {
	Database  string
	TableName string
}

// ----- Plan nodes -----

type ShowDatabasesPlan struct{}

func (*ShowDatabasesPlan) planNode() {}

type ShowCurrentDatabasePlan struct {
	Database string
}

func (*ShowCurrentDatabasePlan) planNode() {}

type ShowTablesPlan struct {
	Database string
}

func (*ShowTablesPlan) planNode() {}

type CreateDatabasePlan struct {
	Name string
}

func (*CreateDatabasePlan) planNode() {}

type DropDatabasePlan struct {
	Name string
}

func (*DropDatabasePlan) planNode() {}

type UseDatabasePlan struct {
	Name string
}

func (*UseDatabasePlan) planNode() {}

type CreateTablePlan struct {
	TableRef
	Schema record.Schema
}

func (*CreateTablePlan) planNode() {}

type DropTablePlan struct {
	TableRef
}

func (*DropTablePlan) planNode() {}

type TruncateTablePlan struct {
	TableRef
}

func (*TruncateTablePlan) planNode() {}

type AddColumnPlan struct {
	TableRef
	Column string
	Type   record.DataType
}

func (*AddColumnPlan) planNode() {}

type AlterColumnPlan struct {
	TableRef
	Column string
	Type   record.DataType
}

func (*AlterColumnPlan) planNode() {}

type DropColumnPlan struct {
	TableRef
	Column string
}

func (*DropColumnPlan) planNode() {}

type InsertPlan struct {
	TableRef
	Columns parser.ColumnSelector
	Values  [][]string
}

func (*InsertPlan) planNode() {}

// SeqScanPlan reads every row, keeps those matching Where (all rows when
// nil) and projects them.
type SeqScanPlan struct {
	TableRef
	Projection parser.ColumnSelector
	Where      *parser.Condition
}

func (*SeqScanPlan) planNode() {}

type DeletePlan struct {
	TableRef
	Where parser.Condition
}

func (*DeletePlan) planNode() {}
