package planner

import (
	"fmt"
	"slices"

	"github.com/tuannm99/flatsql/internal/record"
	"github.com/tuannm99/flatsql/internal/sql/parser"
)

// CurrentDB resolves the current-database pointer. It is called at most once
// per statement and only for statements that need it.
type CurrentDB func() (string, error)

// BuildPlan builds a plan from a parsed query.
func BuildPlan(q parser.Query, current CurrentDB) (Plan, error) {
	switch s := q.(type) {
	case *parser.ShowDatabasesQuery:
		return &ShowDatabasesPlan{}, nil
	case *parser.ShowCurrentDatabaseQuery:
		db, err := resolve(current)
		if err != nil {
			return nil, err
		}
		return &ShowCurrentDatabasePlan{Database: db}, nil
	case *parser.ShowTablesQuery:
		db, err := resolve(current)
		if err != nil {
			return nil, err
		}
		return &ShowTablesPlan{Database: db}, nil
	case *parser.DatabaseQuery:
		return buildDatabasePlan(s)
	case *parser.TableQuery:
		db, err := resolve(current)
		if err != nil {
			return nil, err
		}
		return buildTablePlan(TableRef{Database: db, TableName: s.Name}, s.Op)
	default:
		return nil, fmt.Errorf("planner: unsupported query type %T", q)
	}
}

func resolve(current CurrentDB) (string, error) {
	if current == nil {
		return "", fmt.Errorf("planner: no current database resolver")
	}
	return current()
}

func buildDatabasePlan(s *parser.DatabaseQuery) (Plan, error) {
	switch s.Action {
	case parser.CreateDatabase:
		return &CreateDatabasePlan{Name: s.Name}, nil
	case parser.DropDatabase:
		return &DropDatabasePlan{Name: s.Name}, nil
	case parser.UseDatabase:
		return &UseDatabasePlan{Name: s.Name}, nil
	default:
		return nil, fmt.Errorf("%w: %s", parser.ErrInvalidDBAction, s.Action)
	}
}

func buildTablePlan(ref TableRef, op parser.TableOp) (Plan, error) {
	switch o := op.(type) {
	case *parser.CreateTable:
		return &CreateTablePlan{
			TableRef: ref,
			Schema: record.Schema{
				Columns: slices.Clone(o.Columns),
				Types:   slices.Clone(o.Types),
			},
		}, nil
	case *parser.DropTable:
		return &DropTablePlan{TableRef: ref}, nil
	case *parser.TruncateTable:
		return &TruncateTablePlan{TableRef: ref}, nil
	case *parser.AddColumn:
		return &AddColumnPlan{TableRef: ref, Column: o.Column, Type: o.Type}, nil
	case *parser.AlterColumn:
		return &AlterColumnPlan{TableRef: ref, Column: o.Column, Type: o.Type}, nil
	case *parser.DropColumn:
		return &DropColumnPlan{TableRef: ref, Column: o.Column}, nil
	case *parser.Insert:
		return &InsertPlan{TableRef: ref, Columns: o.Columns, Values: o.Values}, nil
	case *parser.Select:
		return &SeqScanPlan{TableRef: ref, Projection: o.Columns, Where: o.Condition}, nil
	case *parser.Delete:
		return &DeletePlan{TableRef: ref, Where: o.Condition}, nil
	default:
		return nil, fmt.Errorf("planner: unsupported table operation %T", op)
	}
}
