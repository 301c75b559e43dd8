package executor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tuannm99/flatsql/internal/catalog"
	"github.com/tuannm99/flatsql/internal/engine"
	"github.com/tuannm99/flatsql/internal/record"
	"github.com/tuannm99/flatsql/internal/sql/parser"
	"github.com/tuannm99/flatsql/internal/sql/planner"
)

// Table is the subset of *engine.Table the executor drives.
type Table interface {
	Create(columns []string, types []record.DataType) error
	Schema() (record.Schema, error)
	Insert(sel parser.ColumnSelector, values [][]string) (int, error)
	Select(sel parser.ColumnSelector, cond *parser.Condition) ([]record.Row, error)
	Delete(cond parser.Condition) (int, error)
	AddColumn(name string, dt record.DataType) error
	AlterColumn(name string, dt record.DataType) error
	RemoveColumn(name string) error
	Drop() error
	Truncate() error
}

// executorDB is a small seam for unit-testing Executor without a real
// namespace root.
type executorDB interface {
	CreateDatabase(name string) error
	DropDatabase(name string) error
	UseDatabase(name string) error
	CurrentDatabase() (string, error)
	ListDatabases() ([]string, error)
	ListTables(db string) ([]string, error)

	OpenTable(db, name string) (Table, error)
}

// realDB adapts *catalog.Catalog to executorDB.
type realDB struct {
	cat *catalog.Catalog
}

func (r realDB) CreateDatabase(name string) error       { return r.cat.Create(name) }
func (r realDB) DropDatabase(name string) error         { return r.cat.Drop(name) }
func (r realDB) UseDatabase(name string) error          { return r.cat.Use(name) }
func (r realDB) CurrentDatabase() (string, error)       { return r.cat.Current() }
func (r realDB) ListDatabases() ([]string, error)       { return r.cat.List() }
func (r realDB) ListTables(db string) ([]string, error) { return r.cat.ListTables(db) }

func (r realDB) OpenTable(db, name string) (Table, error) {
	tbl, err := engine.Open(r.cat, db, name)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// Executor executes a plan against the catalog and its tables.
type Executor struct {
	DB     executorDB
	logger *zap.Logger
}

func NewExecutor(cat *catalog.Catalog, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{DB: realDB{cat: cat}, logger: logger}
}

// NewExecutorForTest allows injecting a fake executorDB.
func NewExecutorForTest(db executorDB) *Executor {
	return &Executor{DB: db, logger: zap.NewNop()}
}

// ExecSQL is the top-level entry: SQL string -> Result. The current
// database is read afresh for every statement.
func (e *Executor) ExecSQL(sql string) (*Result, error) {
	q, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}

	plan, err := planner.BuildPlan(q, e.DB.CurrentDatabase)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("executing plan", zap.String("plan", fmt.Sprintf("%T", plan)))
	return e.execPlan(plan)
}

func (e *Executor) execPlan(p planner.Plan) (*Result, error) {
	switch plan := p.(type) {
	case *planner.ShowDatabasesPlan:
		return e.execShowDatabases()
	case *planner.ShowCurrentDatabasePlan:
		return &Result{Columns: []string{"current_database"}, Rows: [][]any{{plan.Database}}}, nil
	case *planner.ShowTablesPlan:
		return e.execShowTables(plan)

	case *planner.CreateDatabasePlan:
		return statusResult(0, e.DB.CreateDatabase(plan.Name))
	case *planner.DropDatabasePlan:
		return statusResult(0, e.DB.DropDatabase(plan.Name))
	case *planner.UseDatabasePlan:
		return statusResult(0, e.DB.UseDatabase(plan.Name))

	case *planner.CreateTablePlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			return statusResult(0, t.Create(plan.Schema.Columns, plan.Schema.Types))
		})
	case *planner.DropTablePlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			return statusResult(0, t.Drop())
		})
	case *planner.TruncateTablePlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			return statusResult(0, t.Truncate())
		})
	case *planner.AddColumnPlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			return statusResult(0, t.AddColumn(plan.Column, plan.Type))
		})
	case *planner.AlterColumnPlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			return statusResult(0, t.AlterColumn(plan.Column, plan.Type))
		})
	case *planner.DropColumnPlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			return statusResult(0, t.RemoveColumn(plan.Column))
		})

	case *planner.InsertPlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			n, err := t.Insert(plan.Columns, plan.Values)
			return statusResult(int64(n), err)
		})
	case *planner.SeqScanPlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			return execSeqScan(t, plan)
		})
	case *planner.DeletePlan:
		return e.withTable(plan.TableRef, func(t Table) (*Result, error) {
			n, err := t.Delete(plan.Where)
			return statusResult(int64(n), err)
		})

	default:
		return nil, fmt.Errorf("executor: unsupported plan type %T", p)
	}
}

func statusResult(affected int64, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}
	return &Result{AffectedRows: affected}, nil
}

func (e *Executor) withTable(ref planner.TableRef, fn func(Table) (*Result, error)) (*Result, error) {
	tbl, err := e.DB.OpenTable(ref.Database, ref.TableName)
	if err != nil {
		return nil, err
	}
	return fn(tbl)
}

func (e *Executor) execShowDatabases() (*Result, error) {
	names, err := e.DB.ListDatabases()
	if err != nil {
		return nil, err
	}
	return listResult("database", names), nil
}

func (e *Executor) execShowTables(p *planner.ShowTablesPlan) (*Result, error) {
	names, err := e.DB.ListTables(p.Database)
	if err != nil {
		return nil, err
	}
	return listResult("table", names), nil
}

func listResult(column string, names []string) *Result {
	res := &Result{Columns: []string{column}}
	for _, n := range names {
		res.Rows = append(res.Rows, []any{n})
	}
	res.AffectedRows = int64(len(res.Rows))
	return res
}

func execSeqScan(tbl Table, p *planner.SeqScanPlan) (*Result, error) {
	rows, err := tbl.Select(p.Projection, p.Where)
	if err != nil {
		return nil, err
	}

	columns := p.Projection.Names
	if p.Projection.All {
		schema, err := tbl.Schema()
		if err != nil {
			return nil, err
		}
		columns = schema.Columns
	}

	res := &Result{Columns: make([]string, len(columns))}
	copy(res.Columns, columns)
	for _, row := range rows {
		out := make([]any, len(columns))
		for i, col := range columns {
			if v, ok := row[col]; ok {
				out[i] = v
			}
		}
		res.Rows = append(res.Rows, out)
	}

	res.AffectedRows = int64(len(res.Rows))
	return res, nil
}
