package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tuannm99/flatsql/internal/catalog"
	"github.com/tuannm99/flatsql/internal/record"
	"github.com/tuannm99/flatsql/internal/sql/parser"
)

var (
	ErrTableNotFound      = errors.New("flatsql: table not found")
	ErrColumnNotFound     = errors.New("flatsql: column not found")
	ErrColumnTypeNotFound = errors.New("flatsql: column type not found")
	ErrNumberMismatch     = errors.New("flatsql: number of values does not match number of columns")
	ErrDuplicatedColumn   = errors.New("flatsql: column already exists")
	ErrSchemaMismatch     = errors.New("flatsql: columns and types differ in length")
	ErrMalformedDocument  = errors.New("flatsql: malformed table document")
)

// Table is one table of a database, persisted as a schema document
// "<name>.schema.json" and a row document "<name>.json". Every operation
// reads the documents from disk and rewrites them in full.
type Table struct {
	Database string
	Name     string

	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// Open binds a table handle to an existing database. It does not require
// the table itself to exist.
func Open(cat *catalog.Catalog, db, name string) (*Table, error) {
	if err := validateTableName(name); err != nil {
		return nil, err
	}

	ok, err := cat.Exists(db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrDatabaseNotFound, db)
	}

	return &Table{
		Database: db,
		Name:     name,
		fs:       cat.Fs(),
		dir:      cat.DatabaseDir(db),
		logger:   cat.Logger().With(zap.String("db", db), zap.String("table", name)),
	}, nil
}

// validateTableName rejects names whose row document would be another
// table's schema document: "x.schema" stores rows in "x.schema.json".
func validateTableName(name string) error {
	if err := catalog.ValidateName(name); err != nil {
		return err
	}
	if strings.HasSuffix(name, strings.TrimSuffix(catalog.SchemaSuffix, catalog.RowsSuffix)) {
		return fmt.Errorf("%w: %q collides with a schema document", catalog.ErrInvalidName, name)
	}
	return nil
}

func (t *Table) SchemaPath() string {
	return filepath.Join(t.dir, t.Name+catalog.SchemaSuffix)
}

func (t *Table) RowsPath() string {
	return filepath.Join(t.dir, t.Name+catalog.RowsSuffix)
}

// Exists reports whether both documents are present.
func (t *Table) Exists() (bool, error) {
	for _, path := range []string{t.SchemaPath(), t.RowsPath()} {
		ok, err := afero.Exists(t.fs, path)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (t *Table) mustExist() error {
	ok, err := t.Exists()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrTableNotFound, t.Database, t.Name)
	}
	return nil
}

// writeDoc overwrites a document with its indented JSON encoding.
func (t *Table) writeDoc(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := afero.WriteFile(t.fs, path, data, 0o644); err != nil {
		return err
	}
	t.logger.Debug("wrote document", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func (t *Table) readDoc(path string, v any) error {
	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedDocument, path, err)
	}
	return nil
}

func (t *Table) readSchema() (record.Schema, error) {
	var s record.Schema
	if err := t.readDoc(t.SchemaPath(), &s); err != nil {
		return record.Schema{}, err
	}
	if !s.Consistent() {
		return record.Schema{}, fmt.Errorf("%w: %s: %d columns, %d types",
			ErrMalformedDocument, t.SchemaPath(), len(s.Columns), len(s.Types))
	}
	return s, nil
}

func (t *Table) writeSchema(s record.Schema) error {
	return t.writeDoc(t.SchemaPath(), s)
}

func (t *Table) readRows() ([]record.Row, error) {
	var rows []record.Row
	if err := t.readDoc(t.RowsPath(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *Table) writeRows(rows []record.Row) error {
	if rows == nil {
		rows = []record.Row{}
	}
	return t.writeDoc(t.RowsPath(), rows)
}

// Create writes the schema and an empty row document, replacing any table
// of the same name.
func (t *Table) Create(columns []string, types []record.DataType) error {
	if len(columns) != len(types) {
		return fmt.Errorf("%w: %d columns, %d types", ErrSchemaMismatch, len(columns), len(types))
	}
	for i, col := range columns {
		if slices.Contains(columns[:i], col) {
			return fmt.Errorf("%w: %s", ErrDuplicatedColumn, col)
		}
	}

	schema := record.Schema{
		Columns: slices.Clone(columns),
		Types:   slices.Clone(types),
	}
	if err := t.writeSchema(schema); err != nil {
		return err
	}
	return t.writeRows(nil)
}

// Schema returns the stored schema.
func (t *Table) Schema() (record.Schema, error) {
	if err := t.mustExist(); err != nil {
		return record.Schema{}, err
	}
	return t.readSchema()
}

// Insert validates every row before appending any of them. It returns the
// number of rows written.
func (t *Table) Insert(sel parser.ColumnSelector, values [][]string) (int, error) {
	if err := t.mustExist(); err != nil {
		return 0, err
	}
	schema, err := t.readSchema()
	if err != nil {
		return 0, err
	}

	columns := sel.Names
	if sel.All {
		columns = schema.Columns
	}

	types := make([]record.DataType, len(columns))
	for i, col := range columns {
		dt, ok := schema.TypeOf(col)
		if !ok {
			if schema.Position(col) < 0 {
				return 0, fmt.Errorf("%w: %s", ErrColumnNotFound, col)
			}
			return 0, fmt.Errorf("%w: %s", ErrColumnTypeNotFound, col)
		}
		types[i] = dt
	}

	inserted := make([]record.Row, 0, len(values))
	for i, vals := range values {
		if len(vals) != len(columns) {
			return 0, fmt.Errorf("%w: row %d has %d values, expected %d",
				ErrNumberMismatch, i, len(vals), len(columns))
		}

		row := make(record.Row, len(columns))
		for j, v := range vals {
			if err := types[j].Validate(v); err != nil {
				return 0, fmt.Errorf("row %d, column %s: %w", i, columns[j], err)
			}
			row[columns[j]] = v
		}
		inserted = append(inserted, row)
	}

	rows, err := t.readRows()
	if err != nil {
		return 0, err
	}
	if err := t.writeRows(append(rows, inserted...)); err != nil {
		return 0, err
	}
	return len(inserted), nil
}

// Select returns the rows matching cond, projected to the selected columns.
// A nil cond matches every row.
func (t *Table) Select(sel parser.ColumnSelector, cond *parser.Condition) ([]record.Row, error) {
	if err := t.mustExist(); err != nil {
		return nil, err
	}
	rows, err := t.readRows()
	if err != nil {
		return nil, err
	}

	var out []record.Row
	for _, row := range rows {
		if !Match(cond, row) {
			continue
		}
		if sel.All {
			out = append(out, row)
			continue
		}

		projected := make(record.Row, len(sel.Names))
		for _, col := range sel.Names {
			v, ok := row[col]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, col)
			}
			projected[col] = v
		}
		out = append(out, projected)
	}
	return out, nil
}

// Delete removes the rows matching cond and returns how many were removed.
func (t *Table) Delete(cond parser.Condition) (int, error) {
	if err := t.mustExist(); err != nil {
		return 0, err
	}
	rows, err := t.readRows()
	if err != nil {
		return 0, err
	}

	kept := slices.DeleteFunc(slices.Clone(rows), func(row record.Row) bool {
		return Match(&cond, row)
	})
	if err := t.writeRows(kept); err != nil {
		return 0, err
	}
	return len(rows) - len(kept), nil
}

// AlterColumn changes a column's declared type. Stored values are left as
// they are.
func (t *Table) AlterColumn(name string, dt record.DataType) error {
	schema, err := t.Schema()
	if err != nil {
		return err
	}

	pos := schema.Position(name)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	schema.Types[pos] = dt
	return t.writeSchema(schema)
}

// AddColumn appends a column to the schema. Existing rows are not
// backfilled.
func (t *Table) AddColumn(name string, dt record.DataType) error {
	schema, err := t.Schema()
	if err != nil {
		return err
	}

	if schema.Position(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicatedColumn, name)
	}
	schema.Columns = append(schema.Columns, name)
	schema.Types = append(schema.Types, dt)
	return t.writeSchema(schema)
}

// RemoveColumn drops a column from the schema. Its values stay in the
// stored rows.
func (t *Table) RemoveColumn(name string) error {
	schema, err := t.Schema()
	if err != nil {
		return err
	}

	pos := schema.Position(name)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	schema.Columns = slices.Delete(schema.Columns, pos, pos+1)
	schema.Types = slices.Delete(schema.Types, pos, pos+1)
	return t.writeSchema(schema)
}

// Drop removes both documents. Both removals are attempted even if the
// first one fails.
func (t *Table) Drop() error {
	if err := t.mustExist(); err != nil {
		return err
	}

	err := multierr.Append(
		t.fs.Remove(t.SchemaPath()),
		t.fs.Remove(t.RowsPath()),
	)
	if err == nil {
		t.logger.Debug("dropped table")
	}
	return err
}

// Truncate empties the row document and keeps the schema.
func (t *Table) Truncate() error {
	if err := t.mustExist(); err != nil {
		return err
	}
	return t.writeRows(nil)
}
