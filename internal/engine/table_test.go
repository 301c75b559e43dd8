package engine

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuannm99/flatsql/internal/catalog"
	"github.com/tuannm99/flatsql/internal/record"
	"github.com/tuannm99/flatsql/internal/sql/parser"
)

var (
	testColumns = []string{"id", "name", "age", "active"}
	testTypes   = []record.DataType{
		record.Of(record.KindInt),
		record.Varchar(64),
		record.Of(record.KindInt),
		record.Of(record.KindBool),
	}
)

type dataGen struct {
	*gofakeit.Faker
}

func newDataGen(seed int64) *dataGen {
	return &dataGen{Faker: gofakeit.New(seed)}
}

func (g *dataGen) Row(id int) []string {
	return []string{
		strconv.Itoa(id),
		g.FirstName(),
		strconv.Itoa(g.IntRange(18, 99)),
		strconv.FormatBool(g.Bool()),
	}
}

func (g *dataGen) Rows(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, g.Row(i+1))
	}
	return rows
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New(afero.NewOsFs(), filepath.Join(t.TempDir(), "sql"), zap.NewNop())
	require.NoError(t, cat.Create("demo"))
	return cat
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := Open(newTestCatalog(t), "demo", "users")
	require.NoError(t, err)
	require.NoError(t, tbl.Create(testColumns, testTypes))
	return tbl
}

func TestOpen_DatabaseNotFound(t *testing.T) {
	cat := newTestCatalog(t)

	_, err := Open(cat, "missing", "users")
	require.ErrorIs(t, err, catalog.ErrDatabaseNotFound)

	_, err = Open(cat, "demo", "../users")
	require.ErrorIs(t, err, catalog.ErrInvalidName)
}

func TestOpen_RejectsSchemaDocumentCollision(t *testing.T) {
	cat := newTestCatalog(t)
	users, err := Open(cat, "demo", "users")
	require.NoError(t, err)
	require.NoError(t, users.Create(testColumns, testTypes))
	before, err := users.Schema()
	require.NoError(t, err)

	_, err = Open(cat, "demo", "users.schema")
	require.ErrorIs(t, err, catalog.ErrInvalidName)

	after, err := users.Schema()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	tables, err := cat.ListTables("demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, tables)

	_, err = Open(cat, "demo", "users.schemas")
	require.NoError(t, err)
}

func TestTable_NotFound(t *testing.T) {
	tbl, err := Open(newTestCatalog(t), "demo", "ghost")
	require.NoError(t, err)

	ok, err := tbl.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = tbl.Select(parser.AllColumns(), nil)
	require.ErrorIs(t, err, ErrTableNotFound)
	_, err = tbl.Insert(parser.AllColumns(), [][]string{{"1"}})
	require.ErrorIs(t, err, ErrTableNotFound)
	_, err = tbl.Delete(parser.Condition{Key: "id", Operator: parser.Eq, Value: "1"})
	require.ErrorIs(t, err, ErrTableNotFound)
	require.ErrorIs(t, tbl.Drop(), ErrTableNotFound)
	require.ErrorIs(t, tbl.Truncate(), ErrTableNotFound)
	require.ErrorIs(t, tbl.AddColumn("x", record.Of(record.KindInt)), ErrTableNotFound)
}

func TestTable_CreateWritesDocuments(t *testing.T) {
	tbl, err := Open(newTestCatalog(t), "demo", "t")
	require.NoError(t, err)
	require.NoError(t, tbl.Create([]string{"id", "kind"}, []record.DataType{
		record.Of(record.KindInt),
		record.Enum("a", "b"),
	}))

	schema, err := afero.ReadFile(tbl.fs, tbl.SchemaPath())
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["id","kind"],"types":["INT",{"ENUM":["a","b"]}]}`, string(schema))
	assert.Contains(t, string(schema), "\n  \"columns\"")

	rows, err := afero.ReadFile(tbl.fs, tbl.RowsPath())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(rows))
}

func TestTable_CreateRejectsBadSchema(t *testing.T) {
	tbl, err := Open(newTestCatalog(t), "demo", "t")
	require.NoError(t, err)

	err = tbl.Create([]string{"a", "b"}, []record.DataType{record.Of(record.KindInt)})
	require.ErrorIs(t, err, ErrSchemaMismatch)

	err = tbl.Create([]string{"a", "a"}, []record.DataType{record.Of(record.KindInt), record.Of(record.KindText)})
	require.ErrorIs(t, err, ErrDuplicatedColumn)

	ok, err := tbl.Exists()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTable_CreateOverwrites(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(parser.AllColumns(), newDataGen(1).Rows(3))
	require.NoError(t, err)

	require.NoError(t, tbl.Create([]string{"x"}, []record.DataType{record.Of(record.KindText)}))

	schema, err := tbl.Schema()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, schema.Columns)

	rows, err := tbl.Select(parser.AllColumns(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTable_InsertSelectRoundTrip(t *testing.T) {
	tbl := newTestTable(t)
	values := newDataGen(42).Rows(25)

	n, err := tbl.Insert(parser.AllColumns(), values)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	rows, err := tbl.Select(parser.AllColumns(), nil)
	require.NoError(t, err)
	require.Len(t, rows, len(values))
	for i, row := range rows {
		for j, col := range testColumns {
			assert.Equal(t, values[i][j], row[col])
		}
	}

	// appends
	n, err = tbl.Insert(parser.AllColumns(), newDataGen(7).Rows(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	rows, err = tbl.Select(parser.AllColumns(), nil)
	require.NoError(t, err)
	assert.Len(t, rows, 30)
}

func TestTable_InsertColumnSubset(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.Insert(parser.Columns("name", "id"), [][]string{{"alice", "1"}})
	require.NoError(t, err)

	rows, err := tbl.Select(parser.AllColumns(), nil)
	require.NoError(t, err)
	assert.Equal(t, []record.Row{{"id": "1", "name": "alice"}}, rows)
}

func TestTable_InsertErrors(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.Insert(parser.AllColumns(), [][]string{{"1", "bob", "30", "true"}, {"2", "carl"}})
	require.ErrorIs(t, err, ErrNumberMismatch)
	assert.Contains(t, err.Error(), "row 1 has 2 values, expected 4")

	_, err = tbl.Insert(parser.Columns("nope"), [][]string{{"1"}})
	require.ErrorIs(t, err, ErrColumnNotFound)

	_, err = tbl.Insert(parser.AllColumns(), [][]string{{"x", "bob", "30", "true"}})
	require.ErrorIs(t, err, record.ErrInvalidInt)

	_, err = tbl.Insert(parser.AllColumns(), [][]string{{"1", "bob", "30", "maybe"}})
	require.ErrorIs(t, err, record.ErrInvalidBool)

	// nothing was written by the failed inserts
	rows, err := tbl.Select(parser.AllColumns(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTable_SelectWithCondition(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(parser.AllColumns(), [][]string{
		{"1", "ann", "21", "true"},
		{"2", "bob", "35", "false"},
		{"3", "cid", "9", "true"},
	})
	require.NoError(t, err)

	rows, err := tbl.Select(parser.Columns("name"), &parser.Condition{Key: "active", Operator: parser.Eq, Value: "true"})
	require.NoError(t, err)
	assert.Equal(t, []record.Row{{"name": "ann"}, {"name": "cid"}}, rows)

	// lexicographic: "9" > "30"
	rows, err = tbl.Select(parser.Columns("name"), &parser.Condition{Key: "age", Operator: parser.Gt, Value: "30"})
	require.NoError(t, err)
	assert.Equal(t, []record.Row{{"name": "bob"}, {"name": "cid"}}, rows)

	_, err = tbl.Select(parser.Columns("email"), nil)
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestTable_Delete(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(parser.AllColumns(), newDataGen(3).Rows(10))
	require.NoError(t, err)

	n, err := tbl.Delete(parser.Condition{Key: "id", Operator: parser.Eq, Value: "4"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = tbl.Delete(parser.Condition{Key: "missing", Operator: parser.NotEq, Value: "x"})
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := tbl.Select(parser.Columns("id"), nil)
	require.NoError(t, err)
	assert.Len(t, rows, 9)
	assert.NotContains(t, rows, record.Row{"id": "4"})
}

func TestTable_SchemaChangesDoNotTouchRows(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(parser.AllColumns(), [][]string{{"1", "ann", "21", "true"}})
	require.NoError(t, err)

	require.NoError(t, tbl.AddColumn("email", record.Varchar(0)))
	require.ErrorIs(t, tbl.AddColumn("email", record.Of(record.KindText)), ErrDuplicatedColumn)
	require.NoError(t, tbl.AlterColumn("age", record.Of(record.KindText)))
	require.NoError(t, tbl.RemoveColumn("active"))
	require.ErrorIs(t, tbl.RemoveColumn("active"), ErrColumnNotFound)
	require.ErrorIs(t, tbl.AlterColumn("active", record.Of(record.KindBool)), ErrColumnNotFound)

	schema, err := tbl.Schema()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age", "email"}, schema.Columns)
	assert.Equal(t, []record.DataType{
		record.Of(record.KindInt),
		record.Varchar(64),
		record.Of(record.KindText),
		record.Varchar(0),
	}, schema.Types)

	rows, err := tbl.Select(parser.AllColumns(), nil)
	require.NoError(t, err)
	assert.Equal(t, []record.Row{{"id": "1", "name": "ann", "age": "21", "active": "true"}}, rows)

	// the new column was never backfilled
	_, err = tbl.Select(parser.Columns("email"), nil)
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestTable_AddThenRemoveRestoresSchema(t *testing.T) {
	tbl := newTestTable(t)
	before, err := tbl.Schema()
	require.NoError(t, err)

	for _, dt := range []record.DataType{
		record.Of(record.KindText),
		record.Varchar(8),
		record.Enum("a", "b"),
	} {
		require.NoError(t, tbl.AddColumn("x", dt))
		require.NoError(t, tbl.RemoveColumn("x"))

		after, err := tbl.Schema()
		require.NoError(t, err)
		assert.Equal(t, before, after, dt.String())
	}
}

func TestTable_TruncateAndDrop(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(parser.AllColumns(), newDataGen(5).Rows(4))
	require.NoError(t, err)

	require.NoError(t, tbl.Truncate())
	rows, err := tbl.Select(parser.AllColumns(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	schema, err := tbl.Schema()
	require.NoError(t, err)
	assert.Equal(t, testColumns, schema.Columns)

	require.NoError(t, tbl.Drop())
	ok, err := tbl.Exists()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTable_ExistsNeedsBothDocuments(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.fs.Remove(tbl.RowsPath()))

	ok, err := tbl.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = tbl.Schema()
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestTable_MalformedDocument(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, afero.WriteFile(tbl.fs, tbl.RowsPath(), []byte(`[{"id":`), 0o644))

	_, err := tbl.Select(parser.AllColumns(), nil)
	require.ErrorIs(t, err, ErrMalformedDocument)

	require.NoError(t, afero.WriteFile(tbl.fs, tbl.SchemaPath(), []byte(`{"columns":["a"],"types":[]}`), 0o644))
	_, err = tbl.Schema()
	require.ErrorIs(t, err, ErrMalformedDocument)
}

func TestMatch(t *testing.T) {
	row := record.Row{"age": "9", "name": "bob"}
	cases := []struct {
		cond *parser.Condition
		want bool
	}{
		{nil, true},
		{&parser.Condition{Key: "age", Operator: parser.Eq, Value: "9"}, true},
		{&parser.Condition{Key: "age", Operator: parser.NotEq, Value: "9"}, false},
		{&parser.Condition{Key: "age", Operator: parser.Gt, Value: "10"}, true},
		{&parser.Condition{Key: "age", Operator: parser.GtEq, Value: "9"}, true},
		{&parser.Condition{Key: "age", Operator: parser.Lt, Value: "10"}, false},
		{&parser.Condition{Key: "age", Operator: parser.LtEq, Value: "10"}, false},
		{&parser.Condition{Key: "name", Operator: parser.Lt, Value: "carl"}, true},
		{&parser.Condition{Key: "missing", Operator: parser.NotEq, Value: "x"}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Match(tc.cond, row), "%+v", tc.cond)
	}
}
