// Package flatsql is the top-level facade for the flatsql engine: a small
// SQL dialect over databases stored as directories of JSON documents.
package flatsql

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tuannm99/flatsql/internal/catalog"
	"github.com/tuannm99/flatsql/internal/sql/executor"
)

type Result = executor.Result

// DB executes statements against the namespace root at DataDir.
type DB struct {
	DataDir string

	cat  *catalog.Catalog
	exec *executor.Executor
}

// Open binds a DB to dataDir on the OS filesystem. Nothing is created until
// the first CREATE DATABASE.
func Open(dataDir string, logger *zap.Logger) *DB {
	return OpenFs(afero.NewOsFs(), dataDir, logger)
}

// OpenFs is Open over an arbitrary filesystem.
func OpenFs(fs afero.Fs, dataDir string, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	cat := catalog.New(fs, dataDir, logger)
	return &DB{
		DataDir: dataDir,
		cat:     cat,
		exec:    executor.NewExecutor(cat, logger),
	}
}

// Exec runs a single statement.
func (db *DB) Exec(sql string) (*Result, error) {
	return db.exec.ExecSQL(sql)
}

// ExecSQL is Exec; it lets a DB drive the interactive shell.
func (db *DB) ExecSQL(sql string) (*Result, error) {
	return db.Exec(sql)
}

// CurrentDatabase returns the database selected by the last USE.
func (db *DB) CurrentDatabase() (string, error) {
	return db.cat.Current()
}
