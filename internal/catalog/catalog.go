package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	ErrDatabaseNotFound   = errors.New("flatsql: database not found")
	ErrDuplicatedDatabase = errors.New("flatsql: database already exists")
	ErrNoCurrentDatabase  = errors.New("flatsql: no database selected")
	ErrInvalidName        = errors.New("flatsql: invalid name")
)

const (
	// CurrentDBFile holds the name of the database selected by USE.
	CurrentDBFile = "curr_db"

	SchemaSuffix = ".schema.json"
	RowsSuffix   = ".json"
)

// Catalog manages the namespace root: one directory per database plus the
// current-database pointer. A database exists iff its directory exists.
type Catalog struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

func New(fs afero.Fs, root string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{fs: fs, root: root, logger: logger}
}

func (c *Catalog) Fs() afero.Fs { return c.fs }

func (c *Catalog) Root() string { return c.root }

func (c *Catalog) Logger() *zap.Logger { return c.logger }

// DatabaseDir returns the directory of a database without checking it.
func (c *Catalog) DatabaseDir(name string) string {
	return filepath.Join(c.root, name)
}

func (c *Catalog) pointerPath() string {
	return filepath.Join(c.root, CurrentDBFile)
}

// ValidateName rejects names that cannot be used as a single path element.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// validateDatabaseName also rejects the pointer document's name, which
// shares the namespace root with the database directories.
func validateDatabaseName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if name == CurrentDBFile {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

func (c *Catalog) Exists(name string) (bool, error) {
	if err := validateDatabaseName(name); err != nil {
		return false, err
	}
	return afero.DirExists(c.fs, c.DatabaseDir(name))
}

// mustExist returns ErrDatabaseNotFound unless the database directory exists.
func (c *Catalog) mustExist(name string) error {
	ok, err := c.Exists(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}
	return nil
}

// Create makes the database directory, creating the namespace root if
// needed.
func (c *Catalog) Create(name string) error {
	ok, err := c.Exists(name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", ErrDuplicatedDatabase, name)
	}

	dir := c.DatabaseDir(name)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	c.logger.Debug("created database", zap.String("name", name), zap.String("dir", dir))
	return nil
}

// Drop removes an empty database directory. Removing a database that still
// holds tables fails with the underlying filesystem error.
func (c *Catalog) Drop(name string) error {
	if err := c.mustExist(name); err != nil {
		return err
	}

	dir := c.DatabaseDir(name)
	if err := c.fs.Remove(dir); err != nil {
		return err
	}
	c.logger.Debug("dropped database", zap.String("name", name), zap.String("dir", dir))
	return nil
}

// Use persists name as the current database.
func (c *Catalog) Use(name string) error {
	if err := c.mustExist(name); err != nil {
		return err
	}

	path := c.pointerPath()
	if err := afero.WriteFile(c.fs, path, []byte(name), 0o644); err != nil {
		return err
	}
	c.logger.Debug("switched database", zap.String("name", name), zap.String("pointer", path))
	return nil
}

// Current reads the pointer and checks that the database it names still
// exists.
func (c *Catalog) Current() (string, error) {
	data, err := afero.ReadFile(c.fs, c.pointerPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoCurrentDatabase
		}
		return "", err
	}

	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", ErrNoCurrentDatabase
	}
	if err := c.mustExist(name); err != nil {
		return "", err
	}
	return name, nil
}

// List returns the database names in sorted order. A namespace root that
// was never created holds no databases.
func (c *Catalog) List() ([]string, error) {
	ok, err := afero.DirExists(c.fs, c.root)
	if err != nil || !ok {
		return nil, err
	}

	infos, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, fi := range infos {
		if fi.IsDir() {
			names = append(names, fi.Name())
		}
	}
	return names, nil
}

// ListTables returns the tables of a database, found by their schema
// documents, in sorted order.
func (c *Catalog) ListTables(db string) ([]string, error) {
	if err := c.mustExist(db); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(c.fs, c.DatabaseDir(db))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, fi := range infos {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), SchemaSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(fi.Name(), SchemaSuffix))
	}
	return names, nil
}
