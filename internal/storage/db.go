// ABOUTME: SQLite database connection and lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/chococrunch/internal/ingest"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps the SQLite database connection.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates a SQLite database at the given path and ensures the
// schema exists. MemoryPath gives an in-memory database.
func Open(dbPath string) (*DB, error) {
	if !isMemory(dbPath) {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every in-memory connection is its own database; keep exactly one.
	db.SetMaxOpenConns(1)

	d := &DB{db: db, dbPath: dbPath}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := d.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return d, nil
}

// OpenExisting opens a previously materialized database file and checks
// that it carries the core relations. Failures are *ingest.LoadError.
func OpenExisting(ctx context.Context, dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, &ingest.LoadError{Kind: ingest.KindMissingFile, Source: dbPath, Err: err}
		}
		return nil, &ingest.LoadError{Kind: ingest.KindUnreadable, Source: dbPath, Err: err}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &ingest.LoadError{Kind: ingest.KindInvalidDatabase, Source: dbPath, Err: err}
	}
	db.SetMaxOpenConns(1)
	d := &DB{db: db, dbPath: dbPath}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, &ingest.LoadError{Kind: ingest.KindInvalidDatabase, Source: dbPath, Err: err}
	}

	missing, err := d.missingTables(ctx)
	if err != nil {
		_ = db.Close()
		return nil, &ingest.LoadError{Kind: ingest.KindInvalidDatabase, Source: dbPath, Err: err}
	}
	if len(missing) > 0 {
		_ = db.Close()
		return nil, &ingest.LoadError{
			Kind:    ingest.KindInvalidDatabase,
			Source:  dbPath,
			Columns: missing,
			Err:     fmt.Errorf("missing tables"),
		}
	}

	return d, nil
}

// Path returns the path the database was opened with.
func (d *DB) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// SaveCopy writes a consistent on-disk copy of the database to path,
// replacing any file already there.
func (d *DB) SaveCopy(ctx context.Context, path string) error {
	if isMemory(path) {
		return fmt.Errorf("save copy: target must be a file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old copy: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, "VACUUM INTO "+quoteString(path)); err != nil {
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("set database permissions: %w", err)
	}
	return nil
}

// configurePragmas sets up SQLite for this workload.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if !isMemory(d.dbPath) {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func isMemory(path string) bool {
	return path == MemoryPath || strings.HasPrefix(path, "file::memory:")
}

func joinIdents(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = quoteIdent(c)
	}
	return strings.Join(parts, ", ")
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteString(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
