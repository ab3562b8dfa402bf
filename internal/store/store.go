// Package store provides SQLite-backed durable storage for the loot
// tracker's domain data.
//
// The persistence layer is partitioned into five physical databases:
//
//   - weapons.db: static weapon reference data
//   - attachments.db: amplifiers, scopes and sights
//   - resources.db: resource pricing
//   - crafting.db: blueprints and material requirements
//   - user_data.db: the append-only session/event ledger plus user tables
//
// Static stores are written only by the migration pipeline; user_data is
// written at runtime by the ledger engine. Stores are independently
// consistent - a corrupt file disables that store only, and there is no
// cross-store transaction.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: blueprint materials cascade with their blueprint
//
// Query results are ordered deterministically (name ascending unless a
// method documents otherwise) and lookups that find nothing return the
// zero value with ok=false, never an error.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Kind names a domain store. Each kind is bound to one physical database
// file and one schema; the file names are part of the on-disk contract and
// must not change between releases.
type Kind string

const (
	KindWeapons     Kind = "weapons"
	KindAttachments Kind = "attachments"
	KindResources   Kind = "resources"
	KindCrafting    Kind = "crafting"
	KindUserData    Kind = "user_data"
)

// Kinds lists every domain store in a stable order.
var Kinds = []Kind{KindWeapons, KindAttachments, KindResources, KindCrafting, KindUserData}

// FileName returns the stable database file name for this kind.
func (k Kind) FileName() string {
	return string(k) + ".db"
}

// Store provides durable storage for one domain of the loot tracker.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db   *sql.DB
	kind Kind
	path string
}

// Open creates or opens the SQLite database for a domain at the given path.
// The parent directory is created if missing. Applies required pragmas and
// the kind's schema automatically; schema creation is idempotent and never
// errors when tables already exist.
//
// A file that exists but cannot be read as a database fails with a
// *StorageError of CodeCorrupt; that failure is fatal for this store only.
func Open(path string, kind Kind) (*Store, error) {
	if _, ok := schemaFiles[kind]; !ok {
		return nil, fmt.Errorf("open store: unknown kind %q", kind)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open store %s: create directory: %w", kind, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", kind, err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, &StorageError{
			Code:    CodeCorrupt,
			Message: "database file unreadable",
			Store:   string(kind),
			Err:     err,
		}
	}

	if err := applySchema(db, kind); err != nil {
		db.Close()
		return nil, &StorageError{
			Code:    CodeCorrupt,
			Message: "schema creation failed",
			Store:   string(kind),
			Err:     err,
		}
	}

	return &Store{db: db, kind: kind, path: path}, nil
}

// Close closes the database connection.
// Safe to call multiple times.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Kind returns the domain this store is bound to.
func (s *Store) Kind() Kind {
	return s.kind
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// identPattern restricts table names used in dynamically built statements.
var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Count returns the number of rows in the given table. Used by the
// manager's already-populated guard and by the stats report.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if !identPattern.MatchString(table) {
		return 0, fmt.Errorf("count: invalid table name %q", table)
	}
	var n int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Clear deletes all rows from the given tables, in order. Used by the
// migration pipeline's force mode; child tables must come first.
func (s *Store) Clear(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if !identPattern.MatchString(table) {
			return fmt.Errorf("clear: invalid table name %q", table)
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// schemaFiles maps each kind to its embedded schema file.
var schemaFiles = map[Kind]string{
	KindWeapons:     "schema/weapons.sql",
	KindAttachments: "schema/attachments.sql",
	KindResources:   "schema/resources.sql",
	KindCrafting:    "schema/crafting.sql",
	KindUserData:    "schema/user_data.sql",
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables and indexes if they don't exist.
// This function is idempotent.
func applySchema(db *sql.DB, kind Kind) error {
	schemaSQL, err := schemaFS.ReadFile(schemaFiles[kind])
	if err != nil {
		return fmt.Errorf("read schema for %s: %w", kind, err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("execute schema for %s: %w", kind, err)
	}
	return nil
}
