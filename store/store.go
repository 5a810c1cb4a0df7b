package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // pure-Go driver, registers as "sqlite"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

var (
	// ErrNotFound reports a missing row for socio and assembly lookups. Staff
	// lookups return the engine's own sentinel instead.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidState reports an assembly state outside the lifecycle.
	ErrInvalidState = errors.New("store: invalid assembly state")
)

// Store owns the SQLite handle and hands out the per-table accessors. A Store
// is safe for concurrent use; *sql.DB does the pooling.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables foreign keys and WAL,
// and applies pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(embeddedMigrations); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Staff returns the staff-account accessor.
func (s *Store) Staff() *StaffStore {
	return &StaffStore{db: s.db}
}

// Socios returns the member-registry accessor.
func (s *Store) Socios() *SociosStore {
	return &SociosStore{db: s.db}
}

// Assemblies returns the assembly accessor.
func (s *Store) Assemblies() *AssembliesStore {
	return &AssembliesStore{db: s.db}
}

// Config returns the key/value configuration accessor.
func (s *Store) Config() *ConfigStore {
	return &ConfigStore{db: s.db}
}

// ResetPadron deletes every socio in one transaction. Staff, assemblies and
// configuration are untouched.
func (s *Store) ResetPadron(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM socios`)
		return err
	})
}

// ResetSystem wipes the operational data: socios and assemblies. Staff
// accounts and configuration survive so the system stays reachable.
func (s *Store) ResetSystem(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assemblies`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM socios`)
		return err
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// migrate applies migrations/*.sql in name order, tracking applied files in
// schema_migrations so non-idempotent statements never run twice.
func (s *Store) migrate(migrationsFS fs.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("store: create schema_migrations: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	applied := make(map[string]bool)
	rows, err := s.db.Query(`SELECT filename FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("store: query schema_migrations: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("store: scan migration row: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("store: iterate migrations: %w", err)
	}
	rows.Close()

	for _, file := range files {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+file)
		if err != nil {
			return fmt.Errorf("store: read migration %s: %w", file, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("store: apply migration %s: %w", file, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations (filename) VALUES (?)`, file,
		); err != nil {
			return fmt.Errorf("store: record migration %s: %w", file, err)
		}
	}

	return nil
}
