// Package sqlite implements the project store on a single-file SQLite
// database via mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"gnartgen/internal/domain/model/script"
	"gnartgen/internal/domain/repository"
)

// Store implements repository.ScriptRepository over one database handle.
// The handle is not shared: the document controller owns the Store and all
// access runs on its single logical thread.
type Store struct {
	db   *sql.DB
	path string // "" for an in-memory store
}

// OpenMemory creates an empty in-memory store with the schema applied.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", classifyStoreErr(err))
	}
	// A second connection to ":memory:" would see a different database, so
	// the pool must hold exactly one connection and never retire it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := NewMigrator(db).Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenFile opens the store at path and applies the idempotent schema.
// A missing file fails with repository.ErrNotFound; a file that is not a
// valid store fails with repository.ErrSchemaInvalid.
func OpenFile(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open store %s: %w", path, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("open store %s: %w: %v", path, repository.ErrIO, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, classifyStoreErr(err))
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, classifyStoreErr(err))
	}
	if err := NewMigrator(db).Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the backing file path, or "" for an in-memory store.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert persists rec, assigns a new identifier, and sets it on rec.
func (s *Store) Insert(ctx context.Context, rec *script.Record) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO scripts (name, description, source, thumbnail) VALUES (?, ?, ?, ?)`,
		rec.Name(), rec.Description(), rec.Source(), nullableBlob(rec.Thumbnail()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert script: %w", classifyStoreErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert script: last insert id: %w", classifyStoreErr(err))
	}
	rec.SetID(id)
	return id, nil
}

// Update overwrites the record stored under id.
func (s *Store) Update(ctx context.Context, id int64, rec *script.Record) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE scripts SET name = ?, description = ?, source = ?, thumbnail = ? WHERE id = ?`,
		rec.Name(), rec.Description(), rec.Source(), nullableBlob(rec.Thumbnail()), id,
	)
	if err != nil {
		return fmt.Errorf("update script %d: %w", id, classifyStoreErr(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update script %d: rows affected: %w", id, classifyStoreErr(err))
	}
	if affected == 0 {
		return fmt.Errorf("update script %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

// Get loads the record stored under id.
func (s *Store) Get(ctx context.Context, id int64) (*script.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, source, thumbnail FROM scripts WHERE id = ?`, id)

	var (
		gotID       int64
		name        string
		description string
		source      string
		thumbnail   []byte
	)
	if err := row.Scan(&gotID, &name, &description, &source, &thumbnail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get script %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get script %d: scan: %w", id, classifyStoreErr(err))
	}
	return script.ReconstructRecord(gotID, name, description, source, thumbnail), nil
}

// List returns browsing projections ordered by identifier. The order is
// unspecified by the contract but stable within a session.
func (s *Store) List(ctx context.Context) ([]script.ListEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description FROM scripts ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", classifyStoreErr(err))
	}
	defer rows.Close()

	entries := make([]script.ListEntry, 0)
	for rows.Next() {
		var e script.ListEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Description); err != nil {
			return nil, fmt.Errorf("list scripts: scan: %w", classifyStoreErr(err))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scripts: rows: %w", classifyStoreErr(err))
	}
	return entries, nil
}

// Backup writes a full copy of the store to path. The copy is written to a
// temp file in the target directory first and renamed into place so a
// half-written file is never observable under the final name. The design
// assumes no concurrent writer during backup.
func (s *Store) Backup(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("backup store: create directory %s: %w: %v", dir, repository.ErrIO, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-backup-%d-%s", os.Getpid(), filepath.Base(path)))
	defer os.Remove(tmp)

	// VACUUM INTO produces a complete, compacted copy in one statement.
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		return fmt.Errorf("backup store to %s: %w", path, classifyStoreErr(err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("backup store to %s: rename: %w: %v", path, repository.ErrIO, err)
	}
	return nil
}

// nullableBlob maps an absent thumbnail to SQL NULL instead of an empty blob.
func nullableBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// classifyStoreErr maps driver failures onto the repository error taxonomy.
func classifyStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case sqlite3.ErrNotADB, sqlite3.ErrCorrupt, sqlite3.ErrSchema:
			return fmt.Errorf("%w: %v", repository.ErrSchemaInvalid, err)
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrFull, sqlite3.ErrReadonly:
			return fmt.Errorf("%w: %v", repository.ErrIO, err)
		case sqlite3.ErrError:
			// SQL logic errors surface when the file carries a foreign or
			// conflicting schema.
			return fmt.Errorf("%w: %v", repository.ErrSchemaInvalid, err)
		}
	}
	return fmt.Errorf("%w: %v", repository.ErrIO, err)
}
