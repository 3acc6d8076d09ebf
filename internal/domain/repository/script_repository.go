// Package repository defines the persistence boundary for script records.
package repository

import (
	"context"
	"errors"

	"gnartgen/internal/domain/model/script"
)

// Store error taxonomy. Implementations wrap these sentinels so callers can
// classify failures with errors.Is without depending on driver error types.
var (
	// ErrNotFound is returned when no record (or no store file) exists for
	// the requested identifier or path.
	ErrNotFound = errors.New("not found")

	// ErrSchemaInvalid is returned when a file exists but is not a valid
	// project store or its schema cannot be applied.
	ErrSchemaInvalid = errors.New("schema invalid")

	// ErrIO is returned for disk-level failures.
	ErrIO = errors.New("io failure")
)

// ScriptRepository is the transactional key-by-identifier table of script
// records plus whole-store operations. A repository handle is owned
// exclusively by the document controller; it is never shared across
// concurrent callers.
type ScriptRepository interface {
	// Insert persists a new record, assigns its identifier, and sets it
	// back on the record.
	Insert(ctx context.Context, rec *script.Record) (int64, error)

	// Update overwrites the record stored under id. Fails with ErrNotFound
	// if id is absent; in that case the stored record set is unchanged.
	Update(ctx context.Context, id int64, rec *script.Record) error

	// Get loads the record stored under id. Fails with ErrNotFound if absent.
	Get(ctx context.Context, id int64) (*script.Record, error)

	// List returns (id, name, description) projections in an unspecified
	// but stable-within-session order.
	List(ctx context.Context) ([]script.ListEntry, error)

	// Backup copies the whole store atomically to path. The source store
	// stays open and bound.
	Backup(ctx context.Context, path string) error

	// Path returns the backing file path, or "" for an in-memory store.
	Path() string

	// Close releases the underlying handle. The repository must not be
	// used afterwards.
	Close() error
}
