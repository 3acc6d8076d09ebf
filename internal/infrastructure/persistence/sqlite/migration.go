package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gnartgen/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

// Migrator applies the project schema to a database handle.
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new schema migrator.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Migrate applies the schema and verifies the resulting table shape.
// Applying it to an already-correct file is safe; a file that is not a
// database, or that carries a conflicting scripts table, fails with
// repository.ErrSchemaInvalid.
func (m *Migrator) Migrate() error {
	if err := m.applySchema(); err != nil {
		return fmt.Errorf("apply schema: %w", classifyStoreErr(err))
	}
	if err := m.verify(); err != nil {
		return fmt.Errorf("verify schema: %w", err)
	}
	return nil
}

func (m *Migrator) applySchema() error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range splitSQLStatements(schemaSQL) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("execute statement %d failed: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// verify probes the expected columns. CREATE TABLE IF NOT EXISTS is silent
// when a table of the same name but a different shape already exists; the
// probe catches that case.
func (m *Migrator) verify() error {
	var probe sql.NullString
	err := m.db.QueryRow(
		`SELECT name || description || source FROM scripts LIMIT 1`,
	).Scan(&probe)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: scripts table unusable: %v", repository.ErrSchemaInvalid, err)
	}
	return nil
}

// splitSQLStatements splits an SQL file into executable statements,
// dropping comment lines.
func splitSQLStatements(s string) []string {
	var clean []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		clean = append(clean, line)
	}
	return strings.Split(strings.Join(clean, "\n"), ";")
}
