package sqlite

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnartgen/internal/domain/model/script"
	"gnartgen/internal/domain/repository"
)

func TestMigrator_IsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	m := NewMigrator(db)
	require.NoError(t, m.Migrate())
	// Applying the schema to an already-correct database is a no-op.
	require.NoError(t, m.Migrate())
	require.NoError(t, m.Migrate())
}

func TestMigrator_KeepsExistingRows(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, script.NewRecord("survivor", "", "forward(1)"))
	require.NoError(t, err)

	require.NoError(t, NewMigrator(s.db).Migrate())

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "survivor", entries[0].Name)
}

func TestMigrator_RejectsConflictingTable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	// A table of the same name but a foreign shape must not pass as a
	// valid project store.
	_, err = db.Exec(`CREATE TABLE scripts (something_else TEXT)`)
	require.NoError(t, err)

	err = NewMigrator(db).Migrate()
	assert.ErrorIs(t, err, repository.ErrSchemaInvalid)
}
