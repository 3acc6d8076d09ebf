package file

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic_CreatesFileAndParents(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := filepath.Join("/out", "nested", "image.png")

	require.NoError(t, WriteFileAtomic(fs, path, []byte("payload")))

	got, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestWriteFileAtomic_OverwritesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/out/image.png"
	require.NoError(t, afero.WriteFile(fs, path, []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(fs, path, []byte("new")))

	got, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestWriteFileAtomic_LeavesNoTempFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteFileAtomic(fs, "/out/a.png", []byte("x")))

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.png", entries[0].Name())
}
