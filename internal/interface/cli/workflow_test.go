package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lua")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestWorkflow_ProjectLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
	t.Setenv("GNARTGEN_HOME", t.TempDir())

	dir := t.TempDir()
	proj := filepath.Join(dir, "art.db")

	out, err := executeCommand(t, "new", proj)
	require.NoError(t, err)
	assert.Contains(t, out, proj)
	require.FileExists(t, proj)

	script := writeScript(t, "forward(40)\nturn(90)\nforward(40)\n")
	out, err = executeCommand(t, "save", script, "--project", proj, "--name", "corner", "-d", "right angle")
	require.NoError(t, err)
	assert.Contains(t, out, "saved script 1")

	out, err = executeCommand(t, "list", "--project", proj)
	require.NoError(t, err)
	assert.Contains(t, out, "corner")
	assert.Contains(t, out, "right angle")

	out, err = executeCommand(t, "show", "1", "--project", proj)
	require.NoError(t, err)
	assert.Contains(t, out, "forward(40)")

	rendered := filepath.Join(dir, "render.png")
	_, err = executeCommand(t, "render", "1", "--project", proj, "-o", rendered)
	require.NoError(t, err)
	f, err := os.Open(rendered)
	require.NoError(t, err)
	_, err = png.Decode(f)
	f.Close()
	require.NoError(t, err, "render output must be a valid PNG")

	// Rendering refreshed the stored thumbnail, so export now succeeds.
	thumb := filepath.Join(dir, "thumb.png")
	_, err = executeCommand(t, "export", "1", "--project", proj, "-o", thumb)
	require.NoError(t, err)
	assert.FileExists(t, thumb)
}

func TestWorkflow_SaveReportsAssignedID(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
	t.Setenv("GNARTGEN_HOME", t.TempDir())

	dir := t.TempDir()
	proj := filepath.Join(dir, "art.db")
	_, err := executeCommand(t, "new", proj)
	require.NoError(t, err)

	first := writeScript(t, "forward(10)\n")
	out, err := executeCommand(t, "save", first, "--project", proj, "--name", "one")
	require.NoError(t, err)
	assert.Contains(t, out, "saved script 1")

	second := writeScript(t, "forward(20)\n")
	out, err = executeCommand(t, "save", second, "--project", proj, "--name", "two")
	require.NoError(t, err)
	assert.Contains(t, out, "saved script 2")

	out, err = executeCommand(t, "save", second, "--project", proj, "--name", "one", "--id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "updated script 1")

	// The update replaced record 1's source in place.
	out, err = executeCommand(t, "show", "1", "--project", proj)
	require.NoError(t, err)
	assert.Contains(t, out, "forward(20)")
}

func TestWorkflow_ExportBeforeRenderFails(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
	t.Setenv("GNARTGEN_HOME", t.TempDir())

	dir := t.TempDir()
	proj := filepath.Join(dir, "art.db")
	_, err := executeCommand(t, "new", proj)
	require.NoError(t, err)

	script := writeScript(t, "forward(10)\n")
	_, err = executeCommand(t, "save", script, "--project", proj, "--name", "bare")
	require.NoError(t, err)

	_, err = executeCommand(t, "export", "1", "--project", proj, "-o", filepath.Join(dir, "t.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no thumbnail")
}

func TestWorkflow_RunWithoutProject(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
	t.Setenv("GNARTGEN_HOME", t.TempDir())

	script := writeScript(t, "for i = 1, 4 do forward(30); turn(90) end\n")
	out := filepath.Join(t.TempDir(), "square.png")

	_, err := executeCommand(t, "run", script, "-o", out)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestWorkflow_RunSyntaxErrorWritesNothing(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
	t.Setenv("GNARTGEN_HOME", t.TempDir())

	script := writeScript(t, "forward(\n")
	out := filepath.Join(t.TempDir(), "broken.png")

	_, err := executeCommand(t, "run", script, "-o", out)
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestWorkflow_SaveRequiresProject(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
	t.Setenv("GNARTGEN_HOME", t.TempDir())

	script := writeScript(t, "forward(1)\n")
	_, err := executeCommand(t, "save", script, "--name", "nowhere")
	require.ErrorIs(t, err, errProjectRequired)
}

func TestWorkflow_ShowMissingRecord(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
	t.Setenv("GNARTGEN_HOME", t.TempDir())

	proj := filepath.Join(t.TempDir(), "art.db")
	_, err := executeCommand(t, "new", proj)
	require.NoError(t, err)

	_, err = executeCommand(t, "show", "99", "--project", proj)
	require.Error(t, err)
}
