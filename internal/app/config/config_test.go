package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := Load(fs, "/home/user/.gnartgen")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_SettingsFileOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := "/home/user/.gnartgen"
	data := []byte("canvas_width: 800\ncanvas_height: 600\neval_timeout: 2s\nlog_level: debug\n")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(base, SettingsFileName), data, 0o644))

	cfg, err := Load(fs, base)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.CanvasWidth)
	assert.Equal(t, 600, cfg.CanvasHeight)
	assert.Equal(t, 2*time.Second, cfg.EvalTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Fields the file omits keep their defaults.
	assert.Equal(t, Default().ThumbWidth, cfg.ThumbWidth)
}

func TestLoad_MalformedFileIsAnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := "/home/user/.gnartgen"
	require.NoError(t, afero.WriteFile(fs, filepath.Join(base, SettingsFileName), []byte("canvas_width: [oops"), 0o644))

	_, err := Load(fs, base)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("GNARTGEN_CANVAS_WIDTH", "1024")
	t.Setenv("GNARTGEN_EVAL_TIMEOUT", "5")
	t.Setenv("GNARTGEN_LOG_LEVEL", "info")

	cfg, err := Load(afero.NewMemMapFs(), "/nowhere")
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.CanvasWidth)
	assert.Equal(t, 5*time.Second, cfg.EvalTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileWinsOverEnv(t *testing.T) {
	t.Setenv("GNARTGEN_CANVAS_WIDTH", "1024")

	fs := afero.NewMemMapFs()
	base := "/home/user/.gnartgen"
	require.NoError(t, afero.WriteFile(fs, filepath.Join(base, SettingsFileName), []byte("canvas_width: 320\n"), 0o644))

	cfg, err := Load(fs, base)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.CanvasWidth)
}

func TestSanitize_ClampsNonsense(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := "/home/user/.gnartgen"
	data := []byte("canvas_width: -3\nthumb_height: 0\neval_timeout: -1s\n")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(base, SettingsFileName), data, 0o644))

	cfg, err := Load(fs, base)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.CanvasWidth, cfg.CanvasWidth)
	assert.Equal(t, def.ThumbHeight, cfg.ThumbHeight)
	assert.Equal(t, def.EvalTimeout, cfg.EvalTimeout)
}
