// Package config loads application settings.
//
// Priority: settings.yaml > environment > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// SettingsFileName is the optional settings file looked up in the base dir.
const SettingsFileName = "settings.yaml"

// Config holds the application configuration.
type Config struct {
	CanvasWidth  int           `yaml:"canvas_width"`  // render surface width in pixels
	CanvasHeight int           `yaml:"canvas_height"` // render surface height in pixels
	ThumbWidth   int           `yaml:"thumb_width"`   // stored thumbnail width
	ThumbHeight  int           `yaml:"thumb_height"`  // stored thumbnail height
	EvalTimeout  time.Duration `yaml:"eval_timeout"`  // upper bound for one script evaluation
	LogLevel     string        `yaml:"log_level"`     // debug | info | warn | error
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		CanvasWidth:  512,
		CanvasHeight: 512,
		ThumbWidth:   128,
		ThumbHeight:  128,
		EvalTimeout:  10 * time.Second,
		LogLevel:     "warn",
	}
}

// Load reads settings from baseDir/settings.yaml on fs, falling back to
// environment variables and then defaults. A missing settings file is not
// an error; a malformed one is.
func Load(fs afero.Fs, baseDir string) (Config, error) {
	cfg := fromEnv(Default())

	path := filepath.Join(baseDir, SettingsFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return sanitize(cfg), nil
}

func fromEnv(cfg Config) Config {
	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	toInt := func(s string, def int) int {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return def
	}
	toDur := func(s string, def time.Duration) time.Duration {
		if s == "" {
			return def
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second
		}
		return def
	}

	cfg.CanvasWidth = toInt(get("GNARTGEN_CANVAS_WIDTH", ""), cfg.CanvasWidth)
	cfg.CanvasHeight = toInt(get("GNARTGEN_CANVAS_HEIGHT", ""), cfg.CanvasHeight)
	cfg.ThumbWidth = toInt(get("GNARTGEN_THUMB_WIDTH", ""), cfg.ThumbWidth)
	cfg.ThumbHeight = toInt(get("GNARTGEN_THUMB_HEIGHT", ""), cfg.ThumbHeight)
	cfg.EvalTimeout = toDur(get("GNARTGEN_EVAL_TIMEOUT", ""), cfg.EvalTimeout)
	cfg.LogLevel = get("GNARTGEN_LOG_LEVEL", cfg.LogLevel)
	return cfg
}

// sanitize clamps nonsensical values back to defaults.
func sanitize(cfg Config) Config {
	def := Default()
	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = def.CanvasWidth
	}
	if cfg.CanvasHeight <= 0 {
		cfg.CanvasHeight = def.CanvasHeight
	}
	if cfg.ThumbWidth <= 0 {
		cfg.ThumbWidth = def.ThumbWidth
	}
	if cfg.ThumbHeight <= 0 {
		cfg.ThumbHeight = def.ThumbHeight
	}
	if cfg.EvalTimeout <= 0 {
		cfg.EvalTimeout = def.EvalTimeout
	}
	return cfg
}
