// Package cli is the signal boundary: each command raises one of the
// recognized signals against the document controller.
package cli

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"gnartgen/internal/app/config"
	"gnartgen/internal/application/service"
	"gnartgen/internal/infrastructure/di"
	"gnartgen/internal/interface/cli/version"
)

// globalConfig holds the loaded configuration for all commands.
var globalConfig = config.Default()

// NewRoot builds the root command.
func NewRoot() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "gnartgen",
		Short: "Author and render turtle-graphics art scripts",
		Long: "gnartgen evaluates small Lua turtle-graphics scripts, renders them to\n" +
			"PNG images, and keeps scripts with their thumbnails in a single-file\n" +
			"SQLite project.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			baseDir := ".gnartgen"
			if home := os.Getenv("GNARTGEN_HOME"); home != "" {
				baseDir = home
			}

			cfg, err := config.Load(afero.NewOsFs(), baseDir)
			if err != nil {
				// Continue with defaults if loading fails
				defaultLogger.Warn("settings ignored: %v", err)
				cfg = config.Default()
			}
			globalConfig = cfg
			defaultLogger.SetLevel(LogLevelFromString(cfg.LogLevel))
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	cmd.PersistentFlags().StringVarP(&projectPath, "project", "p", "", "path to a project file (.db)")

	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newSaveCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(version.NewCommand())
	return cmd
}

// errProjectRequired is returned by commands that cannot operate on an
// unsaved in-memory project.
var errProjectRequired = errors.New("a project file is required: pass --project")

// withContainer builds the wired application, optionally binds the project
// named by --project, runs fn, and tears everything down.
func withContainer(cmd *cobra.Command, requireProject bool, fn func(ctx context.Context, c *di.Container) error) error {
	c, err := di.NewContainer(globalConfig, defaultLogger)
	if err != nil {
		// An unusable empty project leaves nothing to fall back to.
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	projectPath, _ := cmd.Flags().GetString("project")
	if projectPath != "" {
		if err := c.Dispatcher.Dispatch(ctx, service.Signal{
			Name:    service.SignalOpen,
			Payload: service.OpenPayload{Path: projectPath},
		}); err != nil {
			return err
		}
	} else if requireProject {
		return errProjectRequired
	}

	return fn(ctx, c)
}

// newCanvas allocates the render surface the way the windowed UI would hand
// one in: a white RGBA image of the configured canvas size.
func newCanvas(cfg config.Config) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.CanvasWidth, cfg.CanvasHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}
