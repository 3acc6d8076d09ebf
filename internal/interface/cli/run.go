package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"gnartgen/internal/application/service"
	"gnartgen/internal/infrastructure/di"
	"gnartgen/internal/infrastructure/persistence/file"
)

func newRunCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "run <script-file>",
		Short: "Evaluate a script and render it to a PNG",
		Long: "Run evaluates the script through the embedded interpreter and paints\n" +
			"the resulting turtle commands onto a fresh canvas. Evaluation is\n" +
			"bounded by the configured eval timeout; a looping script is cancelled\n" +
			"and reported, and nothing is written.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return withContainer(cmd, false, func(ctx context.Context, c *di.Container) error {
				runCtx, cancel := context.WithTimeout(ctx, c.Config.EvalTimeout)
				defer cancel()

				canvas := newCanvas(c.Config)
				if err := c.Dispatcher.Dispatch(runCtx, service.Signal{
					Name:    service.SignalRunScript,
					Payload: service.RunScriptPayload{Source: source, Surface: canvas},
				}); err != nil {
					return err
				}
				if err := writePNG(outPath, canvas); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "out.png", "output PNG path")
	return cmd
}

// writePNG encodes img and writes it atomically so a crash mid-write never
// leaves a truncated image under the final name.
func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.WriteFileAtomic(afero.NewOsFs(), path, buf.Bytes())
}
