package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gnartgen/internal/application/service"
	"gnartgen/internal/infrastructure/di"
)

func newRenderCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Re-render a stored script and refresh its thumbnail",
		Long: "Render selects the record, evaluates its stored source, writes the\n" +
			"canvas to a PNG, and refreshes the record's thumbnail in the project.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return withContainer(cmd, true, func(ctx context.Context, c *di.Container) error {
				rec, err := c.Docs.SelectItem(ctx, id)
				if err != nil {
					return err
				}

				runCtx, cancel := context.WithTimeout(ctx, c.Config.EvalTimeout)
				defer cancel()

				canvas := newCanvas(c.Config)
				if err := c.Dispatcher.Dispatch(runCtx, service.Signal{
					Name:    service.SignalRunScript,
					Payload: service.RunScriptPayload{Source: rec.Source(), Surface: canvas},
				}); err != nil {
					return err
				}
				if err := writePNG(outPath, canvas); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rendered script %d to %s\n", id, outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "out.png", "output PNG path")
	return cmd
}
