package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"gnartgen/internal/infrastructure/di"
	"gnartgen/internal/infrastructure/persistence/file"
)

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a stored thumbnail as PNG",
		Args:  cobra.ExactArgs(1),
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
				if len(rec.Thumbnail()) == 0 {
					return fmt.Errorf("script %d has no thumbnail yet; render it first", id)
				}
				if err := file.WriteFileAtomic(afero.NewOsFs(), outPath, rec.Thumbnail()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported thumbnail of script %d to %s\n", id, outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "thumbnail.png", "output PNG path")
	return cmd
}
