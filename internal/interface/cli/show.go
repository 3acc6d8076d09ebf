package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gnartgen/internal/infrastructure/di"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored script's source",
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
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "# %s", rec.Name())
				if rec.Description() != "" {
					fmt.Fprintf(out, " - %s", rec.Description())
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, rec.Source())
				return nil
			})
		},
	}
}
