package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gnartgen/internal/infrastructure/di"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scripts stored in a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, true, func(ctx context.Context, c *di.Container) error {
				entries, err := c.Docs.List(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no scripts")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
				for _, e := range entries {
					fmt.Fprintf(w, "%d\t%s\t%s\n", e.ID, e.Name, e.Description)
				}
				return w.Flush()
			})
		},
	}
}
