package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gnartgen/internal/application/service"
	"gnartgen/internal/infrastructure/di"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <path>",
		Short: "Create an empty project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return withContainer(cmd, false, func(ctx context.Context, c *di.Container) error {
				// The container starts on a fresh in-memory project;
				// save-as binds it to the new file.
				if err := c.Dispatcher.Dispatch(ctx, service.Signal{
					Name:    service.SignalSaveAs,
					Payload: service.OpenPayload{Path: path},
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", c.Docs.Title())
				return nil
			})
		},
	}
}
