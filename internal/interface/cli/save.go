package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gnartgen/internal/infrastructure/di"
)

func newSaveCmd() *cobra.Command {
	var (
		id          int64
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "save <script-file>",
		Short: "Save a script into the project",
		Long: "Save inserts a new script record, or with --id updates an existing one.\n" +
			"Pass \"-\" as the file to read the source from stdin. Saving never\n" +
			"touches a record's thumbnail; run or render refreshes it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return withContainer(cmd, true, func(ctx context.Context, c *di.Container) error {
				var recordID *int64
				if cmd.Flags().Changed("id") {
					recordID = &id
				}
				// The controller is called directly here because the command
				// reports the assigned identifier back to the user.
				savedID, err := c.Docs.SaveItem(ctx, recordID, name, description, source)
				if err != nil {
					return err
				}
				if recordID != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "updated script %d\n", savedID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "saved script %d\n", savedID)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "identifier of an existing record to update")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-text description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script %s: %w", path, err)
	}
	return string(data), nil
}
