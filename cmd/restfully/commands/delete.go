package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete PATH",
		Short: "Delete a resource",
		Long:  "Send DELETE to the resource at PATH when its representation allows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, resource, err := openTarget(cmd, args)
			if err != nil {
				return err
			}
			defer cs.Close(cmd.ErrOrStderr())

			deleted, err := resource.Delete(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", resource.URI(), err)
			}

			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", resource.URI())
			}

			return nil
		},
	}

	addTargetFlags(cmd)

	return cmd
}
