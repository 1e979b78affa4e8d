package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find PATH ID",
		Short: "Find an item of a collection",
		Long: `Find the item that ID designates in the collection at PATH. The pages
already fetched are searched first, then the next pages. With --guess, the item
URI is guessed from the last known item before walking the pages.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, resource, err := openTarget(cmd, args[:1])
			if err != nil {
				return err
			}
			defer cs.Close(cmd.ErrOrStderr())

			if !resource.IsCollection() {
				return fmt.Errorf("%w: %s", ErrNotACollection, resource.URI())
			}

			item, err := resource.Collection().Find(cmd.Context(), args[1])
			if err != nil {
				return fmt.Errorf("failed to find %q: %w", args[1], err)
			}

			if item == nil {
				return fmt.Errorf("%w: %s in %s", ErrItemNotFound, args[1], resource.URI())
			}

			item, err = item.Expand(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to expand %q: %w", args[1], err)
			}

			return resourceRenderer.Render(cmd.OutOrStdout(), item, viper.GetString("output"))
		},
	}

	addTargetFlags(cmd)

	return cmd
}
