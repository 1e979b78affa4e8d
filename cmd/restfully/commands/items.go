package commands

import (
	"fmt"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewItemsCommand creates the items command
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items [PATH]",
		Short: "List the items of a collection",
		Long:  "List the items of the collection at PATH. With --all, the next pages are fetched as well.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			limit, _ := cmd.Flags().GetInt("limit")

			cs, resource, err := openTarget(cmd, args)
			if err != nil {
				return err
			}
			defer cs.Close(cmd.ErrOrStderr())

			if !resource.IsCollection() {
				return fmt.Errorf("%w: %s", ErrNotACollection, resource.URI())
			}

			var items []*restfully.Resource

			collect := func(item *restfully.Resource) bool {
				items = append(items, item)

				return limit <= 0 || len(items) < limit
			}

			if all {
				err = resource.Collection().All(cmd.Context(), collect)
				if err != nil {
					return fmt.Errorf("failed to walk collection: %w", err)
				}
			} else {
				resource.Collection().Each(collect)
			}

			return itemsRenderer.Render(cmd.OutOrStdout(), items, viper.GetString("output"))
		},
	}

	addTargetFlags(cmd)
	cmd.Flags().Bool("all", false, "fetch every page")
	cmd.Flags().Int("limit", 0, "maximum number of items to list (0 for no limit)")

	return cmd
}
