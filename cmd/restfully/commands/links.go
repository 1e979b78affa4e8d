package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewLinksCommand creates the links command
func NewLinksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links [PATH]",
		Short: "List the links of a resource",
		Long:  "List the valid links found in the representation of a resource. Their ids can be given to --follow.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, resource, err := openTarget(cmd, args)
			if err != nil {
				return err
			}
			defer cs.Close(cmd.ErrOrStderr())

			return linksRenderer.Render(cmd.OutOrStdout(), resource.Links(), viper.GetString("output"))
		},
	}

	addTargetFlags(cmd)

	return cmd
}
