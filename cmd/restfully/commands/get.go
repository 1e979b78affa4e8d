package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get [PATH]",
		Aliases: []string{"show"},
		Short:   "Fetch a resource",
		Long:    "Fetch the resource at PATH, relative to the API entry point, and display its properties",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, resource, err := openTarget(cmd, args)
			if err != nil {
				return err
			}
			defer cs.Close(cmd.ErrOrStderr())

			return resourceRenderer.Render(cmd.OutOrStdout(), resource, viper.GetString("output"))
		},
	}

	addTargetFlags(cmd)

	return cmd
}
