package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/restfully/pkg/mediatype"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewTypesCommand creates the types command
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered media types",
		Long: `List the media types a session starts with, in registration order, with the
content types each one handles. Types given with --media-type are included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := mediatype.DefaultRegistry()

			for _, name := range viper.GetStringSlice("media_types") {
				mt, err := mediatype.Builtin(strings.TrimSpace(name))
				if err != nil {
					return fmt.Errorf("failed to register %q: %w", name, err)
				}

				err = registry.Register(mt)
				if err != nil {
					return fmt.Errorf("failed to register %q: %w", name, err)
				}
			}

			return typesRenderer.Render(cmd.OutOrStdout(), registry.Types(), viper.GetString("output"))
		},
	}
}
