package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// VersionInfo describes the build of the CLI.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Library string `json:"library" yaml:"library"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	renderer := &OutputRenderer[VersionInfo]{
		Plain: func(info VersionInfo) any { return info },
		RenderTable: func(w io.Writer, info VersionInfo) error {
			table := tablewriter.NewWriter(w)
			table.Header("Property", "Value")
			_ = table.Append("Version", info.Version)
			_ = table.Append("Library", info.Library)
			_ = table.Append("Commit", info.Commit)
			_ = table.Append("Built", info.Built)

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the restfully CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version: version,
				Library: constants.Version,
				Commit:  commit,
				Built:   date,
			}

			return renderer.Render(cmd.OutOrStdout(), info, viper.GetString("output"))
		},
	}
}
