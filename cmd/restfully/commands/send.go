package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type sendFunc func(ctx context.Context, r *restfully.Resource, payload any, opts *restfully.SubmitOptions) (*restfully.Resource, error)

// SendConfig holds configuration for creating payload commands.
type SendConfig struct {
	Use   string
	Short string
	Long  string
	Verb  string
	Send  sendFunc
}

// NewSubmitCommand creates the submit command
func NewSubmitCommand() *cobra.Command {
	return createSendCommand(SendConfig{
		Use:   "submit [PATH]",
		Short: "POST a payload to a resource",
		Long: `POST a JSON or YAML payload to the resource at PATH. The payload is encoded
with the media type of the resource. When the server answers 201 or 202, the
resource found at its Location is displayed.`,
		Verb: "submit",
		Send: func(ctx context.Context, r *restfully.Resource, payload any, opts *restfully.SubmitOptions) (*restfully.Resource, error) {
			return r.Submit(ctx, payload, opts)
		},
	})
}

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	return createSendCommand(SendConfig{
		Use:   "update [PATH]",
		Short: "PUT a payload to a resource",
		Long:  "PUT a JSON or YAML payload to the resource at PATH and display the resource once reloaded",
		Verb:  "update",
		Send:  func(ctx context.Context, r *restfully.Resource, payload any, opts *restfully.SubmitOptions) (*restfully.Resource, error) {
			return r.Update(ctx, payload, opts)
		},
	})
}

func createSendCommand(config SendConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.Use,
		Short: config.Short,
		Long:  config.Long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}

			contentType, _ := cmd.Flags().GetString("content-type")

			cs, resource, err := openTarget(cmd, args)
			if err != nil {
				return err
			}
			defer cs.Close(cmd.ErrOrStderr())

			opts := &restfully.SubmitOptions{}
			if contentType != "" {
				opts.Headers = map[string]string{"Content-Type": contentType}
			}

			result, err := config.Send(cmd.Context(), resource, plain(payload), opts)
			if err != nil {
				return fmt.Errorf("failed to %s %s: %w", config.Verb, resource.URI(), err)
			}

			if result == nil {
				return ErrNoContent
			}

			return resourceRenderer.Render(cmd.OutOrStdout(), result, viper.GetString("output"))
		},
	}

	addTargetFlags(cmd)
	cmd.Flags().StringP("data", "d", "", "payload as JSON or YAML")
	cmd.Flags().StringP("file", "f", "", "file holding the payload")
	cmd.Flags().String("content-type", "", "content type of the payload (defaults to the media type of the resource)")

	return cmd
}
