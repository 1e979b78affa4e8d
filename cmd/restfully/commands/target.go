package commands

import (
	"fmt"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/spf13/cobra"
)

// addTargetFlags adds the flags locating a resource.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringSliceP("follow", "l", nil, "link ids to follow from the resource, in order")
	cmd.Flags().StringSliceP("header", "H", nil, "request header as name=value (repeatable)")
	cmd.Flags().Bool("reload", false, "ask caches to revalidate")
}

// openTarget loads the resource at the optional PATH argument, the API entry
// point when omitted, then follows the --follow links.
func openTarget(cmd *cobra.Command, args []string) (*clientSession, *restfully.Resource, error) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	queryPairs, _ := cmd.Flags().GetStringSlice("query")
	headerPairs, _ := cmd.Flags().GetStringSlice("header")
	follow, _ := cmd.Flags().GetStringSlice("follow")
	reload, _ := cmd.Flags().GetBool("reload")

	query, err := parseKeyValues(queryPairs)
	if err != nil {
		return nil, nil, err
	}

	headers, err := parseHeaders(headerPairs)
	if err != nil {
		return nil, nil, err
	}

	cs, err := newClientSession(cmd)
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()

	resource, err := cs.NewResource(target, &restfully.RequestOptions{Headers: headers})
	if err != nil {
		cs.Close(cmd.ErrOrStderr())

		return nil, nil, err
	}

	resource, err = resource.Load(ctx, &restfully.LoadOptions{Reload: reload, Query: query})
	if err != nil {
		cs.Close(cmd.ErrOrStderr())

		return nil, nil, err
	}

	for _, id := range follow {
		resource, err = resource.Follow(ctx, id)
		if err != nil {
			cs.Close(cmd.ErrOrStderr())

			return nil, nil, fmt.Errorf("failed to follow %q: %w", id, err)
		}
	}

	return cs, resource, nil
}

func parseHeaders(pairs []string) (map[string]string, error) {
	params, err := parseKeyValues(pairs)
	if err != nil || params == nil {
		return nil, err
	}

	headers := make(map[string]string, len(params))

	for name, value := range params {
		headers[name] = formatValue(value)
	}

	return headers, nil
}
