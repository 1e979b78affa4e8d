package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// JSON formatting.
	defaultJSONIndent = 2
)

// Common static errors used throughout the commands package.
var (
	ErrNotACollection  = errors.New("resource is not a collection")
	ErrItemNotFound    = errors.New("item not found")
	ErrPayloadRequired = errors.New("payload is required (use --data or --file)")
	ErrPayloadConflict = errors.New("use either --data or --file, not both")
	ErrInvalidKeyValue = errors.New("invalid key=value pair")
	ErrNoTerminal      = errors.New("cannot prompt for a password without a terminal")
	ErrNoContent       = errors.New("the server returned no content")
)

// parseKeyValues turns key=value pairs into a query map. Repeated keys are
// collected into a list.
func parseKeyValues(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyValue, pair)
		}

		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case string:
			params[key] = []string{existing, value}
		case []string:
			params[key] = append(existing, value)
		}
	}

	return params, nil
}

// readPayload returns the payload given with --data or --file. Both JSON and
// YAML are accepted.
func readPayload(cmd *cobra.Command) (any, error) {
	data, _ := cmd.Flags().GetString("data")
	file, _ := cmd.Flags().GetString("file")

	switch {
	case data != "" && file != "":
		return nil, ErrPayloadConflict
	case file != "":
		content, err := os.ReadFile(file) // #nosec G304 -- file is chosen by the user
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}

		data = string(content)
	}

	return parsePayload(data)
}

func parsePayload(data string) (any, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrPayloadRequired
	}

	var payload any

	err := yaml.Unmarshal([]byte(data), &payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	return payload, nil
}

// formatValue renders a property value in a table cell.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return NotAvailable
	case string:
		return t
	case json.Number:
		return t.String()
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}

	data, err := json.Marshal(plain(v))
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(data)
}

// plain replaces json.Number values with Go numbers so that every encoder
// renders them as numbers.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}

		if f, err := t.Float64(); err == nil {
			return f
		}

		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = plain(item)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}

		return out
	}

	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
