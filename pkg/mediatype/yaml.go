package mediatype

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlParser struct{}

func (yamlParser) Encode(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}

	return data, nil
}

func (yamlParser) Decode(data []byte) (any, error) {
	var v any

	err := yaml.Unmarshal(data, &v)
	if err != nil {
		return nil, err
	}

	return normalizeYAML(v), nil
}

// normalizeYAML turns maps with non-string keys into map[string]any so YAML
// values share the shape of decoded JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeYAML(item)
		}

		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[stringify(k)] = normalizeYAML(item)
		}

		return out
	case []any:
		for i, item := range t {
			t[i] = normalizeYAML(item)
		}

		return t
	default:
		return v
	}
}

// YAML handles YAML documents with the same hypermedia conventions as JSON.
func YAML() *MediaType {
	return New(NameYAML, yamlParser{}, HypermediaSemantics{},
		"application/yaml",
		"application/x-yaml",
		"text/yaml",
	)
}
