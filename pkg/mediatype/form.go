package mediatype

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

type formParser struct{}

func (formParser) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case url.Values:
		return []byte(t.Encode()), nil
	case map[string]any:
		return []byte(FlattenParams(t).Encode()), nil
	case map[string]string:
		values := url.Values{}
		for k, s := range t {
			values.Set(k, s)
		}

		return []byte(values.Encode()), nil
	}

	// Structs and other maps go through their JSON shape.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}

	var m map[string]any

	err = json.Unmarshal(data, &m)
	if err != nil {
		return nil, fmt.Errorf("%w: form encoding needs an object, got %T", ErrUnsupportedValue, v)
	}

	return []byte(FlattenParams(m).Encode()), nil
}

func (formParser) Decode(data []byte) (any, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, err
	}

	return NestParams(values), nil
}

// FormURLEncoded handles application/x-www-form-urlencoded bodies with
// bracketed nesting ("a[b]=c", "a[]=1").
func FormURLEncoded() *MediaType {
	return New(NameForm, formParser{}, PlainSemantics{}, "application/x-www-form-urlencoded")
}

// FlattenParams converts nested maps and slices into bracketed keys.
func FlattenParams(params map[string]any) url.Values {
	values := url.Values{}

	for _, key := range sortedKeys(params) {
		flattenInto(values, key, params[key])
	}

	return values
}

func flattenInto(values url.Values, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		for _, key := range sortedKeys(t) {
			flattenInto(values, prefix+"["+key+"]", t[key])
		}
	case []any:
		for _, item := range t {
			flattenInto(values, prefix+"[]", item)
		}
	case []string:
		for _, item := range t {
			values.Add(prefix+"[]", item)
		}
	case nil:
		values.Add(prefix, "")
	default:
		values.Add(prefix, stringify(t))
	}
}

// NestParams is the inverse of FlattenParams. Repeated plain keys keep their
// last value.
func NestParams(values url.Values) map[string]any {
	root := map[string]any{}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		if len(vals) == 0 {
			continue
		}

		setNested(root, splitParamKey(key), vals)
	}

	return root
}

func splitParamKey(key string) []string {
	name, rest, found := strings.Cut(key, "[")
	if !found || name == "" {
		return []string{key}
	}

	segments := []string{name}

	for rest != "" {
		segment, after, ok := strings.Cut(rest, "]")
		if !ok {
			return []string{key}
		}

		segments = append(segments, segment)
		rest = strings.TrimPrefix(after, "[")
	}

	return segments
}

func setNested(m map[string]any, segments []string, vals []string) {
	key := segments[0]

	if len(segments) == 1 {
		m[key] = vals[len(vals)-1]

		return
	}

	if len(segments) == 2 && segments[1] == "" {
		list, _ := m[key].([]any)
		for _, v := range vals {
			list = append(list, v)
		}

		m[key] = list

		return
	}

	child, ok := m[key].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[key] = child
	}

	setNested(child, segments[1:], vals)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
