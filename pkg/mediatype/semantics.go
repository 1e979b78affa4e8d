package mediatype

import "strings"

// PlainSemantics treats payloads as opaque values without links.
type PlainSemantics struct{}

// ExtractLinks implements Semantics.
func (PlainSemantics) ExtractLinks(value any) ([]Link, any) { return nil, value }

// IsCollection implements Semantics.
func (PlainSemantics) IsCollection(any) bool { return false }

// IsComplete implements Semantics.
func (PlainSemantics) IsComplete(any, []Link) bool { return true }

// Represents implements Semantics.
func (PlainSemantics) Represents(any, string) bool { return false }

// Items implements Semantics.
func (PlainSemantics) Items(any) []any { return nil }

// Allow implements Semantics.
func (PlainSemantics) Allow(any) []string { return nil }

// HypermediaSemantics implements the object wire contract shared by the JSON
// and YAML media types:
//
//   - "links" is an array of {rel, href, title?, type?, id?} objects, removed
//     from the exposed properties;
//   - a collection carries "items" (array), "total" and "offset" (integers);
//   - "uid", then "id", identifies a resource;
//   - an object holding nothing but links is a stub;
//   - an optional "allow" array lists the permitted methods.
type HypermediaSemantics struct{}

// ExtractLinks implements Semantics.
func (HypermediaSemantics) ExtractLinks(value any) ([]Link, any) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, value
	}

	raw, ok := m["links"].([]any)
	if !ok {
		return nil, value
	}

	links := make([]Link, 0, len(raw))

	for _, entry := range raw {
		if lm, ok := entry.(map[string]any); ok {
			links = append(links, linkFromMap(lm))
		}
	}

	return links, copyMapWithout(m, "links")
}

// IsCollection implements Semantics.
func (HypermediaSemantics) IsCollection(value any) bool {
	m, ok := value.(map[string]any)
	if !ok {
		return false
	}

	if _, ok := m["items"].([]any); !ok {
		return false
	}

	if _, ok := AsInt(m["total"]); !ok {
		return false
	}

	_, ok = AsInt(m["offset"])

	return ok
}

// IsComplete implements Semantics.
func (HypermediaSemantics) IsComplete(value any, links []Link) bool {
	m, ok := value.(map[string]any)
	if !ok {
		return true
	}

	return len(m) > 0 || len(links) == 0
}

// Represents implements Semantics.
func (HypermediaSemantics) Represents(value any, id string) bool {
	return representsByKey(value, id, "uid", "id")
}

// Items implements Semantics.
func (HypermediaSemantics) Items(value any) []any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	items, _ := m["items"].([]any)

	return items
}

// Allow implements Semantics.
func (HypermediaSemantics) Allow(value any) []string {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	switch t := m["allow"].(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			out = append(out, strings.ToUpper(stringify(v)))
		}

		return out
	case string:
		return SplitMethods(t)
	}

	return nil
}

// SplitMethods parses an Allow header value.
func SplitMethods(header string) []string {
	var out []string

	for _, part := range strings.Split(header, ",") {
		if method := strings.ToUpper(strings.TrimSpace(part)); method != "" {
			out = append(out, method)
		}
	}

	return out
}

func representsByKey(value any, id string, keys ...string) bool {
	m, ok := value.(map[string]any)
	if !ok || id == "" {
		return false
	}

	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return stringify(v) == id
		}
	}

	return false
}
