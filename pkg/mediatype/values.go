package mediatype

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// stringify renders scalar values the way they appear in a URI or an id.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

// AsInt converts decoded numeric values (json.Number from JSON, int from YAML,
// numeric strings from XML and forms) to an int.
func AsInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}

		return int(n), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}

		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

// AsString converts a decoded scalar to its string form.
func AsString(v any) string {
	return stringify(v)
}

func copyMapWithout(m map[string]any, skip string) map[string]any {
	out := make(map[string]any, len(m))

	for k, v := range m {
		if k == skip {
			continue
		}

		out[k] = v
	}

	return out
}
