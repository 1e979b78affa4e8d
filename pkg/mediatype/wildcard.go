package mediatype

import "fmt"

type identityParser struct{}

func (identityParser) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case nil:
		return nil, nil
	}

	return nil, fmt.Errorf("%w: wildcard cannot encode %T", ErrUnsupportedValue, v)
}

func (identityParser) Decode(data []byte) (any, error) {
	return string(data), nil
}

// Wildcard matches any content type and leaves payloads untouched.
func Wildcard() *MediaType {
	return New(NameWildcard, identityParser{}, PlainSemantics{}, "*/*")
}
