package mediatype

import (
	"strings"
)

// Parser encodes and decodes payloads of one wire format.
type Parser interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// Semantics interprets a decoded payload.
type Semantics interface {
	// ExtractLinks returns the links found in value and value without them.
	ExtractLinks(value any) ([]Link, any)
	// IsCollection reports whether value is a collection page.
	IsCollection(value any) bool
	// IsComplete reports false for stubs that only reference a resource.
	IsComplete(value any, links []Link) bool
	// Represents reports whether value can be designated with id.
	Represents(value any, id string) bool
	// Items returns the raw items of a collection page.
	Items(value any) []any
	// Allow returns the methods the representation declares, if any.
	Allow(value any) []string
}

// MediaType describes one content type family.
type MediaType struct {
	name       string
	signatures []string
	parser     Parser
	semantics  Semantics
}

// New creates a media type descriptor. A nil semantics means the payload
// carries no hypermedia information.
func New(name string, parser Parser, semantics Semantics, signatures ...string) *MediaType {
	if semantics == nil {
		semantics = PlainSemantics{}
	}

	return &MediaType{
		name:       name,
		signatures: append([]string(nil), signatures...),
		parser:     parser,
		semantics:  semantics,
	}
}

// Name returns the catalog name of the media type.
func (m *MediaType) Name() string {
	return m.name
}

// Signatures returns the content type patterns the media type supports.
func (m *MediaType) Signatures() []string {
	return append([]string(nil), m.signatures...)
}

// DefaultType returns the most canonical content type, the first signature.
func (m *MediaType) DefaultType() string {
	if len(m.signatures) == 0 {
		return ""
	}

	return m.signatures[0]
}

// Parser returns the media type parser.
func (m *MediaType) Parser() Parser {
	return m.parser
}

// Semantics returns the payload interpretation rules.
func (m *MediaType) Semantics() Semantics {
	return m.semantics
}

// Supports returns the first signature matching one of the candidates.
// Candidates may carry parameters ("; charset=utf-8") or be comma separated
// lists as found in Accept headers.
func (m *MediaType) Supports(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		for _, contentType := range SplitContentTypes(candidate) {
			for _, signature := range m.signatures {
				if globMatch(strings.ToLower(signature), contentType) {
					return signature, true
				}
			}
		}
	}

	return "", false
}

// Encode serializes v. Strings and byte slices are assumed to be serialized
// already and pass through unchanged.
func (m *MediaType) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	}

	return m.parser.Encode(v)
}

// Decode unserializes data.
func (m *MediaType) Decode(data []byte) (any, error) {
	return m.parser.Decode(data)
}

// NewDocument wraps a raw payload of this media type.
func (m *MediaType) NewDocument(raw []byte) *Document {
	return &Document{
		mediaType: m,
		raw:       raw,
	}
}

// String implements fmt.Stringer.
func (m *MediaType) String() string {
	return m.name + " (" + strings.Join(m.signatures, ", ") + ")"
}

// SplitContentTypes lower-cases a header value, splits it on commas and drops
// the parameters of each entry.
func SplitContentTypes(header string) []string {
	var out []string

	for _, part := range strings.Split(header, ",") {
		contentType, _, _ := strings.Cut(part, ";")

		contentType = strings.ToLower(strings.TrimSpace(contentType))
		if contentType != "" {
			out = append(out, contentType)
		}
	}

	return out
}

// globMatch matches s against pattern where "*" matches any run of
// characters. "*" and "*/*" match everything.
func globMatch(pattern, s string) bool {
	if pattern == "*" || pattern == "*/*" {
		return true
	}

	px, sx := 0, 0
	starPx, starSx := -1, -1

	for px < len(pattern) || sx < len(s) {
		if px < len(pattern) {
			c := pattern[px]
			if c == '*' {
				starPx = px
				starSx = sx + 1
				px++

				continue
			}

			if sx < len(s) && s[sx] == c {
				px++
				sx++

				continue
			}
		}

		if starPx >= 0 && starSx <= len(s) {
			px = starPx
			sx = starSx

			continue
		}

		return false
	}

	return true
}
