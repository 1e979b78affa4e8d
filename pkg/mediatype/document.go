package mediatype

import (
	"fmt"
	"sync"
)

// Document is one payload seen through its media type. Decoding and link
// extraction happen once, on first access.
type Document struct {
	mediaType *MediaType
	raw       []byte

	once  sync.Once
	value any
	links []Link
	err   error
}

func (d *Document) decode() {
	d.once.Do(func() {
		if len(d.raw) == 0 {
			return
		}

		value, err := d.mediaType.parser.Decode(d.raw)
		if err != nil {
			d.err = fmt.Errorf("%w as %s: %w", ErrDecode, d.mediaType.name, err)

			return
		}

		d.links, d.value = d.mediaType.semantics.ExtractLinks(value)
	})
}

// MediaType returns the media type that decodes the document.
func (d *Document) MediaType() *MediaType {
	return d.mediaType
}

// Raw returns the payload bytes.
func (d *Document) Raw() []byte {
	return d.raw
}

// Err returns the decoding error, if any.
func (d *Document) Err() error {
	d.decode()

	return d.err
}

// Value returns the decoded payload without its links.
func (d *Document) Value() (any, error) {
	d.decode()

	return d.value, d.err
}

// Properties returns the decoded object, or nil when the payload is not an
// object or cannot be decoded.
func (d *Document) Properties() map[string]any {
	d.decode()

	m, _ := d.value.(map[string]any)

	return m
}

// Property returns the value stored under key.
func (d *Document) Property(key string) (any, bool) {
	v, ok := d.Properties()[key]

	return v, ok
}

// Links returns every link found in the payload, valid or not.
func (d *Document) Links() []Link {
	d.decode()

	return d.links
}

// IsCollection reports whether the payload is a collection page.
func (d *Document) IsCollection() bool {
	d.decode()

	return d.err == nil && d.mediaType.semantics.IsCollection(d.value)
}

// IsComplete reports whether the payload is a full representation.
func (d *Document) IsComplete() bool {
	d.decode()

	return d.err != nil || d.mediaType.semantics.IsComplete(d.value, d.links)
}

// Represents reports whether the payload designates the resource id.
func (d *Document) Represents(id string) bool {
	d.decode()

	return d.mediaType.semantics.Represents(d.value, id)
}

// Allow returns the methods declared by the payload itself.
func (d *Document) Allow() []string {
	d.decode()

	return d.mediaType.semantics.Allow(d.value)
}

// Items returns one document per collection item, each serialized again with
// the same media type.
func (d *Document) Items() ([]*Document, error) {
	d.decode()

	if d.err != nil {
		return nil, d.err
	}

	raw := d.mediaType.semantics.Items(d.value)
	items := make([]*Document, 0, len(raw))

	for i, item := range raw {
		data, err := d.mediaType.parser.Encode(item)
		if err != nil {
			return nil, fmt.Errorf("encoding item %d as %s: %w", i, d.mediaType.name, err)
		}

		items = append(items, d.mediaType.NewDocument(data))
	}

	return items, nil
}
