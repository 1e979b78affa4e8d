package restfully

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/fivetwenty-io/restfully/pkg/mediatype"
)

// Collection is the facet of a resource whose representation is one page of
// a collection. Items are wrapped into resources on first access and keyed by
// the hash of their payload.
type Collection struct {
	resource *Resource
	doc      *mediatype.Document
	total    int
	offset   int

	built  bool
	items  []*Resource
	byHash map[uint64]*Resource
}

func newCollection(r *Resource, doc *mediatype.Document) *Collection {
	c := &Collection{
		resource: r,
		doc:      doc,
		byHash:   map[uint64]*Resource{},
	}

	props := doc.Properties()
	c.total, _ = mediatype.AsInt(props["total"])
	c.offset, _ = mediatype.AsInt(props["offset"])

	return c
}

func (c *Collection) build() {
	if c.built {
		return
	}

	c.built = true

	session := c.resource.session

	docs, err := c.doc.Items()
	if err != nil {
		session.logger.Warn("Cannot read collection items", map[string]interface{}{
			"uri":   c.resource.URI(),
			"error": err.Error(),
		})

		return
	}

	contentType := c.resource.response.ContentType()
	accept := contentType

	if types := mediatype.SplitContentTypes(contentType); len(types) > 0 {
		accept = types[0]
	}

	for i, doc := range docs {
		self := selfLink(doc)
		if self == nil || !self.Valid() {
			session.logger.Warn("Collection item without self link skipped", map[string]interface{}{
				"uri":   c.resource.URI(),
				"index": i,
			})

			continue
		}

		hash := xxhash.Sum64(doc.Raw())
		if _, seen := c.byHash[hash]; seen {
			continue
		}

		target, err := c.resource.request.uri.Parse(self.Href)
		if err != nil {
			session.logger.Warn("Collection item with invalid self link skipped", map[string]interface{}{
				"uri":   c.resource.URI(),
				"href":  self.Href,
				"error": err.Error(),
			})

			continue
		}

		req, err := session.NewRequest(http.MethodGet, target.String(), &RequestOptions{
			Headers: map[string]string{constants.HeaderAccept: accept},
		})
		if err != nil {
			continue
		}

		resp := session.NewResponse(req, http.StatusOK, http.Header{constants.HeaderContentType: []string{contentType}}, doc.Raw())
		item := newResource(session, req, resp)

		c.byHash[hash] = item
		c.items = append(c.items, item)
	}
}

func selfLink(doc *mediatype.Document) *mediatype.Link {
	for _, link := range doc.Links() {
		if link.IsSelf() {
			return &link
		}
	}

	return nil
}

// Resource returns the page resource owning the facet.
func (c *Collection) Resource() *Resource {
	return c.resource
}

// Len returns the number of items on this page.
func (c *Collection) Len() int {
	c.build()

	return len(c.items)
}

// Total returns the size of the whole collection.
func (c *Collection) Total() int {
	return c.total
}

// Offset returns the position of the first item of this page.
func (c *Collection) Offset() int {
	return c.offset
}

// Empty reports whether the whole collection has no item, as declared by
// its total.
func (c *Collection) Empty() bool {
	return c.total == 0
}

// Items returns the items of this page.
func (c *Collection) Items() []*Resource {
	c.build()

	return append([]*Resource(nil), c.items...)
}

// Each calls fn for every item of this page until fn returns false.
func (c *Collection) Each(fn func(item *Resource) bool) {
	c.build()

	for _, item := range c.items {
		if !fn(item) {
			return
		}
	}
}

// SeenAll reports whether the pages walked so far cover the whole
// collection.
func (c *Collection) SeenAll() bool {
	page := c

	for {
		next := page.cachedNext()
		if next == nil {
			break
		}

		page = next
	}

	page.build()

	if page.offset+len(page.items) >= page.total {
		return true
	}

	return page.resource.linkIDByRel(mediatype.RelNext) == ""
}

// Find returns the item that id designates, or nil. Items of the pages
// already walked are searched first. Then, when GuessItemURIs is enabled, the
// URI of the last known item with its last segment replaced by id is tried,
// unless id is not a plain path segment. Finally the next pages are fetched one at a time.
func (c *Collection) Find(ctx context.Context, id string) (*Resource, error) {
	page := c

	for {
		if item := page.lookup(id); item != nil {
			return item, nil
		}

		next := page.cachedNext()
		if next == nil {
			break
		}

		page = next
	}

	if !c.SeenAll() && c.resource.session.config.GuessItemURIs && guessable(id) {
		item, err := c.guess(ctx, page, id)
		if err != nil || item != nil {
			return item, err
		}
	}

	for {
		next, err := page.fetchNext(ctx)
		if err != nil || next == nil {
			return nil, err
		}

		if item := next.lookup(id); item != nil {
			return item, nil
		}

		page = next
	}
}

func (c *Collection) lookup(id string) *Resource {
	c.build()

	for _, item := range c.items {
		if doc := item.document(); doc != nil && doc.Represents(id) {
			return item
		}
	}

	return nil
}

// guessable reports whether id can replace the last segment of an item URI
// without leaving the item's directory.
func guessable(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.Contains(id, "/")
}

func (c *Collection) guess(ctx context.Context, last *Collection, id string) (*Resource, error) {
	var template *Resource

	for page := c; page != nil; page = page.cachedNext() {
		page.build()

		if n := len(page.items); n > 0 {
			template = page.items[n-1]
		}

		if page == last {
			break
		}
	}

	if template == nil {
		return nil, nil
	}

	uri := template.request.URI()
	uri.Path = path.Join(path.Dir(strings.TrimSuffix(uri.Path, "/")), id)
	uri.RawPath = ""
	uri.RawQuery = ""

	item, err := c.resource.session.Get(ctx, uri.String(), &RequestOptions{
		Headers: map[string]string{constants.HeaderAccept: template.request.headers.Get(constants.HeaderAccept)},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}

		return nil, err
	}

	if item == nil {
		return nil, nil
	}

	c.resource.session.logger.Debug("Found collection item at guessed URI", map[string]interface{}{
		"uri": uri.String(),
		"id":  id,
	})

	return item, nil
}

func (c *Collection) cachedNext() *Collection {
	id := c.resource.linkIDByRel(mediatype.RelNext)
	if id == "" {
		return nil
	}

	child, ok := c.resource.children[id]
	if !ok || child == nil {
		return nil
	}

	return child.collection
}

func (c *Collection) fetchNext(ctx context.Context) (*Collection, error) {
	id := c.resource.linkIDByRel(mediatype.RelNext)
	if id == "" {
		return nil, nil
	}

	child, err := c.resource.Follow(ctx, id)
	if err != nil {
		return nil, err
	}

	return child.collection, nil
}

// At returns the item at index n of this page, counting from the end when n
// is negative. The item is expanded when it is a stub.
func (c *Collection) At(ctx context.Context, n int) (*Resource, error) {
	c.build()

	if n < 0 {
		n += len(c.items)
	}

	if n < 0 || n >= len(c.items) {
		return nil, nil
	}

	return c.items[n].Expand(ctx)
}

// Expand expands every item of this page.
func (c *Collection) Expand(ctx context.Context) error {
	c.build()

	for _, item := range c.items {
		_, err := item.Expand(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// Pages calls fn with this page and every following page, fetched on demand
// through the next links, until fn returns false.
func (c *Collection) Pages(ctx context.Context, fn func(page *Collection) bool) error {
	page := c

	for page != nil {
		if !fn(page) {
			return nil
		}

		next, err := page.fetchNext(ctx)
		if err != nil {
			return err
		}

		page = next
	}

	return nil
}

// All calls fn with every item of every page until fn returns false.
func (c *Collection) All(ctx context.Context, fn func(item *Resource) bool) error {
	return c.Pages(ctx, func(page *Collection) bool {
		more := true

		page.Each(func(item *Resource) bool {
			more = fn(item)

			return more
		})

		return more
	})
}
