package restfully

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/fivetwenty-io/restfully/pkg/mediatype"
)

// State is the lifecycle state of a resource.
type State int

// Resource states.
const (
	StateUnloaded State = iota
	StateLoaded
	StateStale
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateStale:
		return "stale"
	default:
		return "unloaded"
	}
}

// LoadOptions control Load.
type LoadOptions struct {
	// Reload bypasses the short-circuit and every cache on the way.
	Reload  bool
	Query   map[string]any
	Headers map[string]string
}

// SubmitOptions control Submit, Update and Delete.
type SubmitOptions struct {
	Headers map[string]string
	Query   map[string]any
}

// Resource is one remote resource: the request that designates it, the last
// response obtained for it and the links found in that response. Links are
// followed on demand and the resolved children are kept.
//
// A Resource is not safe for concurrent use.
type Resource struct {
	session  *Session
	request  *Request
	response *Response
	state    State

	links      map[string]mediatype.Link
	order      []string
	self       *mediatype.Link
	children   map[string]*Resource
	collection *Collection
}

func newResource(session *Session, req *Request, resp *Response) *Resource {
	r := &Resource{
		session:  session,
		request:  req,
		response: resp,
	}
	r.build()

	return r
}

// NewResource returns an unloaded resource for target. Load fetches it.
func (s *Session) NewResource(target string, opts *RequestOptions) (*Resource, error) {
	req, err := s.NewRequest(http.MethodGet, target, opts)
	if err != nil {
		return nil, err
	}

	return &Resource{
		session:  s,
		request:  req,
		links:    map[string]mediatype.Link{},
		children: map[string]*Resource{},
	}, nil
}

func (r *Resource) build() {
	r.links = map[string]mediatype.Link{}
	r.order = nil
	r.self = nil
	r.children = map[string]*Resource{}
	r.collection = nil
	r.state = StateLoaded

	doc := r.document()
	if doc == nil {
		return
	}

	if err := doc.Err(); err != nil {
		r.session.logger.Warn("Cannot decode representation", map[string]interface{}{
			"uri":   r.request.uri.String(),
			"error": err.Error(),
		})

		return
	}

	for _, link := range doc.Links() {
		if link.IsSelf() {
			self := link
			r.self = &self

			continue
		}

		if !link.Valid() {
			r.session.logger.Warn("Invalid link ignored", map[string]interface{}{
				"uri":    r.request.uri.String(),
				"link":   link.String(),
				"errors": strings.Join(link.Errors(), "; "),
			})

			continue
		}

		id := link.ID()
		if _, seen := r.links[id]; !seen {
			r.order = append(r.order, id)
		}

		r.links[id] = link
	}

	if doc.IsCollection() {
		r.collection = newCollection(r, doc)
	}
}

func (r *Resource) document() *mediatype.Document {
	if r.response == nil {
		return nil
	}

	doc, err := r.response.Document()
	if err != nil {
		return nil
	}

	return doc
}

// Load fetches the resource. A loaded resource is returned as is unless
// Reload is set, the resource is stale, or the options change the request.
func (r *Resource) Load(ctx context.Context, opts *LoadOptions) (*Resource, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	changed := r.request.Update(UpdateOptions{Headers: opts.Headers, Query: opts.Query}) != nil
	if !opts.Reload && r.state == StateLoaded && !changed {
		return r, nil
	}

	if opts.Reload {
		r.request.NoCache()
		defer r.request.RemoveNoCache()
	}

	resp, err := r.request.Execute(ctx)
	if err != nil {
		return nil, &ResourceError{Op: "load", URI: r.request.uri.String(), Err: err}
	}

	result, err := r.session.Process(ctx, resp)
	if err != nil {
		return nil, &ResourceError{Op: "load", URI: r.request.uri.String(), Err: err}
	}

	if result == nil {
		return nil, &ResourceError{Op: "load", URI: r.request.uri.String(), Err: ErrCannotReload}
	}

	r.request = result.request
	r.response = result.response
	r.build()

	return r, nil
}

// Reload fetches the resource again, bypassing caches.
func (r *Resource) Reload(ctx context.Context) (*Resource, error) {
	return r.Load(ctx, &LoadOptions{Reload: true})
}

// Expand reloads the resource when its representation is only a stub.
func (r *Resource) Expand(ctx context.Context) (*Resource, error) {
	if r.state == StateLoaded {
		if doc := r.document(); doc == nil || doc.IsComplete() {
			return r, nil
		}
	}

	return r.Reload(ctx)
}

// MarkStale forces the next Load to hit the network.
func (r *Resource) MarkStale() {
	if r.state == StateLoaded {
		r.state = StateStale
	}
}

// Follow returns the resource the link id points to, fetching it on first
// use.
func (r *Resource) Follow(ctx context.Context, id string) (*Resource, error) {
	if child, ok := r.children[id]; ok {
		return child, nil
	}

	link, ok := r.links[id]
	if !ok {
		return nil, &ResourceError{Op: "follow", URI: r.request.uri.String(), Err: fmt.Errorf("%w: %q", ErrUnknownLink, id)}
	}

	target, err := r.request.uri.Parse(link.Href)
	if err != nil {
		return nil, &ResourceError{Op: "follow", URI: r.request.uri.String(), Err: fmt.Errorf("%w: %w", ErrInvalidArgument, err)}
	}

	opts := &RequestOptions{}
	if t := link.Type(); t != "" {
		opts.Headers = map[string]string{constants.HeaderAccept: t}
	}

	child, err := r.session.Get(ctx, target.String(), opts)
	if err != nil {
		return nil, &ResourceError{Op: "follow " + id, URI: r.request.uri.String(), Err: err}
	}

	if child == nil {
		return nil, &ResourceError{Op: "follow " + id, URI: target.String(), Err: ErrEmptyResponse}
	}

	r.children[id] = child

	return child, nil
}

// Relationships returns the link ids in document order.
func (r *Resource) Relationships() []string {
	return append([]string(nil), r.order...)
}

// Links returns the valid links of the resource, self excluded.
func (r *Resource) Links() []mediatype.Link {
	links := make([]mediatype.Link, 0, len(r.order))
	for _, id := range r.order {
		links = append(links, r.links[id])
	}

	return links
}

// Link returns the link registered under id.
func (r *Resource) Link(id string) (mediatype.Link, bool) {
	link, ok := r.links[id]

	return link, ok
}

// HasLink reports whether id names a link of the resource.
func (r *Resource) HasLink(id string) bool {
	_, ok := r.links[id]

	return ok
}

// SelfLink returns the self link of the representation, if any.
func (r *Resource) SelfLink() (mediatype.Link, bool) {
	if r.self == nil {
		return mediatype.Link{}, false
	}

	return *r.self, true
}

func (r *Resource) linkIDByRel(rel string) string {
	for _, id := range r.order {
		if r.links[id].Rel == rel {
			return id
		}
	}

	return ""
}

// Property returns the property key. When the key is missing from a stub
// that is not a collection, the resource is expanded first.
func (r *Resource) Property(ctx context.Context, key string) (any, error) {
	if v, ok := r.Properties()[key]; ok {
		return v, nil
	}

	if r.IsCollection() {
		return nil, nil
	}

	_, err := r.Expand(ctx)
	if err != nil {
		return nil, err
	}

	return r.Properties()[key], nil
}

// Properties returns the decoded representation without its links.
func (r *Resource) Properties() map[string]any {
	doc := r.document()
	if doc == nil {
		return nil
	}

	return doc.Properties()
}

// Value returns the whole decoded representation without its links.
func (r *Resource) Value() any {
	doc := r.document()
	if doc == nil {
		return nil
	}

	v, _ := doc.Value()

	return v
}

// Submit POSTs payload to the resource. A 201 or 202 answer returns the
// resource found at its Location; other successes reload the resource and
// return it.
func (r *Resource) Submit(ctx context.Context, payload any, opts *SubmitOptions) (*Resource, error) {
	return r.send(ctx, http.MethodPost, "submit", payload, opts)
}

// Update PUTs payload to the resource. It behaves like Submit.
func (r *Resource) Update(ctx context.Context, payload any, opts *SubmitOptions) (*Resource, error) {
	return r.send(ctx, http.MethodPut, "update", payload, opts)
}

func (r *Resource) send(ctx context.Context, method, op string, payload any, opts *SubmitOptions) (*Resource, error) {
	uri := r.request.uri.String()

	req, err := r.prepare(ctx, method, op, payload, opts)
	if err != nil {
		return nil, err
	}

	resp, err := req.Execute(ctx)
	if err != nil {
		return nil, &ResourceError{Op: op, URI: uri, Err: err}
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusCreated || code == http.StatusAccepted:
		r.MarkStale()

		created, err := r.session.Process(ctx, resp)
		if err != nil {
			return nil, &ResourceError{Op: op, URI: uri, Err: err}
		}

		return created, nil
	case code >= 200 && code < 300:
		r.MarkStale()

		return r.Reload(ctx)
	default:
		_, err := r.session.Process(ctx, resp)

		return nil, &ResourceError{Op: op, URI: uri, Err: err}
	}
}

// Delete sends DELETE to the resource and reports whether the server
// accepted it.
func (r *Resource) Delete(ctx context.Context, opts *SubmitOptions) (bool, error) {
	req, err := r.prepare(ctx, http.MethodDelete, "delete", nil, opts)
	if err != nil {
		return false, err
	}

	resp, err := req.Execute(ctx)
	if err != nil {
		return false, &ResourceError{Op: "delete", URI: r.request.uri.String(), Err: err}
	}

	if code := resp.StatusCode(); code >= 200 && code < 400 {
		r.MarkStale()

		return true, nil
	}

	_, err = r.session.Process(ctx, resp)

	return false, &ResourceError{Op: "delete", URI: r.request.uri.String(), Err: err}
}

func (r *Resource) prepare(ctx context.Context, method, op string, payload any, opts *SubmitOptions) (*Request, error) {
	uri := r.request.uri.String()

	allowed, err := r.Allow(ctx, method)
	if err != nil {
		return nil, err
	}

	if !allowed {
		return nil, &ResourceError{Op: op, URI: uri, Err: fmt.Errorf("%w: %s", ErrMethodNotAllowed, method)}
	}

	if carriesBody(method) && payload == nil {
		return nil, &ResourceError{Op: op, URI: uri, Err: fmt.Errorf("%w: payload cannot be nil", ErrInvalidArgument)}
	}

	if opts == nil {
		opts = &SubmitOptions{}
	}

	headers := NormalizeHeaders(opts.Headers)

	if payload != nil {
		if contentType := r.representationType(); contentType != "" {
			if headers.Get(constants.HeaderContentType) == "" {
				headers.Set(constants.HeaderContentType, contentType)
			}

			if headers.Get(constants.HeaderAccept) == "" {
				headers.Set(constants.HeaderAccept, contentType)
			}
		}
	}

	req, err := r.session.NewRequest(method, uri, &RequestOptions{
		Headers: headersToMap(headers),
		Query:   opts.Query,
		Body:    payload,
	})
	if err != nil {
		return nil, &ResourceError{Op: op, URI: uri, Err: err}
	}

	return req.NoCache(), nil
}

// representationType returns the content type of the current representation
// when a media type other than the wildcard can encode it.
func (r *Resource) representationType() string {
	mt := r.MediaType()
	if mt == nil || mt.Name() == mediatype.NameWildcard {
		return ""
	}

	types := mediatype.SplitContentTypes(r.response.ContentType())
	if len(types) == 0 {
		return mt.DefaultType()
	}

	return types[0]
}

// Allow reports whether method may be used on the resource. When the
// representation says nothing about allowed methods, the resource is
// reloaded once to find out.
func (r *Resource) Allow(ctx context.Context, method string) (bool, error) {
	if r.response == nil {
		_, err := r.Load(ctx, nil)
		if err != nil {
			return false, err
		}
	}

	if r.response.Allow(method) {
		return true, nil
	}

	if r.response.HasAllowInfo() {
		return false, nil
	}

	_, err := r.Reload(ctx)
	if err != nil {
		return false, err
	}

	return r.response.Allow(method), nil
}

// URI returns the URI of the resource.
func (r *Resource) URI() string {
	return r.request.uri.String()
}

// MediaType returns the media type of the current representation.
func (r *Resource) MediaType() *mediatype.MediaType {
	if r.response == nil {
		return nil
	}

	return r.response.MediaType()
}

// Document returns the current representation.
func (r *Resource) Document() (*mediatype.Document, error) {
	if r.response == nil {
		return nil, &ResourceError{Op: "document", URI: r.URI(), Err: ErrEmptyResponse}
	}

	return r.response.Document()
}

// Request returns the request of the current representation.
func (r *Resource) Request() *Request {
	return r.request
}

// Response returns the current response, nil before the first load.
func (r *Resource) Response() *Response {
	return r.response
}

// Session returns the owning session.
func (r *Resource) Session() *Session {
	return r.session
}

// State returns the lifecycle state.
func (r *Resource) State() State {
	return r.state
}

// IsCollection reports whether the representation is a collection page.
func (r *Resource) IsCollection() bool {
	return r.collection != nil
}

// Collection returns the collection facet, nil for other resources.
func (r *Resource) Collection() *Collection {
	return r.collection
}

// String implements fmt.Stringer.
func (r *Resource) String() string {
	return fmt.Sprintf("%s [%s] links=%v", r.URI(), r.state, r.order)
}
