package restfully

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/fivetwenty-io/restfully/pkg/mediatype"
)

// Response is an immutable HTTP response bound to its request.
type Response struct {
	session    *Session
	request    *Request
	statusCode int
	headers    http.Header
	body       []byte
	duration   time.Duration
	err        error

	once      sync.Once
	mediaType *mediatype.MediaType
	document  *mediatype.Document
}

// NewResponse builds a response that did not come from the network, such as
// a collection item extracted from its page.
func (s *Session) NewResponse(req *Request, statusCode int, headers http.Header, body []byte) *Response {
	return &Response{
		session:    s,
		request:    req,
		statusCode: statusCode,
		headers:    mergeHeaders(headers),
		body:       body,
	}
}

// Request returns the request that produced the response.
func (r *Response) Request() *Request {
	return r.request
}

// StatusCode returns the HTTP status code, 0 for failed exchanges.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Header returns the first value of a response header.
func (r *Response) Header(name string) string {
	return r.headers.Get(HeaderKey(name))
}

// Headers returns a copy of the response headers.
func (r *Response) Headers() http.Header {
	return r.headers.Clone()
}

// Body returns the raw body.
func (r *Response) Body() []byte {
	return r.body
}

// Duration returns the time spent on the exchange, retries included.
func (r *Response) Duration() time.Duration {
	return r.duration
}

// Err returns the transport error of a failed exchange. Only response
// interceptors ever see a failed response.
func (r *Response) Err() error {
	return r.err
}

// ContentType returns the Content-Type header, application/octet-stream when
// missing.
func (r *Response) ContentType() string {
	if ct := r.headers.Get(constants.HeaderContentType); ct != "" {
		return ct
	}

	return constants.ContentTypeOctetStream
}

// Location returns the Location header.
func (r *Response) Location() string {
	return r.headers.Get(constants.HeaderLocation)
}

func (r *Response) decode() {
	r.once.Do(func() {
		r.mediaType = r.session.mediaTypeFor(r.ContentType())
		if r.mediaType != nil {
			r.document = r.mediaType.NewDocument(r.body)
		}
	})
}

// MediaType returns the media type matching the Content-Type, or nil.
func (r *Response) MediaType() *mediatype.MediaType {
	r.decode()

	return r.mediaType
}

// Document returns the body seen through its media type.
func (r *Response) Document() (*mediatype.Document, error) {
	r.decode()

	if r.document == nil {
		return nil, fmt.Errorf("%w: %s", mediatype.ErrParserNotFound, r.ContentType())
	}

	return r.document, nil
}

// AllowedMethods returns the methods declared by the representation and by
// the Allow header.
func (r *Response) AllowedMethods() []string {
	var methods []string

	if doc, err := r.Document(); err == nil {
		methods = append(methods, doc.Allow()...)
	}

	for _, value := range r.headers.Values(constants.HeaderAllow) {
		methods = append(methods, mediatype.SplitMethods(value)...)
	}

	return methods
}

// HasAllowInfo reports whether the response says anything about the allowed
// methods.
func (r *Response) HasAllowInfo() bool {
	return len(r.AllowedMethods()) > 0
}

// Allow reports whether method is allowed. GET always is.
func (r *Response) Allow(method string) bool {
	method = strings.ToUpper(method)
	if method == http.MethodGet {
		return true
	}

	for _, allowed := range r.AllowedMethods() {
		if allowed == method {
			return true
		}
	}

	return false
}
