package restfully

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/fivetwenty-io/restfully/internal/constants"
	restfullyhttp "github.com/fivetwenty-io/restfully/internal/http"
	"github.com/fivetwenty-io/restfully/pkg/mediatype"
)

// RetryPolicy overrides the session retry budget for one request.
type RetryPolicy struct {
	Max  int
	Wait time.Duration
}

// RequestOptions describe a request to build.
type RequestOptions struct {
	// Headers are merged over the session default headers. Keys are
	// normalized ("content_type" gives "Content-Type").
	Headers map[string]string
	// Query is added to the query already present in the target URI.
	// Nested maps are flattened with brackets.
	Query map[string]any
	// Body is only sent by POST and PUT. Strings and byte slices are sent
	// as is; other values are encoded with the media type matching the
	// Content-Type header, form-urlencoded when there is none.
	Body any

	Retry   *RetryPolicy
	NoRetry bool
}

// UpdateOptions change an existing request.
type UpdateOptions struct {
	Headers map[string]string
	Query   map[string]any
}

// Request is an HTTP request bound to a session.
type Request struct {
	session *Session
	method  string
	uri     *url.URL
	headers http.Header
	body    []byte

	forcedNoCache bool
	attempts      int
	retry         *RetryPolicy
	noRetry       bool
	// callerRequestID is set when X-Request-Id comes from the caller and
	// must be kept across executions.
	callerRequestID bool

	// Metadata carries values between request and response interceptors.
	Metadata map[string]interface{}
}

// NewRequest builds a request for target, resolved against the session URI.
func (s *Session) NewRequest(method, target string, opts *RequestOptions) (*Request, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	uri, err := s.URITo(target)
	if err != nil {
		return nil, err
	}

	mergeQuery(uri, opts.Query)

	req := &Request{
		session:  s,
		method:   strings.ToUpper(method),
		uri:      uri,
		headers:  mergeHeaders(s.defaultHeaders, NormalizeHeaders(opts.Headers)),
		retry:    opts.Retry,
		noRetry:  opts.NoRetry || (!isIdempotent(method) && !s.config.RetryNonIdempotent),
		Metadata: map[string]interface{}{},
	}
	req.callerRequestID = req.headers.Get(constants.HeaderRequestID) != ""

	if carriesBody(req.method) && opts.Body != nil {
		req.body, err = req.encodeBody(opts.Body)
		if err != nil {
			return nil, err
		}
	}

	return req, nil
}

func (r *Request) encodeBody(body any) ([]byte, error) {
	switch t := body.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	}

	contentType := r.headers.Get(constants.HeaderContentType)
	if contentType == "" {
		contentType = constants.ContentTypeFormURLEncoded
		r.headers.Set(constants.HeaderContentType, contentType)
	}

	mt, err := r.session.registry.MustFind(contentType)
	if err != nil {
		return nil, fmt.Errorf("encoding %s body: %w", r.method, err)
	}

	data, err := mt.Encode(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s body as %s: %w", r.method, contentType, err)
	}

	return data, nil
}

// Session returns the session the request belongs to.
func (r *Request) Session() *Session {
	return r.session
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.method
}

// URI returns a copy of the target URI.
func (r *Request) URI() *url.URL {
	uri := *r.uri

	return &uri
}

// Header returns the live header map. Interceptors may change it.
func (r *Request) Header() http.Header {
	return r.headers
}

// Headers returns a copy of the headers.
func (r *Request) Headers() http.Header {
	return r.headers.Clone()
}

// Body returns the encoded body.
func (r *Request) Body() []byte {
	return r.body
}

// Attempts returns how many attempts the last execution took.
func (r *Request) Attempts() int {
	return r.attempts
}

// Update merges headers and query parameters into the request. It returns
// nil when nothing changed and the request itself otherwise.
func (r *Request) Update(opts UpdateOptions) *Request {
	updates := NormalizeHeaders(opts.Headers)
	if updates.Get(constants.HeaderRequestID) != "" {
		r.callerRequestID = true
	}

	headers := mergeHeaders(r.headers, updates)

	uri := r.URI()
	replaceQuery(uri, opts.Query)

	if reflect.DeepEqual(uri.Query(), r.uri.Query()) && sameHeaders(headers, r.headers) {
		return nil
	}

	r.uri = uri
	r.headers = headers

	return r
}

func sameHeaders(a, b http.Header) bool {
	if len(a) != len(b) {
		return false
	}

	for k, av := range a {
		bv, ok := b[k]
		if !ok || strings.Join(av, "\x00") != strings.Join(bv, "\x00") {
			return false
		}
	}

	return true
}

// NoCache forces caches to be bypassed on the next execution.
func (r *Request) NoCache() *Request {
	r.forcedNoCache = true
	r.headers.Set(constants.HeaderCacheControl, constants.NoCache)

	return r
}

// RemoveNoCache stops bypassing caches.
func (r *Request) RemoveNoCache() *Request {
	r.forcedNoCache = false
	r.headers.Del(constants.HeaderCacheControl)

	return r
}

// IsNoCache reports whether the request asks caches to be bypassed.
func (r *Request) IsNoCache() bool {
	for _, directive := range strings.Split(r.headers.Get(constants.HeaderCacheControl), ",") {
		if strings.EqualFold(strings.TrimSpace(directive), constants.NoCache) {
			return true
		}
	}

	return false
}

// ForcedNoCache reports whether NoCache was called since the last
// RemoveNoCache.
func (r *Request) ForcedNoCache() bool {
	return r.forcedNoCache
}

// Execute sends the request. Connection failures surface as
// *ConnectionError once the retries are exhausted.
func (r *Request) Execute(ctx context.Context) (*Response, error) {
	chain := r.session.interceptors

	err := chain.ExecuteRequestInterceptors(ctx, r)
	if err != nil {
		return nil, err
	}

	transportReq := &restfullyhttp.Request{
		Method:    r.method,
		URL:       r.uri.String(),
		Headers:   r.headers,
		Body:      r.body,
		NoRetry:   r.noRetry,
		OnAttempt: func(attempt int) { r.attempts = attempt },
	}

	if r.retry != nil {
		transportReq.Retry = &restfullyhttp.RetryPolicy{Max: r.retry.Max, Wait: r.retry.Wait}
	}

	r.attempts = 0

	resp, err := r.session.transport.Do(ctx, transportReq)
	if err != nil {
		var attemptErr *restfullyhttp.AttemptError
		if errors.As(err, &attemptErr) {
			r.attempts = attemptErr.Attempts
			err = &ConnectionError{
				Method:   r.method,
				URI:      r.uri.String(),
				Attempts: attemptErr.Attempts,
				Err:      attemptErr.Err,
			}
		}

		failed := &Response{session: r.session, request: r, err: err}
		_ = chain.ExecuteResponseInterceptors(ctx, r, failed)

		return nil, err
	}

	response := &Response{
		session:    r.session,
		request:    r,
		statusCode: resp.StatusCode,
		headers:    resp.Headers,
		body:       resp.Body,
		duration:   resp.Duration,
	}

	err = chain.ExecuteResponseInterceptors(ctx, r, response)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// String implements fmt.Stringer.
func (r *Request) String() string {
	return r.method + " " + r.uri.String()
}

// mediaTypeFor returns the media type registered for contentType, if any.
func (s *Session) mediaTypeFor(contentType string) *mediatype.MediaType {
	return s.registry.Find(contentType)
}
