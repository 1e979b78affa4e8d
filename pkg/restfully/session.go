package restfully

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/restfully/internal/constants"
	restfullyhttp "github.com/fivetwenty-io/restfully/internal/http"
	"github.com/fivetwenty-io/restfully/pkg/mediatype"
)

// Session is the entry point of an API: it holds the base URI, the default
// headers, the media type registry and the transport shared by every request
// and resource it creates.
type Session struct {
	config         *Config
	uri            *url.URL
	registry       *mediatype.Registry
	logger         Logger
	defaultHeaders http.Header
	transport      *restfullyhttp.Client
	interceptors   *InterceptorChain
}

// New creates a session.
func New(config *Config) (*Session, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	cfg := *config
	cfg.URI = normalizeURI(cfg.URI)

	if cfg.URI == "" {
		return nil, ErrURIRequired
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	registry, err := buildRegistry(&cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = constants.DefaultUserAgent
	}

	defaultHeaders := http.Header{}
	defaultHeaders.Set(constants.HeaderAccept, constants.AcceptAll)
	defaultHeaders.Set(constants.HeaderUserAgent, userAgent)

	for k, v := range NormalizeHeaders(cfg.DefaultHeaders) {
		defaultHeaders[k] = v
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = constants.DefaultHTTPTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	session := &Session{
		config:         &cfg,
		uri:            base,
		registry:       registry,
		logger:         logger,
		defaultHeaders: defaultHeaders,
		transport: restfullyhttp.NewClient(
			restfullyhttp.WithHTTPClient(httpClient),
			restfullyhttp.WithLogger(logger),
			restfullyhttp.WithDebug(cfg.Debug),
			restfullyhttp.WithUserAgent(userAgent),
			restfullyhttp.WithRetryConfig(cfg.RetryOnError, cfg.WaitBeforeRetry),
		),
		interceptors: NewInterceptorChain(),
	}

	if cfg.Username != "" {
		session.interceptors.AddRequestInterceptor(BasicAuthInterceptor(cfg.Username, cfg.Password))
	}

	session.interceptors.AddRequestInterceptor(RequestIDInterceptor())
	session.interceptors.AddRequestInterceptor(LoggingInterceptor(logger))

	for _, interceptor := range cfg.RequestInterceptors {
		session.interceptors.AddRequestInterceptor(interceptor)
	}

	session.interceptors.AddResponseInterceptor(LoggingResponseInterceptor(logger))

	if cfg.Metrics != nil {
		session.interceptors.AddResponseInterceptor(MetricsResponseInterceptor(cfg.Metrics))
	}

	for _, interceptor := range cfg.ResponseInterceptors {
		session.interceptors.AddResponseInterceptor(interceptor)
	}

	return session, nil
}

func buildRegistry(cfg *Config) (*mediatype.Registry, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = mediatype.DefaultRegistry()
	}

	for _, name := range cfg.MediaTypes {
		mt, err := mediatype.Builtin(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownMediaType, err)
		}

		err = registry.Register(mt)
		if err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// URI returns a copy of the base URI.
func (s *Session) URI() *url.URL {
	uri := *s.uri

	return &uri
}

// URITo resolves target against the base URI. Absolute URIs are kept, paths
// starting with "/" are relative to the host and other paths are appended to
// the base path.
func (s *Session) URITo(target string) (*url.URL, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidArgument, target, err)
	}

	if ref.IsAbs() {
		return ref, nil
	}

	if target == "" {
		return s.URI(), nil
	}

	if strings.HasPrefix(ref.Path, "/") {
		return s.uri.ResolveReference(ref), nil
	}

	base := s.URI()
	base.Path = strings.TrimSuffix(base.Path, "/") + "/"
	base.RawPath = ""

	return base.ResolveReference(ref), nil
}

// DefaultHeaders returns a copy of the headers sent with every request.
func (s *Session) DefaultHeaders() http.Header {
	return s.defaultHeaders.Clone()
}

// Registry returns the media type registry of the session.
func (s *Session) Registry() *mediatype.Registry {
	return s.registry
}

// Logger returns the session logger.
func (s *Session) Logger() Logger {
	return s.logger
}

// Config returns the effective configuration.
func (s *Session) Config() *Config {
	return s.config
}

// Root fetches the resource at the base URI.
func (s *Session) Root(ctx context.Context) (*Resource, error) {
	return s.Get(ctx, s.uri.String(), nil)
}

// Head sends a HEAD request and processes the response.
func (s *Session) Head(ctx context.Context, path string, opts *RequestOptions) (*Resource, error) {
	return s.transmit(ctx, http.MethodHead, path, opts)
}

// Get sends a GET request and processes the response.
func (s *Session) Get(ctx context.Context, path string, opts *RequestOptions) (*Resource, error) {
	return s.transmit(ctx, http.MethodGet, path, opts)
}

// Post sends body with a POST request and processes the response.
func (s *Session) Post(ctx context.Context, path string, body any, opts *RequestOptions) (*Resource, error) {
	return s.transmit(ctx, http.MethodPost, path, withBody(opts, body))
}

// Put sends body with a PUT request and processes the response.
func (s *Session) Put(ctx context.Context, path string, body any, opts *RequestOptions) (*Resource, error) {
	return s.transmit(ctx, http.MethodPut, path, withBody(opts, body))
}

// Delete sends a DELETE request and processes the response.
func (s *Session) Delete(ctx context.Context, path string, opts *RequestOptions) (*Resource, error) {
	return s.transmit(ctx, http.MethodDelete, path, opts)
}

func withBody(opts *RequestOptions, body any) *RequestOptions {
	out := RequestOptions{}
	if opts != nil {
		out = *opts
	}

	out.Body = body

	return &out
}

func (s *Session) transmit(ctx context.Context, method, path string, opts *RequestOptions) (*Resource, error) {
	resp, err := s.Execute(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	return s.Process(ctx, resp)
}

// Execute builds and sends a request without interpreting the status.
func (s *Session) Execute(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error) {
	req, err := s.NewRequest(method, path, opts)
	if err != nil {
		return nil, err
	}

	return req.Execute(ctx)
}

// Process turns a response into a resource.
//
//   - 201 and 202 fetch the Location with the headers of the request;
//   - 204 returns a nil resource and a nil error;
//   - other 2xx build a resource from the response, failing when no media
//     type can decode its body;
//   - 4xx and 5xx return an *HTTPError.
//
// Anything else is an *HTTPError wrapping ErrUnhandledStatus.
func (s *Session) Process(ctx context.Context, resp *Response) (*Resource, error) {
	req := resp.Request()

	switch code := resp.StatusCode(); {
	case code == http.StatusCreated || code == http.StatusAccepted:
		location := resp.Location()
		if location == "" {
			return nil, fmt.Errorf("%w: %d on %s", ErrNoLocation, code, req)
		}

		s.logger.Debug("Following Location", map[string]interface{}{
			"status":   code,
			"location": location,
		})

		target, err := req.uri.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w: Location %q: %w", ErrInvalidArgument, location, err)
		}

		headers := req.Headers()
		headers.Del(constants.HeaderContentType)
		headers.Del(constants.HeaderRequestID)

		return s.Get(ctx, target.String(), &RequestOptions{Headers: headersToMap(headers)})
	case code == http.StatusNoContent:
		return nil, nil
	case code >= 200 && code < 300:
		if len(resp.Body()) > 0 {
			doc, err := resp.Document()
			if err == nil {
				err = doc.Err()
			}

			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", req.method, req.uri, err)
			}
		}

		return newResource(s, req, resp), nil
	default:
		return nil, newHTTPError(req, resp)
	}
}
