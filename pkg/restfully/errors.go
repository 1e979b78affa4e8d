package restfully

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/restfully/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrMethodNotAllowed = errors.New("method not allowed on this resource")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCannotReload     = errors.New("cannot reload the resource")
	ErrUnhandledStatus  = errors.New("unhandled response status")
	ErrNoLocation       = errors.New("response has no Location header")
	ErrUnknownLink      = errors.New("unknown link")
	ErrURIRequired      = errors.New("URI is required")
	ErrUnknownMediaType = errors.New("unknown media type")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrConfigRequired   = errors.New("config is required")
	ErrEmptyResponse    = errors.New("response carries no resource")
	ErrClientError      = errors.New("client error")
	ErrServerError      = errors.New("server error")
)

// ErrorKind classifies HTTP errors.
type ErrorKind int

// Error kinds.
const (
	KindUnhandled ErrorKind = iota
	KindClient
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "unhandled"
	}
}

// HTTPError is returned when the server answers with an error status.
type HTTPError struct {
	Kind       ErrorKind
	StatusCode int
	Method     string
	URI        string
	Body       string
	Title      string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("Encountered error %d on %s %s", e.StatusCode, e.Method, e.URI)

	if fragment := bodyFragment(e.Body); fragment != "" {
		msg += " --- " + fragment
	}

	return msg
}

// Unwrap lets errors.Is match ErrClientError, ErrServerError or
// ErrUnhandledStatus.
func (e *HTTPError) Unwrap() error {
	switch e.Kind {
	case KindClient:
		return ErrClientError
	case KindServer:
		return ErrServerError
	default:
		return ErrUnhandledStatus
	}
}

func newHTTPError(req *Request, resp *Response) *HTTPError {
	kind := KindUnhandled

	switch code := resp.StatusCode(); {
	case code >= 400 && code < 500:
		kind = KindClient
	case code >= 500 && code < 600:
		kind = KindServer
	}

	return &HTTPError{
		Kind:       kind,
		StatusCode: resp.StatusCode(),
		Method:     req.Method(),
		URI:        req.URI().String(),
		Body:       string(resp.Body()),
		Title:      http.StatusText(resp.StatusCode()),
	}
}

func bodyFragment(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > constants.ErrorBodyFragmentLimit {
		return body[:constants.ErrorBodyFragmentLimit] + "..."
	}

	return body
}

// IsClientError reports whether err carries a 4xx response.
func IsClientError(err error) bool {
	return errors.Is(err, ErrClientError)
}

// IsServerError reports whether err carries a 5xx response.
func IsServerError(err error) bool {
	return errors.Is(err, ErrServerError)
}

// IsNotFound reports whether err carries a 404 response.
func IsNotFound(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound
	}

	return false
}

// ConnectionError is returned when no response could be obtained.
type ConnectionError struct {
	Method   string
	URI      string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed on %s %s after %d attempt(s): %v", e.Method, e.URI, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ResourceError wraps failures of a resource operation.
type ResourceError struct {
	Op  string
	URI string
	Err error
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URI, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
