package restfully

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/google/uuid"
)

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received, or after the
// transport gave up, in which case resp.Err() is set.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		req.Metadata["start_time"] = time.Now()

		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method(),
			"uri":    req.uri.String(),
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method(),
			"uri":         req.uri.String(),
			"status_code": resp.StatusCode(),
			"attempts":    req.Attempts(),
		}

		if start, ok := req.Metadata["start_time"].(time.Time); ok {
			fields["elapsed"] = time.Since(start).String()
		}

		if resp.Err() != nil {
			fields["error"] = resp.Err().Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		for key, value := range headers {
			req.headers.Set(HeaderKey(key), value)
		}

		return nil
	}
}

// BasicAuthInterceptor adds HTTP basic credentials to requests that carry no
// Authorization header.
func BasicAuthInterceptor(username, password string) RequestInterceptor {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))

	return func(ctx context.Context, req *Request) error {
		if req.headers.Get(constants.HeaderAuthorization) == "" {
			req.headers.Set(constants.HeaderAuthorization, "Basic "+credentials)
		}

		return nil
	}
}

// RequestIDInterceptor tags every execution with a fresh X-Request-Id unless
// the caller set one.
func RequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if !req.callerRequestID || req.headers.Get(constants.HeaderRequestID) == "" {
			req.headers.Set(constants.HeaderRequestID, uuid.NewString())
		}

		req.Metadata["request_id"] = req.headers.Get(constants.HeaderRequestID)

		return nil
	}
}
