// Package http performs single HTTP exchanges with a fixed-delay retry policy.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/hashicorp/go-retryablehttp"
)

// Logger is the logging contract of the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// Client sends requests and retries the transient failures.
type Client struct {
	httpClient *http.Client
	logger     Logger
	debug      bool
	userAgent  string
	retryMax   int
	retryWait  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent sent when a request has none.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets how many times a transient failure is retried and the
// delay between two attempts.
func WithRetryConfig(maxRetries int, wait time.Duration) Option {
	return func(c *Client) {
		c.retryMax = maxRetries
		c.retryWait = wait
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a transport client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		logger:     noopLogger{},
		userAgent:  constants.DefaultUserAgent,
		retryMax:   constants.DefaultRetryOnError,
		retryWait:  constants.DefaultWaitBeforeRetry,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Request is one exchange to perform.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// Retry overrides the client policy when set.
	Retry *RetryPolicy

	// NoRetry disables retries for this request.
	NoRetry bool

	// OnAttempt is called before every attempt, starting at 1.
	OnAttempt func(attempt int)
}

// RetryPolicy is a retry budget with a fixed delay between attempts.
type RetryPolicy struct {
	Max  int
	Wait time.Duration
}

// Response is the outcome of the last attempt.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Attempts   int
	Duration   time.Duration
}

// AttemptError reports a request that never got a response.
type AttemptError struct {
	Attempts int
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// RetryPolicy returns the policy applied when a request does not override it.
func (c *Client) RetryPolicy() RetryPolicy {
	return RetryPolicy{Max: c.retryMax, Wait: c.retryWait}
}

// Do performs the request. Connection refusals and 502, 503 and 504 responses
// are retried; once the budget is spent the last response is returned as is.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	retryMax, retryWait := c.retryMax, c.retryWait
	if req.Retry != nil {
		retryMax, retryWait = req.Retry.Max, req.Retry.Wait
	}

	if req.NoRetry || retryMax < 0 {
		retryMax = 0
	}

	attempts := 0

	retryClient := &retryablehttp.Client{
		HTTPClient:   c.httpClient,
		RetryWaitMin: retryWait,
		RetryWaitMax: retryWait,
		RetryMax:     retryMax,
		CheckRetry:   checkRetry,
		Backoff:      fixedBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
		RequestLogHook: func(_ retryablehttp.Logger, r *http.Request, attempt int) {
			attempts = attempt + 1
			if attempt > 0 {
				c.logger.Info("Retrying request", map[string]interface{}{
					"method":  r.Method,
					"url":     r.URL.String(),
					"attempt": attempts,
					"max":     retryMax + 1,
				})
			}

			if req.OnAttempt != nil {
				req.OnAttempt(attempts)
			}
		},
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":  req.Method,
			"url":     req.URL,
			"headers": httpReq.Header,
		})
	}

	start := time.Now()

	resp, err := retryClient.Do(httpReq)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		return nil, &AttemptError{Attempts: attempts, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		Attempts:   attempts,
		Duration:   time.Since(start),
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   response.StatusCode,
			"headers":  response.Headers,
			"attempts": response.Attempts,
			"duration": response.Duration.String(),
		})
	}

	return response, nil
}

func (c *Client) newRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	var body interface{}
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		httpReq.Header[key] = append([]string(nil), values...)
	}

	if httpReq.Header.Get(constants.HeaderUserAgent) == "" && c.userAgent != "" {
		httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	}

	return httpReq, nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return IsConnectionRefused(err), nil
	}

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}

	return false, nil
}

func fixedBackoff(wait, _ time.Duration, _ int, _ *http.Response) time.Duration {
	return wait
}

// IsConnectionRefused reports whether err comes from a refused or failed dial.
func IsConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr) && opErr.Op == "dial"
}
