package restfully

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/fivetwenty-io/restfully/pkg/mediatype"
	"github.com/go-playground/validator/v10"
)

// Config represents the configuration of a Session.
type Config struct {
	// URI is the entry point of the API. New adds "https://" when no scheme
	// is given and trims a trailing slash.
	URI string `mapstructure:"uri" validate:"required,url" yaml:"uri"`

	// Username and Password enable HTTP basic authentication.
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// DefaultHeaders are sent with every request. Keys may use underscores
	// ("content_type").
	DefaultHeaders map[string]string `mapstructure:"default_headers" yaml:"default_headers,omitempty"`

	// RetryOnError is the number of retries after a connection refusal or a
	// 502, 503 or 504 response.
	RetryOnError int `mapstructure:"retry_on_error" validate:"gte=0" yaml:"retry_on_error"`
	// WaitBeforeRetry is the fixed delay between two attempts.
	WaitBeforeRetry time.Duration `mapstructure:"wait_before_retry" validate:"gte=0" yaml:"wait_before_retry"`
	// RetryNonIdempotent allows retrying POST and PATCH requests.
	RetryNonIdempotent bool `mapstructure:"retry_non_idempotent" yaml:"retry_non_idempotent"`

	// GuessItemURIs lets keyed lookups in collections try the item URI
	// derived from the last known item before walking the next pages.
	GuessItemURIs bool `mapstructure:"guess_item_uris" yaml:"guess_item_uris"`

	// MediaTypes names built-in media types to register on top of the
	// defaults.
	MediaTypes []string `mapstructure:"media_types" validate:"dive,oneof=wildcard json form xml yaml grid5000" yaml:"media_types,omitempty"`

	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent,omitempty"`
	Timeout   time.Duration `mapstructure:"timeout"    validate:"gte=0"            yaml:"timeout,omitempty"`
	Debug     bool          `mapstructure:"debug"      yaml:"debug"`

	// Registry replaces the default media type catalog.
	Registry *mediatype.Registry `mapstructure:"-" validate:"-" yaml:"-"`
	// Logger receives the session logs. Defaults to NopLogger.
	Logger Logger `mapstructure:"-" validate:"-" yaml:"-"`
	// HTTPClient replaces the underlying HTTP client.
	HTTPClient *http.Client `mapstructure:"-" validate:"-" yaml:"-"`
	// Metrics records prometheus metrics for every exchange when set.
	Metrics *MetricsCollector `mapstructure:"-" validate:"-" yaml:"-"`

	RequestInterceptors  []RequestInterceptor  `mapstructure:"-" validate:"-" yaml:"-"`
	ResponseInterceptors []ResponseInterceptor `mapstructure:"-" validate:"-" yaml:"-"`
}

// DefaultConfig returns a configuration with the default retry policy.
func DefaultConfig() *Config {
	return &Config{
		RetryOnError:       constants.DefaultRetryOnError,
		WaitBeforeRetry:    constants.DefaultWaitBeforeRetry,
		RetryNonIdempotent: true,
		UserAgent:          constants.DefaultUserAgent,
		Timeout:            constants.DefaultHTTPTimeout,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: failed %q", e.Namespace(), e.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
}

// normalizeURI trims a trailing slash and adds "https://" when the scheme is
// missing.
func normalizeURI(uri string) string {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return uri
	}

	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		uri = "https://" + uri
	}

	return strings.TrimSuffix(uri, "/")
}

// Override returns a copy of c where every non-zero field of explicit wins.
func (c *Config) Override(explicit *Config) *Config {
	merged := *c
	if explicit == nil {
		return &merged
	}

	if explicit.URI != "" {
		merged.URI = explicit.URI
	}

	if explicit.Username != "" {
		merged.Username = explicit.Username
	}

	if explicit.Password != "" {
		merged.Password = explicit.Password
	}

	if len(explicit.DefaultHeaders) > 0 {
		headers := make(map[string]string, len(c.DefaultHeaders)+len(explicit.DefaultHeaders))
		for k, v := range c.DefaultHeaders {
			headers[k] = v
		}

		for k, v := range explicit.DefaultHeaders {
			headers[k] = v
		}

		merged.DefaultHeaders = headers
	}

	if explicit.RetryOnError != 0 {
		merged.RetryOnError = explicit.RetryOnError
	}

	if explicit.WaitBeforeRetry != 0 {
		merged.WaitBeforeRetry = explicit.WaitBeforeRetry
	}

	if explicit.RetryNonIdempotent {
		merged.RetryNonIdempotent = true
	}

	if explicit.GuessItemURIs {
		merged.GuessItemURIs = true
	}

	if len(explicit.MediaTypes) > 0 {
		merged.MediaTypes = append(append([]string(nil), c.MediaTypes...), explicit.MediaTypes...)
	}

	if explicit.UserAgent != "" {
		merged.UserAgent = explicit.UserAgent
	}

	if explicit.Timeout != 0 {
		merged.Timeout = explicit.Timeout
	}

	if explicit.Debug {
		merged.Debug = true
	}

	if explicit.Registry != nil {
		merged.Registry = explicit.Registry
	}

	if explicit.Logger != nil {
		merged.Logger = explicit.Logger
	}

	if explicit.HTTPClient != nil {
		merged.HTTPClient = explicit.HTTPClient
	}

	if explicit.Metrics != nil {
		merged.Metrics = explicit.Metrics
	}

	merged.RequestInterceptors = append(append([]RequestInterceptor(nil), c.RequestInterceptors...), explicit.RequestInterceptors...)
	merged.ResponseInterceptors = append(append([]ResponseInterceptor(nil), c.ResponseInterceptors...), explicit.ResponseInterceptors...)

	return &merged
}
