package constants

import "time"

// ConfigDirPerm is the permission for configuration directories.
const ConfigDirPerm = 0750

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single HTTP attempt.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry defaults.
const (
	// DefaultRetryOnError is the default number of retries after a
	// connection error or a 502/503/504 response.
	DefaultRetryOnError = 5

	// DefaultWaitBeforeRetry is the fixed delay between two attempts.
	DefaultWaitBeforeRetry = 5 * time.Second
)

// HTTP header names.
const (
	HeaderAccept        = "Accept"
	HeaderAllow         = "Allow"
	HeaderCacheControl  = "Cache-Control"
	HeaderContentType   = "Content-Type"
	HeaderLocation      = "Location"
	HeaderRequestID     = "X-Request-Id"
	HeaderUserAgent     = "User-Agent"
	HeaderAuthorization = "Authorization"
)

// Header values.
const (
	// NoCache is the Cache-Control directive used to bypass caches.
	NoCache = "no-cache"

	// AcceptAll is the default Accept header.
	AcceptAll = "*/*"

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "restfully-go/" + Version
)

// Version is the library version reported in the User-Agent.
const Version = "1.0.0"

// Content types.
const (
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
	ContentTypeOctetStream    = "application/octet-stream"
)

// Error display limits.
const (
	// ErrorBodyFragmentLimit caps the response body fragment carried by errors.
	ErrorBodyFragmentLimit = 200
)

// Format constants.
const (
	// FormatJSON represents JSON output format.
	FormatJSON = "json"

	// FormatYAML represents YAML output format.
	FormatYAML = "yaml"

	// FormatTable represents table output format.
	FormatTable = "table"
)

// Environment variables.
const (
	// EnvConfigFile overrides the configuration file location.
	EnvConfigFile = "RESTFULLY_CONFIG"

	// EnvPrefix is the prefix of environment variables read by the loader.
	EnvPrefix = "RESTFULLY"
)
