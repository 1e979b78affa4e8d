// Package restfully is a client for hypermedia REST APIs.
//
// A Session is created from a Config holding the entry point of the API. Every
// response is decoded by the media type matching its Content-Type and turned
// into a Resource whose links can be followed on demand:
//
//	session, err := restfully.New(&restfully.Config{
//	  URI:          "https://api.grid5000.fr/stable",
//	  RetryOnError: 3,
//	  MediaTypes:   []string{"grid5000"},
//	})
//	if err != nil {
//	  return err
//	}
//
//	root, err := session.Root(ctx)
//	sites, err := root.Follow(ctx, "sites")
//	rennes, err := sites.Collection().Find(ctx, "rennes")
//	clusters, err := rennes.Follow(ctx, "clusters")
//
// # Collections
//
// A resource whose representation carries items, a total and an offset has a
// Collection facet. Find searches the current page, then the pages reachable
// through "next" links, fetching them one at a time.
//
// # Errors
//
// Error statuses are returned as *HTTPError (IsClientError, IsServerError,
// IsNotFound). Connection failures that survive the retry policy are
// returned as *ConnectionError. Resource operations wrap both in
// *ResourceError; errors.As reaches the underlying value.
//
// # Retries
//
// Connection refusals and 502, 503 and 504 responses are retried
// Config.RetryOnError times with a fixed Config.WaitBeforeRetry delay. POST and
// PATCH requests are only retried when Config.RetryNonIdempotent is set, as
// DefaultConfig does.
package restfully
