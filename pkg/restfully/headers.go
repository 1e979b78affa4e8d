package restfully

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/restfully/pkg/mediatype"
)

// HeaderKey normalizes a header name: underscores become dashes and the name
// is put in canonical form, so "content_type" gives "Content-Type".
func HeaderKey(name string) string {
	return http.CanonicalHeaderKey(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}

// NormalizeHeaders builds a canonical header map.
func NormalizeHeaders(headers map[string]string) http.Header {
	out := make(http.Header, len(headers))

	for k, v := range headers {
		out.Set(HeaderKey(k), v)
	}

	return out
}

// mergeHeaders overlays each layer on the previous one. Later layers win.
func mergeHeaders(layers ...http.Header) http.Header {
	out := http.Header{}

	for _, layer := range layers {
		for k, values := range layer {
			out[HeaderKey(k)] = append([]string(nil), values...)
		}
	}

	return out
}

func headersToMap(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))

	for k := range headers {
		out[k] = headers.Get(k)
	}

	return out
}

// mergeQuery adds params to the query of uri, keeping the values already
// present.
func mergeQuery(uri *url.URL, params map[string]any) {
	if len(params) == 0 {
		return
	}

	query := uri.Query()

	for k, values := range mediatype.FlattenParams(params) {
		for _, v := range values {
			query.Add(k, v)
		}
	}

	uri.RawQuery = query.Encode()
}

// replaceQuery sets params on the query of uri, replacing existing values of
// the same keys.
func replaceQuery(uri *url.URL, params map[string]any) {
	if len(params) == 0 {
		return
	}

	query := uri.Query()

	for k, values := range mediatype.FlattenParams(params) {
		query[k] = values
	}

	uri.RawQuery = query.Encode()
}

func isIdempotent(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPatch:
		return false
	}

	return true
}

func carriesBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut:
		return true
	}

	return false
}
