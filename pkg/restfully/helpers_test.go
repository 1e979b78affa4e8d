package restfully_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }

func (l *MockLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string

	for _, entry := range l.logs {
		if entry["level"] == level {
			out = append(out, entry["msg"].(string))
		}
	}

	return out
}

// api is a fake hypermedia server recording every request it receives.
type api struct {
	*httptest.Server

	mux      *http.ServeMux
	mu       sync.Mutex
	requests []string
	headers  []http.Header
}

func newAPI(t *testing.T) *api {
	t.Helper()

	a := &api{mux: http.NewServeMux()}
	a.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		a.mu.Lock()
		a.requests = append(a.requests, request.Method+" "+request.URL.RequestURI())
		a.headers = append(a.headers, request.Header.Clone())
		a.mu.Unlock()

		a.mux.ServeHTTP(writer, request)
	}))
	t.Cleanup(a.Close)

	return a
}

func (a *api) handle(pattern string, handler http.HandlerFunc) {
	a.mux.HandleFunc(pattern, handler)
}

// json registers a static JSON document. Extra headers come as name/value
// pairs.
func (a *api) json(pattern, body string, headers ...string) {
	a.handle(pattern, func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, body, headers...)
	})
}

func (a *api) hits() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.requests)
}

func (a *api) lastRequest() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.requests[len(a.requests)-1]
}

func (a *api) lastHeader() http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.headers[len(a.headers)-1]
}

func (a *api) requestLog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.requests...)
}

func writeJSON(writer http.ResponseWriter, status int, body string, headers ...string) {
	for i := 0; i+1 < len(headers); i += 2 {
		writer.Header().Set(headers[i], headers[i+1])
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, _ = writer.Write([]byte(body))
}

func newSession(t *testing.T, uri string, configure ...func(*restfully.Config)) *restfully.Session {
	t.Helper()

	config := &restfully.Config{
		URI:             uri,
		WaitBeforeRetry: time.Millisecond,
	}

	for _, fn := range configure {
		fn(config)
	}

	session, err := restfully.New(config)
	require.NoError(t, err)

	return session
}

// page renders one page of a collection of total items named item-N.
func page(total, offset, limit int) string {
	items := make([]string, 0, limit)

	for i := offset; i < offset+limit && i < total; i++ {
		items = append(items, fmt.Sprintf(
			`{"uid":"item-%d","links":[{"rel":"self","href":"/items/item-%d"}]}`, i, i))
	}

	links := []string{fmt.Sprintf(`{"rel":"self","href":"/items?offset=%d"}`, offset)}
	if offset+limit < total {
		links = append(links, fmt.Sprintf(`{"rel":"next","href":"/items?offset=%d"}`, offset+limit))
	}

	return fmt.Sprintf(`{"total":%d,"offset":%d,"items":[%s],"links":[%s]}`,
		total, offset, strings.Join(items, ","), strings.Join(links, ","))
}
