package restfully_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInterceptor = errors.New("interceptor error")

func TestInterceptorChain(t *testing.T) {
	t.Parallel()

	session := newSession(t, "https://api.example.com")
	req, err := session.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("runs interceptors in order", func(t *testing.T) {
		t.Parallel()

		var order []int

		chain := restfully.NewInterceptorChain()
		chain.AddRequestInterceptor(func(ctx context.Context, req *restfully.Request) error {
			order = append(order, 1)

			return nil
		})
		chain.AddRequestInterceptor(func(ctx context.Context, req *restfully.Request) error {
			order = append(order, 2)

			return nil
		})
		chain.AddResponseInterceptor(func(ctx context.Context, req *restfully.Request, resp *restfully.Response) error {
			order = append(order, 3)

			return nil
		})

		require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
		require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, nil))
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		t.Parallel()

		called := false

		chain := restfully.NewInterceptorChain()
		chain.AddRequestInterceptor(func(ctx context.Context, req *restfully.Request) error {
			return errInterceptor
		})
		chain.AddRequestInterceptor(func(ctx context.Context, req *restfully.Request) error {
			called = true

			return nil
		})
		chain.AddResponseInterceptor(func(ctx context.Context, req *restfully.Request, resp *restfully.Response) error {
			return errInterceptor
		})

		err := chain.ExecuteRequestInterceptors(ctx, req)
		require.ErrorIs(t, err, errInterceptor)
		assert.Contains(t, err.Error(), "request interceptor failed")
		assert.False(t, called)

		err = chain.ExecuteResponseInterceptors(ctx, req, nil)
		require.ErrorIs(t, err, errInterceptor)
		assert.Contains(t, err.Error(), "response interceptor failed")
	})
}

func TestInterceptors(t *testing.T) {
	t.Parallel()

	session := newSession(t, "https://api.example.com")
	ctx := context.Background()

	t.Run("basic auth", func(t *testing.T) {
		t.Parallel()

		req, err := session.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, err)

		require.NoError(t, restfully.BasicAuthInterceptor("crohr", "secret")(ctx, req))
		assert.Equal(t, "Basic Y3JvaHI6c2VjcmV0", req.Header().Get("Authorization"))

		req, err = session.NewRequest(http.MethodGet, "/", &restfully.RequestOptions{
			Headers: map[string]string{"authorization": "Bearer token"},
		})
		require.NoError(t, err)

		require.NoError(t, restfully.BasicAuthInterceptor("crohr", "secret")(ctx, req))
		assert.Equal(t, "Bearer token", req.Header().Get("Authorization"))
	})

	t.Run("request id", func(t *testing.T) {
		t.Parallel()

		req, err := session.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, err)

		require.NoError(t, restfully.RequestIDInterceptor()(ctx, req))
		id := req.Header().Get("X-Request-Id")
		assert.Len(t, id, 36)
		assert.Equal(t, id, req.Metadata["request_id"])

		require.NoError(t, restfully.RequestIDInterceptor()(ctx, req))
		next := req.Header().Get("X-Request-Id")
		assert.Len(t, next, 36)
		assert.NotEqual(t, id, next)
		assert.Equal(t, next, req.Metadata["request_id"])

		req, err = session.NewRequest(http.MethodGet, "/", &restfully.RequestOptions{
			Headers: map[string]string{"x_request_id": "caller-id"},
		})
		require.NoError(t, err)

		require.NoError(t, restfully.RequestIDInterceptor()(ctx, req))
		require.NoError(t, restfully.RequestIDInterceptor()(ctx, req))
		assert.Equal(t, "caller-id", req.Header().Get("X-Request-Id"))
		assert.Equal(t, "caller-id", req.Metadata["request_id"])
	})

	t.Run("headers", func(t *testing.T) {
		t.Parallel()

		req, err := session.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, err)

		require.NoError(t, restfully.HeaderInterceptor(map[string]string{"x_api_key": "k"})(ctx, req))
		assert.Equal(t, "k", req.Header().Get("X-Api-Key"))
	})

	t.Run("logging", func(t *testing.T) {
		t.Parallel()

		logger := &MockLogger{}

		req, err := session.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, err)

		require.NoError(t, restfully.LoggingInterceptor(logger)(ctx, req))
		assert.Contains(t, req.Metadata, "start_time")

		resp := session.NewResponse(req, http.StatusOK, http.Header{}, nil)
		require.NoError(t, restfully.LoggingResponseInterceptor(logger)(ctx, req, resp))
		assert.Equal(t, []string{"API Request", "API Response"}, logger.messages("debug"))
	})
}
