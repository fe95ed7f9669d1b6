package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/infrastructure/metrics"
)

func bytesReader(s string) io.Reader { return strings.NewReader(s) }

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL + "/api", Tokens: tokens})
	require.NoError(t, err)
	return client
}

func TestDoAttachesJSONBodyAndHeaders(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"ok": true}`))
	}), staticTokens("tok-123"))

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.Post(context.Background(), "/login", map[string]string{"email": "a@b.edu"}, &out)
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "/api/login", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	var auth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}), staticTokens(""))

	require.NoError(t, client.Get(context.Background(), "/posts", &struct{}{}))
	assert.Empty(t, auth)
}

func TestDoMultipartSetsBoundary(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "1", r.FormValue("userId"))
		assert.Equal(t, "hello", r.FormValue("content"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "pic.png", header.Filename)

		w.Write([]byte(`{"id": 7, "userId": 1, "content": "hello"}`))
	}), nil)

	body := NewMultipart().
		AddField("userId", "1").
		AddField("content", "hello").
		AddFile("file", "pic.png", bytesReader("fake-png"))

	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, client.Post(context.Background(), "/posts", body, &out))
	assert.Equal(t, 7, out.ID)
}

func TestDoServerErrorMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "Email already registered"}`))
	}), nil)

	err := client.Post(context.Background(), "/users", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrRequestFailed))

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "Email already registered", domainErr.Message)
	assert.Equal(t, http.StatusConflict, domainErr.Status)
}

func TestDoServerErrorWithoutMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), nil)

	err := client.Get(context.Background(), "/posts", nil)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "HTTP 502", domainErr.Message)
}

func TestDoConnectivityError(t *testing.T) {
	client, err := New(Config{BaseURL: "http://127.0.0.1:1/api"})
	require.NoError(t, err)

	err = client.Get(context.Background(), "/posts", nil)
	assert.True(t, errors.Is(err, shared.ErrConnectivity))
}

func TestDoMalformedSuccessBodyFailsLoudly(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": `)) // truncated
	}), nil)

	err := client.Get(context.Background(), "/posts/1", &struct{}{})
	assert.True(t, errors.Is(err, shared.ErrDecodeFailed))
}

func TestDoEmptyBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), nil)

	t.Run("accepted when no payload expected", func(t *testing.T) {
		assert.NoError(t, client.Delete(context.Background(), "/users/5/follow/9", nil))
	})

	t.Run("rejected when a payload was expected", func(t *testing.T) {
		err := client.Get(context.Background(), "/users/5", &struct{}{})
		assert.True(t, errors.Is(err, shared.ErrDecodeFailed))
	})
}

func TestDoRecordsMetrics(t *testing.T) {
	reqMetrics := metrics.NewRequests()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, Metrics: reqMetrics})
	require.NoError(t, err)
	require.NoError(t, client.Get(context.Background(), "/posts", &struct{}{}))

	families, err := reqMetrics.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names[metrics.MetricRequestsTotal])
	assert.True(t, names[metrics.MetricRequestDurationSeconds])
}
