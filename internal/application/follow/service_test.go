package follow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
	"github.com/ifconnect/client/internal/infrastructure/persistence"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	db, err := persistence.Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	sessions := session.NewStore(persistence.NewLocalStore(db), zap.NewNop())
	t.Cleanup(sessions.Close)
	require.NoError(t, sessions.Login(context.Background(), social.User{ID: 12, Username: "marta"}, ""))

	client, err := api.New(api.Config{BaseURL: server.URL, Tokens: sessions})
	require.NoError(t, err)
	return NewService(client, sessions, zap.NewNop())
}

func TestFollowPostsEdge(t *testing.T) {
	var method, path string
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.Follow(context.Background(), 7))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/users/12/follow/7", path)
}

func TestUnfollowDeletesEdge(t *testing.T) {
	var method, path string
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.Unfollow(context.Background(), 7))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/users/12/follow/7", path)
}

func TestFollowSelfRejected(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("self-follow must not reach the backend")
	}))

	err := svc.Follow(context.Background(), 12)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestIsFollowingDecodesBool(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/12/isFollowing/7", r.URL.Path)
		w.Write([]byte("true"))
	}))

	following, err := svc.IsFollowing(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestIsFollowingSelfShortCircuits(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("self check must not reach the backend")
	}))

	following, err := svc.IsFollowing(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, following)
}
