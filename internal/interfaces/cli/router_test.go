package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/persistence"
)

func newSessions(t *testing.T) *session.Store {
	t.Helper()
	db, err := persistence.Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	store := session.NewStore(persistence.NewLocalStore(db), zap.NewNop())
	t.Cleanup(store.Close)
	return store
}

func TestSignedOutUserIsSentToLogin(t *testing.T) {
	sessions := newSessions(t)
	require.NoError(t, sessions.Load(context.Background()))
	router := NewRouter(sessions, zap.NewNop())

	for _, route := range []Route{RouteFeed, RouteProfile, RouteNotifications, RouteEvents} {
		assert.Equal(t, RouteLogin, router.Resolve(route), "route %s", route)
	}
	assert.Equal(t, RouteLogin, router.Resolve(RouteLogin))
	assert.Equal(t, RouteRegister, router.Resolve(RouteRegister))
}

func TestSignedInUserIsSentAwayFromAuthViews(t *testing.T) {
	sessions := newSessions(t)
	require.NoError(t, sessions.Login(context.Background(), social.User{ID: 12, Username: "marta"}, ""))
	router := NewRouter(sessions, zap.NewNop())

	assert.Equal(t, RouteFeed, router.Resolve(RouteLogin))
	assert.Equal(t, RouteFeed, router.Resolve(RouteRegister))
	assert.Equal(t, RouteEvents, router.Resolve(RouteEvents))
	assert.Equal(t, RouteProfile, router.Resolve(RouteProfile))
}
