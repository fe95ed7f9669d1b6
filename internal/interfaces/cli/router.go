// Package cli renders the client's views to a terminal and routes between
// them. Views never talk to the backend directly; they go through the
// application services and print what those return.
package cli

import (
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
)

// Route names a view.
type Route string

const (
	RouteLogin         Route = "login"
	RouteRegister      Route = "register"
	RouteFeed          Route = "feed"
	RouteProfile       Route = "profile"
	RouteNotifications Route = "notifications"
	RouteEvents        Route = "events"
)

// authRoutes are only for signed-out users; everything else needs a session.
var authRoutes = map[Route]bool{
	RouteLogin:    true,
	RouteRegister: true,
}

// Router decides which view actually opens for a requested route.
type Router struct {
	sessions *session.Store
	logger   *zap.Logger
}

// NewRouter creates a router over the session store.
func NewRouter(sessions *session.Store, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{sessions: sessions, logger: logger.Named("router")}
}

// Resolve applies the route guard. Signed-in users asking for an auth view
// land on the feed; signed-out users asking for a protected view land on
// login. The caller must have finished session rehydration first: while the
// session is still loading no redirect decision is made and the requested
// route is returned untouched.
func (r *Router) Resolve(requested Route) Route {
	snapshot := r.sessions.Current()
	switch snapshot.State {
	case session.StateLoading:
		return requested
	case session.StateAuthenticated:
		if authRoutes[requested] {
			r.logger.Debug("redirecting signed-in user to feed", zap.String("requested", string(requested)))
			return RouteFeed
		}
		return requested
	default:
		if !authRoutes[requested] {
			r.logger.Debug("redirecting signed-out user to login", zap.String("requested", string(requested)))
			return RouteLogin
		}
		return requested
	}
}
