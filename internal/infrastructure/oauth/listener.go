// Package oauth implements the loopback callback listener used by
// browser-based sign-in. The backend's OAuth flow ends with a redirect to
// http://127.0.0.1:<port>/callback carrying the bearer token and user id;
// this package catches that single redirect and hands the result back.
package oauth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
)

const callbackPage = `<!doctype html>
<html><body>
<p>Signed in. You can close this window and return to the terminal.</p>
</body></html>`

// Callback is the payload of a completed browser sign-in.
type Callback struct {
	UserID social.UserID
	Token  string
}

// Listener catches one OAuth redirect on the loopback interface.
type Listener struct {
	addr    string
	logger  *zap.Logger
	ln      net.Listener
	results chan Callback
	once    sync.Once
}

// NewListener creates a listener for addr, e.g. "127.0.0.1:9876". Port 0
// picks a free port; Addr reports the bound one.
func NewListener(addr string, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		addr:    addr,
		logger:  logger.Named("oauth"),
		results: make(chan Callback, 1),
	}
}

// Listen binds the loopback port. The redirect URI registered with the
// backend has to match the returned address.
func (l *Listener) Listen() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return shared.NewDomainError(shared.CodeConnectivity, "cannot bind sign-in callback port: "+err.Error())
	}
	l.ln = ln
	return nil
}

// Addr returns the bound address. Only valid after Listen.
func (l *Listener) Addr() string {
	if l.ln == nil {
		return l.addr
	}
	return l.ln.Addr().String()
}

// Wait serves until one valid callback arrives or ctx is cancelled.
func (l *Listener) Wait(ctx context.Context) (*Callback, error) {
	if l.ln == nil {
		if err := l.Listen(); err != nil {
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/callback", l.handleCallback)

	server := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(l.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	l.logger.Info("waiting for browser sign-in", zap.String("addr", l.Addr()))

	select {
	case cb := <-l.results:
		return &cb, nil
	case err := <-serveErr:
		return nil, shared.NewDomainError(shared.CodeConnectivity, "sign-in listener failed: "+err.Error())
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Listener) handleCallback(c *gin.Context) {
	token := c.Query("token")
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil || userID <= 0 || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "callback requires token and userId"})
		return
	}

	// Only the first redirect counts; repeats still get the success page.
	l.once.Do(func() {
		l.results <- Callback{UserID: social.UserID(userID), Token: token}
	})
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, callbackPage)
}
