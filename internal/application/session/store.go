// Package session owns the client's single source of truth for who is
// logged in. State is persisted to the durable local store under fixed keys
// and rehydrated on startup; views observe changes through subscriptions
// instead of reading ambient globals.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/persistence"
)

// Fixed local-store keys, matching the web client's storage names.
const (
	KeyUser  = "ifconnect:user"
	KeyToken = "ifconnect:token"
)

// State is the session lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateAuthenticated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is an immutable view of the session at one point in time.
type Snapshot struct {
	State State
	User  *social.User
	Token string
}

// Store holds the current session. It is written only by Load, Login and
// Logout; everything else reads snapshots.
//
// Thread Safety: safe for concurrent use.
type Store struct {
	local  *persistence.LocalStore
	logger *zap.Logger

	mu      sync.RWMutex
	state   State
	user    *social.User
	token   string
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

// NewStore creates an unauthenticated store. Call Load before consulting it.
func NewStore(local *persistence.LocalStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		local:  local,
		logger: logger.Named("session"),
		state:  StateUnauthenticated,
		subs:   make(map[int]chan Snapshot),
	}
}

// Load rehydrates the session from the durable store. Corrupt entries are
// deleted and leave the store unauthenticated; only store I/O failures are
// returned as errors. Route guards must not run until Load has returned.
func (s *Store) Load(ctx context.Context) error {
	s.setState(StateLoading, nil, "")

	raw, found, err := s.local.Get(ctx, KeyUser)
	if err != nil {
		s.setState(StateUnauthenticated, nil, "")
		return err
	}
	if !found {
		s.setState(StateUnauthenticated, nil, "")
		return nil
	}

	var user social.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == 0 {
		s.logger.Warn("discarding corrupt stored session",
			zap.String("code", shared.CodeSessionCorrupt),
			zap.Error(err))
		s.clearStored(ctx)
		s.setState(StateUnauthenticated, nil, "")
		return nil
	}

	token, _, err := s.local.Get(ctx, KeyToken)
	if err != nil {
		s.setState(StateUnauthenticated, nil, "")
		return err
	}
	if token != "" && tokenExpired(token) {
		s.logger.Info("stored bearer token expired, discarding session")
		s.clearStored(ctx)
		s.setState(StateUnauthenticated, nil, "")
		return nil
	}

	s.setState(StateAuthenticated, &user, token)
	s.logger.Info("session rehydrated",
		zap.Int64("user_id", int64(user.ID)),
		zap.String("username", user.Username))
	return nil
}

// Login persists the session and transitions to authenticated. token may be
// empty on backends without bearer auth.
func (s *Store) Login(ctx context.Context, user social.User, token string) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "serialize session user")
	}
	if err := s.local.Put(ctx, KeyUser, string(encoded)); err != nil {
		return err
	}
	if token != "" {
		if err := s.local.Put(ctx, KeyToken, token); err != nil {
			return err
		}
	}

	s.setState(StateAuthenticated, &user, token)
	return nil
}

// UpdateUser replaces the stored user record after a profile edit without
// touching the token or the lifecycle state.
func (s *Store) UpdateUser(ctx context.Context, user social.User) error {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != StateAuthenticated {
		return shared.NewDomainError(shared.CodeUnauthorized, "no active session")
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "serialize session user")
	}
	if err := s.local.Put(ctx, KeyUser, string(encoded)); err != nil {
		return err
	}

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	s.setState(StateAuthenticated, &user, token)
	return nil
}

// Logout clears the durable session and transitions to unauthenticated.
func (s *Store) Logout(ctx context.Context) error {
	s.clearStored(ctx)
	s.setState(StateUnauthenticated, nil, "")
	return nil
}

// Current returns a snapshot of the session.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Token implements the API client's TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe returns a channel that receives a snapshot after every state
// change, and a cancel function. Delivery is latest-wins: a slow subscriber
// sees the most recent snapshot, not every intermediate one.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close tears the store down and closes all subscriptions.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) clearStored(ctx context.Context) {
	if err := s.local.Delete(ctx, KeyUser); err != nil {
		s.logger.Warn("clearing stored user failed", zap.Error(err))
	}
	if err := s.local.Delete(ctx, KeyToken); err != nil {
		s.logger.Warn("clearing stored token failed", zap.Error(err))
	}
}

func (s *Store) setState(state State, user *social.User, token string) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.token = token
	snapshot := s.snapshotLocked()
	subs := make([]chan Snapshot, 0, len(s.subs))
	if !s.closed {
		for _, ch := range s.subs {
			subs = append(subs, ch)
		}
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot and replace it with the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snapshot := Snapshot{State: s.state, Token: s.token}
	if s.user != nil {
		user := *s.user
		snapshot.User = &user
	}
	return snapshot
}

// tokenExpired reports whether token is a JWT whose expiry has passed.
// Opaque non-JWT tokens are kept; validating signatures is the backend's
// job, the client only avoids presenting something it knows is dead.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
