// Package follow implements the follow graph operations between users.
package follow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
)

// Service handles follow graph operations
type Service struct {
	api      *api.Client
	sessions *session.Store
	logger   *zap.Logger
}

// NewService creates a new follow service
func NewService(apiClient *api.Client, sessions *session.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      apiClient,
		sessions: sessions,
		logger:   logger.Named("follow"),
	}
}

// Follow makes the signed-in user follow target.
func (s *Service) Follow(ctx context.Context, target social.UserID) error {
	user, err := s.currentUser()
	if err != nil {
		return err
	}
	if target == user.ID {
		return shared.NewDomainError(shared.CodeInvalidInput, "cannot follow yourself")
	}
	if err := s.api.Post(ctx, s.edgePath(user.ID, target), nil, nil); err != nil {
		return err
	}
	s.logger.Info("followed user",
		zap.Int64("follower_id", int64(user.ID)),
		zap.Int64("followed_id", int64(target)))
	return nil
}

// Unfollow removes the signed-in user's follow edge to target.
func (s *Service) Unfollow(ctx context.Context, target social.UserID) error {
	user, err := s.currentUser()
	if err != nil {
		return err
	}
	if target == user.ID {
		return shared.NewDomainError(shared.CodeInvalidInput, "cannot unfollow yourself")
	}
	return s.api.Delete(ctx, s.edgePath(user.ID, target), nil)
}

// IsFollowing reports whether the signed-in user follows target.
func (s *Service) IsFollowing(ctx context.Context, target social.UserID) (bool, error) {
	user, err := s.currentUser()
	if err != nil {
		return false, err
	}
	if target == user.ID {
		return false, nil
	}
	var following bool
	path := fmt.Sprintf("/users/%d/isFollowing/%d", user.ID, target)
	if err := s.api.Get(ctx, path, &following); err != nil {
		return false, err
	}
	return following, nil
}

func (s *Service) edgePath(follower, followed social.UserID) string {
	return fmt.Sprintf("/users/%d/follow/%d", follower, followed)
}

func (s *Service) currentUser() (*social.User, error) {
	snapshot := s.sessions.Current()
	if snapshot.State != session.StateAuthenticated || snapshot.User == nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "sign in first")
	}
	return snapshot.User, nil
}
