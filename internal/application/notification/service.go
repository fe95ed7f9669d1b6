// Package notification implements the notification inbox: listing, unread
// counts, marking as read and background polling of the unread badge.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
)

// Service handles notification operations
type Service struct {
	api      *api.Client
	sessions *session.Store
	logger   *zap.Logger
}

// NewService creates a new notification service
func NewService(apiClient *api.Client, sessions *session.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      apiClient,
		sessions: sessions,
		logger:   logger.Named("notification"),
	}
}

// List fetches the signed-in user's notifications, newest first as the
// backend returns them.
func (s *Service) List(ctx context.Context) ([]social.Notification, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	var items []social.Notification
	if err := s.api.Get(ctx, fmt.Sprintf("/notifications/user/%d", user.ID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UnreadCount fetches the number of unread notifications.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	user, err := s.currentUser()
	if err != nil {
		return 0, err
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := s.api.Get(ctx, fmt.Sprintf("/notifications/user/%d/count", user.ID), &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkAllRead marks every notification as read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	user, err := s.currentUser()
	if err != nil {
		return err
	}
	return s.api.Put(ctx, fmt.Sprintf("/notifications/user/%d/read", user.ID), nil, nil)
}

func (s *Service) currentUser() (*social.User, error) {
	snapshot := s.sessions.Current()
	if snapshot.State != session.StateAuthenticated || snapshot.User == nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "sign in first")
	}
	return snapshot.User, nil
}
