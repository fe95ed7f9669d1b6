// Package auth implements account operations: login, registration, profile
// reads and edits, photo uploads and nearby-user suggestions. Successful
// logins are handed to the session store so the rest of the client observes
// them.
package auth

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
)

// Service handles account operations
type Service struct {
	api      *api.Client
	sessions *session.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new auth service
func NewService(apiClient *api.Client, sessions *session.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      apiClient,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger.Named("auth"),
	}
}

// Login authenticates against the backend and establishes the session.
func (s *Service) Login(ctx context.Context, input LoginInput) (*social.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "a valid email and a password of at least 6 characters are required")
	}

	var resp loginResponse
	if err := s.api.Post(ctx, "/login", input, &resp); err != nil {
		s.logger.Warn("login failed", zap.String("email", input.Email), zap.Error(err))
		return nil, err
	}

	if err := s.sessions.Login(ctx, resp.User, resp.Token); err != nil {
		return nil, err
	}

	s.logger.Info("logged in",
		zap.Int64("user_id", int64(resp.User.ID)),
		zap.String("username", resp.User.Username))
	user := resp.User
	return &user, nil
}

// Register creates an account. The caller still has to log in afterwards.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*social.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "username, a valid email and a password of at least 6 characters are required")
	}

	var user social.User
	if err := s.api.Post(ctx, "/users", input, &user); err != nil {
		return nil, err
	}
	s.logger.Info("account created", zap.Int64("user_id", int64(user.ID)))
	return &user, nil
}

// Logout terminates the session.
func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}

// GetUser fetches a user record by id.
func (s *Service) GetUser(ctx context.Context, id social.UserID) (*social.User, error) {
	if id <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "user id must be positive")
	}
	var user social.User
	if err := s.api.Get(ctx, fmt.Sprintf("/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetProfile fetches a user together with follower, following and post counts.
func (s *Service) GetProfile(ctx context.Context, id social.UserID) (*social.UserProfile, error) {
	if id <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "user id must be positive")
	}
	var profile social.UserProfile
	if err := s.api.Get(ctx, fmt.Sprintf("/users/%d/profile", id), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile edits the signed-in user's profile and syncs the session copy.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*social.User, error) {
	current := s.sessions.Current()
	if current.State != session.StateAuthenticated || current.User == nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "sign in to edit your profile")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "profile fields are out of range")
	}

	var updated social.User
	if err := s.api.Put(ctx, fmt.Sprintf("/users/%d", current.User.ID), input, &updated); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UploadPhoto replaces the signed-in user's avatar or cover image and syncs
// the session copy with the record the backend returns.
func (s *Service) UploadPhoto(ctx context.Context, kind PhotoKind, filename string, file io.Reader) (*social.User, error) {
	current := s.sessions.Current()
	if current.State != session.StateAuthenticated || current.User == nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "sign in to change your photos")
	}
	if kind != PhotoAvatar && kind != PhotoCover {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "photo kind must be avatar or cover")
	}

	form := api.NewMultipart().
		AddField("type", string(kind)).
		AddFile("file", filename, file)

	var updated social.User
	if err := s.api.Post(ctx, fmt.Sprintf("/users/%d/photo", current.User.ID), form, &updated); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, updated); err != nil {
		return nil, err
	}
	s.logger.Info("profile photo updated",
		zap.Int64("user_id", int64(updated.ID)),
		zap.String("kind", string(kind)))
	return &updated, nil
}

// Suggestions lists users near the given user worth following.
func (s *Service) Suggestions(ctx context.Context, id social.UserID, radiusKm float64) ([]social.User, error) {
	if id <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "user id must be positive")
	}
	if radiusKm <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "radius must be positive")
	}
	var users []social.User
	path := fmt.Sprintf("/users/%d/suggestions?radiusKm=%g", id, radiusKm)
	if err := s.api.Get(ctx, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}
