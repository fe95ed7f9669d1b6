// Package post implements the timeline: fetching feeds, publishing posts,
// commenting and optimistic like toggles.
package post

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/optimistic"
	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
)

// Service handles timeline operations
type Service struct {
	api      *api.Client
	sessions *session.Store
	toggles  *optimistic.Engine
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new post service
func NewService(apiClient *api.Client, sessions *session.Store, toggles *optimistic.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      apiClient,
		sessions: sessions,
		toggles:  toggles,
		validate: validator.New(),
		logger:   logger.Named("post"),
	}
}

// Feed fetches one of the three timelines, newest first. The following and
// regional feeds need a signed-in user; the global feed does not.
func (s *Service) Feed(ctx context.Context, mode FeedMode, radiusKm float64) ([]social.Post, error) {
	var path string
	switch mode {
	case FeedGlobal:
		path = "/posts"
	case FeedFollowing:
		user, err := s.currentUser()
		if err != nil {
			return nil, err
		}
		path = fmt.Sprintf("/posts/feed/%d", user.ID)
	case FeedRegional:
		user, err := s.currentUser()
		if err != nil {
			return nil, err
		}
		if radiusKm <= 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "radius must be positive")
		}
		path = fmt.Sprintf("/posts/feed/regional?userId=%d&radiusKm=%g", user.ID, radiusKm)
	default:
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unknown feed mode")
	}

	var posts []social.Post
	if err := s.api.Get(ctx, path, &posts); err != nil {
		return nil, err
	}
	social.SortByRecency(posts)
	return posts, nil
}

// ByUser fetches one user's posts, newest first.
func (s *Service) ByUser(ctx context.Context, id social.UserID) ([]social.Post, error) {
	if id <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "user id must be positive")
	}
	var posts []social.Post
	if err := s.api.Get(ctx, fmt.Sprintf("/posts/user/%d", id), &posts); err != nil {
		return nil, err
	}
	social.SortByRecency(posts)
	return posts, nil
}

// Create publishes a post, with an optional image attachment, and returns
// the record the backend created.
func (s *Service) Create(ctx context.Context, input CreateInput) (*social.Post, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "post content is required and limited to 2000 characters")
	}

	form := api.NewMultipart().
		AddField("userId", strconv.FormatInt(int64(user.ID), 10)).
		AddField("content", input.Content)
	if len(input.Image) > 0 {
		filename := input.ImageFilename
		if filename == "" {
			filename = "upload"
		}
		form.AddFile("file", filename, bytes.NewReader(input.Image))
	}

	var created social.Post
	if err := s.api.Post(ctx, "/posts", form, &created); err != nil {
		return nil, err
	}
	s.logger.Info("post published",
		zap.String("post_id", string(created.ID)),
		zap.Int64("user_id", int64(user.ID)))
	return &created, nil
}

// ToggleLike flips the signed-in user's like on the post optimistically. The
// post's liking-user set changes before this returns; the returned channel
// reports whether the backend confirmed the flip or it was rolled back.
//
// The post must not be mutated elsewhere until the flip resolves.
func (s *Service) ToggleLike(ctx context.Context, p *social.Post) (<-chan optimistic.Result, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	userID := user.ID
	liking := !p.LikedBy(userID)
	path := fmt.Sprintf("/posts/%s/like?userId=%d", p.ID, userID)

	return s.toggles.Do(ctx, optimistic.Flip{
		Key:    fmt.Sprintf("like:%s:%d", p.ID, userID),
		Apply:  func() { p.SetLiked(userID, liking) },
		Revert: func() { p.SetLiked(userID, !liking) },
		Commit: func(ctx context.Context) error {
			return s.api.Post(ctx, path, nil, nil)
		},
	})
}

// AddComment posts a comment and appends the created record to the post.
func (s *Service) AddComment(ctx context.Context, p *social.Post, text string) (*social.Comment, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	input := CommentInput{UserID: user.ID, Text: text}
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "comment text is required and limited to 500 characters")
	}

	var created social.Comment
	if err := s.api.Post(ctx, fmt.Sprintf("/posts/%s/comments", p.ID), input, &created); err != nil {
		return nil, err
	}
	if created.Username == "" {
		created.Username = user.Username
	}
	p.AppendComment(created)
	return &created, nil
}

func (s *Service) currentUser() (*social.User, error) {
	snapshot := s.sessions.Current()
	if snapshot.State != session.StateAuthenticated || snapshot.User == nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "sign in first")
	}
	return snapshot.User, nil
}
