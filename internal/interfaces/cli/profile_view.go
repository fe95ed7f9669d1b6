package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
)

// ProfileSource resolves profile aggregates.
type ProfileSource interface {
	GetProfile(ctx context.Context, id social.UserID) (*social.UserProfile, error)
}

// PostLister fetches one user's posts.
type PostLister interface {
	ByUser(ctx context.Context, id social.UserID) ([]social.Post, error)
}

// FollowGraph provides the follow edge operations.
type FollowGraph interface {
	Follow(ctx context.Context, target social.UserID) error
	Unfollow(ctx context.Context, target social.UserID) error
	IsFollowing(ctx context.Context, target social.UserID) (bool, error)
}

// ProfileView renders a user's profile page: the header with counts, the
// follow affordance and the user's posts.
type ProfileView struct {
	profiles ProfileSource
	posts    PostLister
	follows  FollowGraph
	sessions *session.Store
	out      io.Writer
	logger   *zap.Logger
}

// NewProfileView creates a profile view.
func NewProfileView(profiles ProfileSource, posts PostLister, follows FollowGraph, sessions *session.Store, out io.Writer, logger *zap.Logger) *ProfileView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileView{
		profiles: profiles,
		posts:    posts,
		follows:  follows,
		sessions: sessions,
		out:      out,
		logger:   logger.Named("profile"),
	}
}

// Render fetches the profile, the user's posts and the follow state in
// parallel and prints the page. The profile fetch failing fails the render;
// the posts or follow-state fetch failing degrades that section instead.
func (v *ProfileView) Render(ctx context.Context, id social.UserID) error {
	snapshot := v.sessions.Current()
	own := snapshot.User != nil && snapshot.User.ID == id

	var (
		wg      sync.WaitGroup
		profile *social.UserProfile
		posts   []social.Post

		profileErr error
		postsErr   error

		following    bool
		followingErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profileErr = v.profiles.GetProfile(ctx, id)
	}()
	go func() {
		defer wg.Done()
		posts, postsErr = v.posts.ByUser(ctx, id)
	}()
	if !own {
		wg.Add(1)
		go func() {
			defer wg.Done()
			following, followingErr = v.follows.IsFollowing(ctx, id)
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if profileErr != nil {
		return profileErr
	}

	fmt.Fprintf(v.out, "== %s ==\n", profile.User.DisplayName())
	if profile.User.Bio != "" {
		fmt.Fprintln(v.out, profile.User.Bio)
	}
	fmt.Fprintf(v.out, "%d followers, %d following, %d posts\n",
		profile.FollowersCount, profile.FollowingCount, profile.PostCount)

	switch {
	case own:
		fmt.Fprintln(v.out, "[edit profile] [change photo]")
	case followingErr != nil:
		v.logger.Debug("follow state unavailable", zap.Error(followingErr))
		fmt.Fprintln(v.out, "[follow state unavailable]")
	case following:
		fmt.Fprintln(v.out, "[Following]")
	default:
		fmt.Fprintln(v.out, "[Follow]")
	}

	if postsErr != nil {
		v.logger.Debug("profile posts unavailable", zap.Error(postsErr))
		fmt.Fprintln(v.out, "Posts could not be loaded.")
		return nil
	}
	for i := range posts {
		fmt.Fprintf(v.out, "[%d] %s\n", i, posts[i].Content)
		fmt.Fprintf(v.out, "    %d likes, %d comments\n", posts[i].LikeCount(), posts[i].CommentCount())
	}
	return nil
}

// ToggleFollow follows or unfollows the profiled user based on the current
// edge and returns the new state.
func (v *ProfileView) ToggleFollow(ctx context.Context, id social.UserID) (bool, error) {
	snapshot := v.sessions.Current()
	if snapshot.User != nil && snapshot.User.ID == id {
		return false, shared.NewDomainError(shared.CodeInvalidInput, "cannot follow yourself")
	}

	following, err := v.follows.IsFollowing(ctx, id)
	if err != nil {
		return false, err
	}
	if following {
		if err := v.follows.Unfollow(ctx, id); err != nil {
			return true, err
		}
		fmt.Fprintln(v.out, "[Follow]")
		return false, nil
	}
	if err := v.follows.Follow(ctx, id); err != nil {
		return false, err
	}
	fmt.Fprintln(v.out, "[Following]")
	return true, nil
}
