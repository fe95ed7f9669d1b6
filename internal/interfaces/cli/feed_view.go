package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/optimistic"
	"github.com/ifconnect/client/internal/application/post"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/demo"
)

// UserDirectory resolves user records for display.
type UserDirectory interface {
	GetUser(ctx context.Context, id social.UserID) (*social.User, error)
}

// FeedSource provides timeline operations.
type FeedSource interface {
	Feed(ctx context.Context, mode post.FeedMode, radiusKm float64) ([]social.Post, error)
	Create(ctx context.Context, input post.CreateInput) (*social.Post, error)
	ToggleLike(ctx context.Context, p *social.Post) (<-chan optimistic.Result, error)
	AddComment(ctx context.Context, p *social.Post, text string) (*social.Comment, error)
}

// FeedView renders one of the three timelines and hosts the composer and
// the like/comment actions on the listed posts.
type FeedView struct {
	feed     FeedSource
	users    UserDirectory
	demo     *demo.Dataset
	radiusKm float64
	out      io.Writer
	logger   *zap.Logger

	mu    sync.Mutex
	posts []social.Post
	names map[social.UserID]string
}

// NewFeedView creates a feed view. demoData may be nil to disable the
// offline preview.
func NewFeedView(feed FeedSource, users UserDirectory, demoData *demo.Dataset, radiusKm float64, out io.Writer, logger *zap.Logger) *FeedView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedView{
		feed:     feed,
		users:    users,
		demo:     demoData,
		radiusKm: radiusKm,
		out:      out,
		logger:   logger.Named("feed"),
		names:    make(map[social.UserID]string),
	}
}

// Render fetches and prints the requested timeline. When the backend is
// unreachable and an offline preview dataset is present, the preview is
// shown instead of the error. A cancelled context abandons the render
// without writing anything.
func (v *FeedView) Render(ctx context.Context, mode post.FeedMode) error {
	posts, err := v.feed.Feed(ctx, mode, v.radiusKm)
	if err != nil {
		if errors.Is(err, shared.ErrConnectivity) && v.demo != nil {
			v.logger.Warn("backend unreachable, showing offline preview")
			return v.renderOffline(ctx, mode)
		}
		return err
	}

	v.resolveAuthors(ctx, posts)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.mu.Lock()
	v.posts = posts
	v.mu.Unlock()

	fmt.Fprintf(v.out, "== %s feed ==\n", mode)
	if len(posts) == 0 {
		fmt.Fprintln(v.out, "No posts yet.")
		return nil
	}
	for i := range posts {
		v.printPost(i, &posts[i])
	}
	return nil
}

// Publish creates a post and puts it at the top of the rendered list.
func (v *FeedView) Publish(ctx context.Context, input post.CreateInput) error {
	created, err := v.feed.Create(ctx, input)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.mu.Lock()
	v.posts = append([]social.Post{*created}, v.posts...)
	v.mu.Unlock()

	fmt.Fprintf(v.out, "Posted %q\n", created.Content)
	return nil
}

// Like flips the like on the nth listed post. The count shown by the next
// render already includes the optimistic flip; the returned channel reports
// the backend's verdict.
func (v *FeedView) Like(ctx context.Context, index int) (<-chan optimistic.Result, error) {
	p, err := v.postAt(index)
	if err != nil {
		return nil, err
	}
	return v.feed.ToggleLike(ctx, p)
}

// Comment adds a comment to the nth listed post.
func (v *FeedView) Comment(ctx context.Context, index int, text string) error {
	p, err := v.postAt(index)
	if err != nil {
		return err
	}
	created, err := v.feed.AddComment(ctx, p, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(v.out, "Commented %q\n", created.Text)
	return nil
}

// Posts returns the currently listed posts.
func (v *FeedView) Posts() []social.Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]social.Post, len(v.posts))
	copy(out, v.posts)
	return out
}

func (v *FeedView) postAt(index int) (*social.Post, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= len(v.posts) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("no post #%d on screen", index))
	}
	return &v.posts[index], nil
}

// resolveAuthors fills the display-name cache for every author in posts.
// Lookups run in parallel; a failed lookup degrades that author to the
// numeric placeholder instead of failing the feed.
func (v *FeedView) resolveAuthors(ctx context.Context, posts []social.Post) {
	pending := make(map[social.UserID]bool)
	v.mu.Lock()
	for i := range posts {
		id := posts[i].UserID
		if _, known := v.names[id]; !known && !pending[id] {
			pending[id] = true
		}
	}
	v.mu.Unlock()

	var wg sync.WaitGroup
	for id := range pending {
		wg.Add(1)
		go func(id social.UserID) {
			defer wg.Done()
			name := social.PlaceholderName(id)
			if user, err := v.users.GetUser(ctx, id); err == nil {
				name = user.DisplayName()
			} else {
				v.logger.Debug("author lookup failed", zap.Int64("user_id", int64(id)), zap.Error(err))
			}
			v.mu.Lock()
			v.names[id] = name
			v.mu.Unlock()
		}(id)
	}
	wg.Wait()
}

func (v *FeedView) renderOffline(ctx context.Context, mode post.FeedMode) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	posts := make([]social.Post, len(v.demo.Posts))
	copy(posts, v.demo.Posts)
	social.SortByRecency(posts)

	v.mu.Lock()
	for _, u := range v.demo.Users {
		v.names[u.ID] = u.DisplayName()
	}
	v.posts = posts
	v.mu.Unlock()

	fmt.Fprintf(v.out, "== %s feed (offline preview) ==\n", mode)
	for i := range posts {
		v.printPost(i, &posts[i])
	}
	return nil
}

func (v *FeedView) printPost(index int, p *social.Post) {
	v.mu.Lock()
	name, ok := v.names[p.UserID]
	v.mu.Unlock()
	if !ok {
		name = social.PlaceholderName(p.UserID)
	}

	fmt.Fprintf(v.out, "[%d] %s: %s\n", index, name, p.Content)
	if p.ImageURL != "" {
		fmt.Fprintf(v.out, "    image: %s\n", p.ImageURL)
	}
	fmt.Fprintf(v.out, "    %d likes, %d comments\n", p.LikeCount(), p.CommentCount())
	for i := range p.Comments {
		c := &p.Comments[i]
		fmt.Fprintf(v.out, "    > %s: %s\n", c.AuthorName(), c.Text)
	}
}
