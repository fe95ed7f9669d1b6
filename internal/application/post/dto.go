package post

import "github.com/ifconnect/client/internal/domain/social"

// FeedMode selects which timeline a feed fetch returns.
type FeedMode string

const (
	FeedGlobal    FeedMode = "global"
	FeedFollowing FeedMode = "following"
	FeedRegional  FeedMode = "regional"
)

// CreateInput carries the fields for publishing a post
type CreateInput struct {
	Content       string `validate:"required,max=2000"`
	ImageFilename string
	// Image is the raw image payload, nil for text-only posts.
	Image []byte
}

// CommentInput carries a new comment's fields
type CommentInput struct {
	UserID social.UserID `json:"userId" validate:"required,gt=0"`
	Text   string        `json:"text" validate:"required,max=500"`
}
