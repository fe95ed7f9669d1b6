package social

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// PostID is an opaque post identifier. The backend sends numbers from the
// relational store and strings from the document store, so the client
// normalizes both to a string and never assumes which one it got.
type PostID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *PostID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("post id: empty value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = PostID(n.String())
	return nil
}

// Numeric returns the identifier as an integer when it is purely numeric.
func (id PostID) Numeric() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Post represents a feed entry
type Post struct {
	ID        PostID     `json:"id"`
	UserID    UserID     `json:"userId"`
	Content   string     `json:"content"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Comments  []Comment  `json:"comments,omitempty"`
	Likes     []UserID   `json:"likes,omitempty"`
}

// LikeCount returns the number of users that liked the post. The displayed
// count must always equal the length of the liking-user set.
func (p *Post) LikeCount() int {
	return len(p.Likes)
}

// LikedBy reports whether the given user is in the liking-user set.
func (p *Post) LikedBy(id UserID) bool {
	for _, uid := range p.Likes {
		if uid == id {
			return true
		}
	}
	return false
}

// SetLiked adds or removes id from the liking-user set. Adding an already
// present user or removing an absent one is a no-op, so the set never holds
// duplicates.
func (p *Post) SetLiked(id UserID, liked bool) {
	if liked {
		if !p.LikedBy(id) {
			p.Likes = append(p.Likes, id)
		}
		return
	}
	for i, uid := range p.Likes {
		if uid == id {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return
		}
	}
}

// CommentCount returns the number of comments on the post.
func (p *Post) CommentCount() int {
	return len(p.Comments)
}

// AppendComment adds a comment to the end of the post's comment sequence.
func (p *Post) AppendComment(c Comment) {
	p.Comments = append(p.Comments, c)
}

// SortByRecency orders posts newest first: by numeric identifier descending
// when both identifiers are purely numeric, otherwise by creation timestamp
// descending. Posts without a timestamp sort last among non-numeric ones.
func SortByRecency(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, aOK := posts[i].ID.Numeric()
		b, bOK := posts[j].ID.Numeric()
		if aOK && bOK {
			return a > b
		}
		return postTime(&posts[i]).After(postTime(&posts[j]))
	})
}

func postTime(p *Post) time.Time {
	if p.CreatedAt == nil {
		return time.Time{}
	}
	return *p.CreatedAt
}

// PlaceholderName is the degraded display name used when the author record
// cannot be fetched.
func PlaceholderName(id UserID) string {
	return fmt.Sprintf("User %d", id)
}
