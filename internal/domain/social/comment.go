package social

// Comment represents a post comment. The identifier is absent on some
// backend variants, so zero means "not assigned". Comments are never edited
// or deleted by this client.
type Comment struct {
	ID       int64  `json:"id,omitempty"`
	UserID   UserID `json:"userId"`
	Text     string `json:"text"`
	Username string `json:"username,omitempty"`
	PostedAt string `json:"postedAt,omitempty"`
}

// AuthorName returns the display name carried with the comment, or a
// placeholder when the backend omitted it.
func (c *Comment) AuthorName() string {
	if c.Username != "" {
		return c.Username
	}
	return PlaceholderName(c.UserID)
}
