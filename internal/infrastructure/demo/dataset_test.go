package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate()
	b := Generate()

	require.Len(t, a.Posts, postCount)
	require.Len(t, a.Users, userCount)
	assert.Equal(t, a.Posts, b.Posts)
	assert.Equal(t, a.Users, b.Users)
}

func TestGenerateShapes(t *testing.T) {
	d := Generate()

	for _, p := range d.Posts {
		_, ok := p.ID.Numeric()
		assert.True(t, ok, "demo post ids are numeric")
		assert.NotEmpty(t, p.Content)
		assert.NotNil(t, p.CreatedAt)

		author, found := d.FindUser(p.UserID)
		assert.True(t, found)
		assert.NotEmpty(t, author.Username)
		assert.False(t, p.LikedBy(p.UserID), "authors never like their own demo posts")
	}
}
