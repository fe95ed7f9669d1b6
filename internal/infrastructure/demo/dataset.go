// Package demo supplies the canned dataset the client falls back to when
// demo mode is enabled and the backend is unreachable.
package demo

import (
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/ifconnect/client/internal/domain/social"
)

// Fixed seed so the offline feed is stable across runs.
const seed = 1847

const (
	userCount = 6
	postCount = 14
)

// Dataset is the in-memory stand-in for the backend.
type Dataset struct {
	Users []social.User
	Posts []social.Post
}

// Generate builds the deterministic demo dataset.
func Generate() *Dataset {
	f := gofakeit.New(seed)

	users := make([]social.User, 0, userCount)
	for i := 1; i <= userCount; i++ {
		users = append(users, social.User{
			ID:       social.UserID(i),
			Username: f.Username(),
			Email:    f.Email(),
			Bio:      f.Sentence(8),
			CampusID: int64(f.Number(1, 3)),
		})
	}

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]social.Post, 0, postCount)
	for i := 1; i <= postCount; i++ {
		created := base.Add(time.Duration(i) * 7 * time.Hour)
		author := users[f.Number(0, userCount-1)]

		post := social.Post{
			ID:        social.PostID(strconv.Itoa(i)),
			UserID:    author.ID,
			Content:   f.Sentence(f.Number(6, 18)),
			CreatedAt: &created,
		}

		for _, u := range users {
			if u.ID != author.ID && f.Bool() {
				post.Likes = append(post.Likes, u.ID)
			}
		}
		if f.Bool() {
			commenter := users[f.Number(0, userCount-1)]
			post.AppendComment(social.Comment{
				ID:       int64(i),
				UserID:   commenter.ID,
				Username: commenter.Username,
				Text:     f.Sentence(6),
			})
		}

		posts = append(posts, post)
	}

	return &Dataset{Users: users, Posts: posts}
}

// FindUser resolves a user from the dataset.
func (d *Dataset) FindUser(id social.UserID) (social.User, bool) {
	for _, u := range d.Users {
		if u.ID == id {
			return u, true
		}
	}
	return social.User{}, false
}
