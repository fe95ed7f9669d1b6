package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
	"github.com/ifconnect/client/internal/infrastructure/persistence"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	db, err := persistence.Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	sessions := session.NewStore(persistence.NewLocalStore(db), zap.NewNop())
	t.Cleanup(sessions.Close)

	client, err := api.New(api.Config{BaseURL: server.URL, Tokens: sessions})
	require.NoError(t, err)
	return NewService(client, sessions, zap.NewNop()), sessions
}

func TestLoginEstablishesSession(t *testing.T) {
	svc, sessions := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "marta@example.edu", body["email"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       12,
			"username": "marta",
			"email":    "marta@example.edu",
			"campusId": 2,
			"token":    "bearer-abc",
		})
	}))

	user, err := svc.Login(context.Background(), LoginInput{Email: "marta@example.edu", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, social.UserID(12), user.ID)

	snapshot := sessions.Current()
	assert.Equal(t, session.StateAuthenticated, snapshot.State)
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "marta", snapshot.User.Username)
	assert.Equal(t, "bearer-abc", sessions.Token())
}

func TestLoginRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid input must not reach the backend")
	}))

	_, err := svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestLoginSurfacesServerMessage(t *testing.T) {
	svc, sessions := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))

	_, err := svc.Login(context.Background(), LoginInput{Email: "marta@example.edu", Password: "wrongpw"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrRequestFailed)
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Equal(t, session.StateUnauthenticated, sessions.Current().State)
}

func TestRegisterPostsToUsers(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"id": 44, "username": "novo", "email": "novo@example.edu"})
	}))

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "novo",
		Email:    "novo@example.edu",
		Password: "secret6",
	})
	require.NoError(t, err)
	assert.Equal(t, social.UserID(44), user.ID)
}

func TestGetProfileDecodesCounts(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/7/profile", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"user":           map[string]any{"id": 7, "username": "joao", "email": "joao@example.edu"},
			"followersCount": 3,
			"followingCount": 9,
			"postCount":      5,
		})
	}))

	profile, err := svc.GetProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "joao", profile.User.Username)
	assert.Equal(t, int64(3), profile.FollowersCount)
	assert.Equal(t, int64(5), profile.PostCount)
}

func TestUpdateProfileSyncsSession(t *testing.T) {
	svc, sessions := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/users/12", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":       12,
			"username": "marta",
			"email":    "marta@example.edu",
			"bio":      "hello campus",
		})
	}))
	ctx := context.Background()
	require.NoError(t, sessions.Login(ctx, social.User{ID: 12, Username: "marta", Email: "marta@example.edu"}, ""))

	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{Bio: "hello campus"})
	require.NoError(t, err)
	assert.Equal(t, "hello campus", updated.Bio)

	snapshot := sessions.Current()
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "hello campus", snapshot.User.Bio)
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unauthenticated edits must not reach the backend")
	}))

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{Bio: "x"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestUploadPhotoSendsMultipart(t *testing.T) {
	svc, sessions := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/12/photo", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "avatar", r.FormValue("type"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "me.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"id":              12,
			"username":        "marta",
			"email":           "marta@example.edu",
			"profileImageUrl": "/media/12/avatar.png",
		})
	}))
	ctx := context.Background()
	require.NoError(t, sessions.Login(ctx, social.User{ID: 12, Username: "marta", Email: "marta@example.edu"}, ""))

	updated, err := svc.UploadPhoto(ctx, PhotoAvatar, "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/media/12/avatar.png", updated.AvatarURL)

	snapshot := sessions.Current()
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "/media/12/avatar.png", snapshot.User.AvatarURL)
}

func TestSuggestionsPassesRadius(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/7/suggestions", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("radiusKm"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 8, "username": "ana", "email": "ana@example.edu"},
		})
	}))

	users, err := svc.Suggestions(context.Background(), 7, 25)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].Username)
}
