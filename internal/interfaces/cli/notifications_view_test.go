package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
)

type fakeInbox struct {
	items       []social.Notification
	count       int
	listErr     error
	markErr     error
	markedCalls int
}

func (f *fakeInbox) List(ctx context.Context) ([]social.Notification, error) {
	return f.items, f.listErr
}

func (f *fakeInbox) UnreadCount(ctx context.Context) (int, error) {
	return f.count, nil
}

func (f *fakeInbox) MarkAllRead(ctx context.Context) error {
	f.markedCalls++
	return f.markErr
}

func TestRenderListsThenMarksRead(t *testing.T) {
	inbox := &fakeInbox{items: []social.Notification{
		{ID: "n-1", Type: social.NotificationLike, Message: "joao liked your post", CreatedAt: time.Now()},
		{ID: "n-2", Type: social.NotificationFollow, Message: "ana started following you", IsRead: true},
	}}

	var out bytes.Buffer
	view := NewNotificationsView(inbox, &out, zap.NewNop())
	require.NoError(t, view.Render(context.Background()))

	text := out.String()
	assert.Contains(t, text, "* [LIKE] joao liked your post")
	assert.Contains(t, text, "  [FOLLOW] ana started following you")
	assert.Equal(t, 1, inbox.markedCalls)
}

func TestRenderSurvivesMarkFailure(t *testing.T) {
	inbox := &fakeInbox{
		items:   []social.Notification{{ID: "n-1", Type: social.NotificationLike, Message: "hi"}},
		markErr: shared.ErrConnectivity,
	}

	var out bytes.Buffer
	view := NewNotificationsView(inbox, &out, zap.NewNop())
	require.NoError(t, view.Render(context.Background()), "a failed mark must not hide the list")
	assert.Contains(t, out.String(), "hi")
}

func TestRenderEmptyInboxSkipsMark(t *testing.T) {
	inbox := &fakeInbox{}
	var out bytes.Buffer
	view := NewNotificationsView(inbox, &out, zap.NewNop())
	require.NoError(t, view.Render(context.Background()))
	assert.Contains(t, out.String(), "Nothing new.")
	assert.Zero(t, inbox.markedCalls)
}

func TestBadgePrintsOnlyNonzeroCounts(t *testing.T) {
	var out bytes.Buffer
	view := NewNotificationsView(&fakeInbox{count: 3}, &out, zap.NewNop())
	require.NoError(t, view.Badge(context.Background()))
	assert.Equal(t, "(3 unread)\n", out.String())

	out.Reset()
	view = NewNotificationsView(&fakeInbox{count: 0}, &out, zap.NewNop())
	require.NoError(t, view.Badge(context.Background()))
	assert.Empty(t, out.String())
}
