package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/domain/social"
)

// Inbox provides the notification operations.
type Inbox interface {
	List(ctx context.Context) ([]social.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkAllRead(ctx context.Context) error
}

// NotificationsView renders the inbox. Opening it lists the notifications
// and then marks everything read, the same order the web page uses, so a
// failed mark never hides an already fetched list.
type NotificationsView struct {
	inbox  Inbox
	out    io.Writer
	logger *zap.Logger
}

// NewNotificationsView creates a notifications view.
func NewNotificationsView(inbox Inbox, out io.Writer, logger *zap.Logger) *NotificationsView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationsView{inbox: inbox, out: out, logger: logger.Named("notifications")}
}

// Render lists the notifications and marks them read.
func (v *NotificationsView) Render(ctx context.Context) error {
	items, err := v.inbox.List(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	fmt.Fprintln(v.out, "== notifications ==")
	if len(items) == 0 {
		fmt.Fprintln(v.out, "Nothing new.")
		return nil
	}
	for _, n := range items {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Fprintf(v.out, "%s [%s] %s\n", marker, n.Type, n.Message)
	}

	if err := v.inbox.MarkAllRead(ctx); err != nil {
		// The list already rendered; the badge just stays stale.
		v.logger.Warn("marking notifications read failed", zap.Error(err))
	}
	return nil
}

// Badge prints the unread count when it is nonzero.
func (v *NotificationsView) Badge(ctx context.Context) error {
	count, err := v.inbox.UnreadCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Fprintf(v.out, "(%d unread)\n", count)
	}
	return nil
}
