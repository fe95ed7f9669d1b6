package social

import "time"

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationFollow  NotificationType = "FOLLOW"
	NotificationComment NotificationType = "COMMENT"
)

// Notification represents an entry in the user's notification list
type Notification struct {
	ID            string           `json:"id"`
	Type          NotificationType `json:"type"`
	Message       string           `json:"message"`
	SenderID      UserID           `json:"senderId"`
	CreatedAt     time.Time        `json:"createdAt"`
	IsRead        bool             `json:"isRead"`
	RelatedPostID PostID           `json:"relatedPostId,omitempty"`
}
