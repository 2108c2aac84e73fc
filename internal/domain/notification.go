package domain

import "time"

type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationLike   NotificationType = "like"
)

// Notification tells a user that another user followed them or liked one of their posts.
type Notification struct {
	ID        string
	FromID    string
	ToID      string
	Type      NotificationType
	Read      bool
	CreatedAt time.Time
	UpdatedAt time.Time

	From *User
}
