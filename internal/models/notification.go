package models

import "time"

// NotificationType tags the event class a Notification was created for.
type NotificationType string

const (
	NotificationCommentCreated        NotificationType = "comment_created"
	NotificationLikeCreated           NotificationType = "like_created"
	NotificationReactionCreated       NotificationType = "reaction_created"
	NotificationFriendRequestSent     NotificationType = "friend_request_sent"
	NotificationFriendRequestAccepted NotificationType = "friend_request_accepted"
)

// NotifiableType names the table a Notification points at.
type NotifiableType string

const (
	NotifiableComment    NotifiableType = "Comment"
	NotifiableLike       NotifiableType = "Like"
	NotifiableReaction   NotifiableType = "Reaction"
	NotifiableFriendship NotifiableType = "Friendship"
)

// Notifiable is a tagged reference to the record that triggered a Notification.
type Notifiable struct {
	Type NotifiableType
	ID   uint
}

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	UserID           uint             `json:"user_id" gorm:"not null;index:idx_notifications_user_created,priority:1"`
	ActorID          uint             `json:"actor_id" gorm:"not null"`
	NotificationType NotificationType `json:"notification_type" gorm:"size:40;not null"`
	NotifiableType   NotifiableType   `json:"notifiable_type" gorm:"size:20;not null;index:idx_notifications_notifiable,priority:1"`
	NotifiableID     uint             `json:"notifiable_id" gorm:"not null;index:idx_notifications_notifiable,priority:2"`
	ReadAt           *time.Time       `json:"read_at"`
	CreatedAt        time.Time        `json:"created_at" gorm:"index:idx_notifications_user_created,priority:2"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// IsRead reports whether the notification has been marked read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Target returns the notifiable reference.
func (n *Notification) Target() Notifiable {
	return Notifiable{Type: n.NotifiableType, ID: n.NotifiableID}
}

// NotificationView is a notification with its resolved notifiable record.
// Notifiable is nil when the record has gone away.
type NotificationView struct {
	Notification
	Actor      UserCompact `json:"actor"`
	Notifiable any         `json:"notifiable"`
}
