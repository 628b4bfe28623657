package models

import "time"

// FriendshipStatus is the state of a directed friendship edge.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is a directed edge from UserID (requester) to FriendID (target).
// Once accepted, the mirrored edge exists too.
type Friendship struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_friendships_user_friend,priority:1"`
	FriendID  uint             `json:"friend_id" gorm:"not null;index;uniqueIndex:idx_friendships_user_friend,priority:2"`
	Status    FriendshipStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	User   *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Friend *User `json:"-" gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE"`
}

// Involves reports whether userID is either end of the edge.
func (f *Friendship) Involves(userID uint) bool {
	return f.UserID == userID || f.FriendID == userID
}

// FriendRequestView is a pending edge with the user on the other end.
type FriendRequestView struct {
	Friendship
	User UserCompact `json:"user"`
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	FriendID uint `json:"friend_id" validate:"required"`
}
