package models

import "time"

// Like represents a like on a post. One per (user, post).
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_post,priority:1"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_likes_user_post,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Post *Post `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
