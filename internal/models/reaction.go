package models

import "time"

// AllowedReactions is the fixed set of reaction types, in display order.
var AllowedReactions = []string{"😍", "😂", "😢", "😡", "👍", "🔥", "💯", "❤️", "🎉"}

// IsAllowedReaction reports whether s is one of AllowedReactions.
func IsAllowedReaction(s string) bool {
	for _, r := range AllowedReactions {
		if r == s {
			return true
		}
	}
	return false
}

// Reaction is an emoji reaction on a post. A user may hold several types on
// the same post but each type only once.
type Reaction struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_reactions_user_post_type,priority:1"`
	PostID       uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_reactions_user_post_type,priority:2"`
	ReactionType string    `json:"reaction_type" gorm:"size:16;not null;uniqueIndex:idx_reactions_user_post_type,priority:3" validate:"required,reaction"`
	CreatedAt    time.Time `json:"created_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Post *Post `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// CreateReactionRequest defines the request body for reacting to a post
type CreateReactionRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,reaction"`
}
