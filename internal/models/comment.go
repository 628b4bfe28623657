package models

import "time"

// Comment represents a comment on a post. A reply points at a root comment
// of the same post and is removed with it.
type Comment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	PostID          uint      `json:"post_id" gorm:"not null;index"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	ParentCommentID *uint     `json:"parent_comment_id,omitempty" gorm:"index"`
	Content         string    `json:"content" gorm:"type:text;not null" validate:"required,min=1,max=1000,plaintext"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Post          *Post    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User          *User    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ParentComment *Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// CommentThread is a root comment with its replies, oldest first.
type CommentThread struct {
	Comment
	Author  UserCompact    `json:"author"`
	Replies []CommentReply `json:"replies"`
}

// CommentReply is a reply inside a CommentThread.
type CommentReply struct {
	Comment
	Author UserCompact `json:"author"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content         string `json:"content" validate:"required,min=1,max=1000"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
}
