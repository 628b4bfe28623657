package models

import "time"

// PostStatus is the lifecycle state of a Post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post is a user's post. Comments, likes and reactions reference it with ON DELETE CASCADE.
type Post struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index;index:idx_posts_user_status,priority:1"`
	Title     string     `json:"title" gorm:"size:200;not null" validate:"required,min=3,max=200,plaintext"`
	Content   string     `json:"content" gorm:"type:text;not null" validate:"required,min=1,max=5000,plaintext"`
	Status    PostStatus `json:"status" gorm:"size:20;not null;default:'published';index;index:idx_posts_user_status,priority:2"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt time.Time  `json:"updated_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// IsDraft reports whether the post is still a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// VisibleTo reports whether viewerID may see the post.
func (p *Post) VisibleTo(viewerID uint) bool {
	return p.Status == PostStatusPublished || p.UserID == viewerID
}

// PostFields are the editable fields of a post.
type PostFields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// SaveDraftRequest defines the request body for saving a draft
type SaveDraftRequest struct {
	ID      *uint  `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
