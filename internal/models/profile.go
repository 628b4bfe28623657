package models

import "time"

// Profile is the public face of a User. One per user, unique username.
type Profile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	Username  string    `json:"username" gorm:"size:30;not null;uniqueIndex" validate:"required,min=3,max=30,username"`
	Bio       string    `json:"bio" gorm:"size:500" validate:"max=500,plaintext"`
	AvatarURL string    `json:"avatar_url,omitempty" validate:"omitempty,url"`
	BannerURL string    `json:"banner_url,omitempty" validate:"omitempty,url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// UpdateProfileRequest defines the request body for editing one's own profile
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	BannerURL *string `json:"banner_url,omitempty"`
}
