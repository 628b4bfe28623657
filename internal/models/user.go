package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Email               string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash        string     `json:"-" gorm:"not null"`
	ConfirmationToken   string     `json:"-" gorm:"size:64;index"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty"`
	ResetPasswordToken  string     `json:"-" gorm:"size:64;index"`
	ResetPasswordSentAt *time.Time `json:"-"`
	FailedAttempts      int        `json:"-" gorm:"not null;default:0"`
	UnlockToken         string     `json:"-" gorm:"size:64;index"`
	LockedAt            *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Confirmed reports whether the email address has been confirmed.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// Locked reports whether sign-in is locked.
func (u *User) Locked() bool {
	return u.LockedAt != nil
}

// UserCompact is the public shape of a user embedded in other payloads.
type UserCompact struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToCompact returns the compact form of the profile's owner.
func (p *Profile) ToCompact() UserCompact {
	return UserCompact{ID: p.UserID, Username: p.Username, AvatarURL: p.AvatarURL}
}

type SignupRequest struct {
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
