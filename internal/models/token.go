package models

import (
	"time"
)

type TokenKind string

const (
	TokenVerifyEmail   TokenKind = "verify_email"
	TokenResetPassword TokenKind = "reset_password"
)

// AuthToken is a one-time token mailed to a user for email verification or
// password reset. Deleted on first use; expired tokens are rejected.
type AuthToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Kind      TokenKind `gorm:"type:varchar(20);not null" json:"kind"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}

func (t *AuthToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}
