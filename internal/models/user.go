package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that receives anonymous messages.
type User struct {
	ID                  string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username            string    `json:"username" gorm:"uniqueIndex;type:varchar(20)" validate:"required,username"`
	Email               string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password            string    `gorm:"type:varchar(255)" validate:"required,password"` // No json tag for security
	VerifyCode          string    `json:"-" gorm:"type:varchar(6)"`
	VerifyCodeExpiry    time.Time `json:"-"`
	IsVerified          bool      `json:"is_verified"`
	IsAcceptingMessages bool      `json:"is_accepting_messages"`
	Messages            []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	gorm.Model                    // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
