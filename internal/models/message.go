package models

import "time"

// Message is an anonymous note delivered to a user. It has no identity outside
// its owning account; deletion is always scoped by UserID.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"-" gorm:"index;type:varchar(36)"`
	Content   string    `json:"content" validate:"required,max=1000"`
	CreatedAt time.Time `json:"created_at"`
}
