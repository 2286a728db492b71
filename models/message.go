package models

import (
	"time"

	"gorm.io/gorm"
)

// Message direction relative to the current user.
const (
	MessageSent     = "sent"
	MessageReceived = "received"
)

// Message represents one chat message exchanged with another community
// member, stored locally by the gateway.
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ContactID uint           `gorm:"not null;index" json:"contact_id"` // the other user on the conversation
	Direction string         `gorm:"not null" json:"direction"`        // "sent" or "received"
	Text      string         `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
