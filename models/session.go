package models

import (
	"time"
)

// Session represents the client-held proof of authentication: the bearer
// token issued by the HelpX API plus the identity it belongs to.
// Token and user fields are always written and cleared together; a session
// with a token but no user id (or the reverse) must never be persisted.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Token     string    `gorm:"not null" json:"token"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}

// Active reports whether the session carries both a token and a user id.
func (s *Session) Active() bool {
	return s != nil && s.Token != "" && s.UserID != 0
}

// Valid checks the set-together invariant: either both the token and the
// user id are present, or neither is.
func (s *Session) Valid() bool {
	if s == nil {
		return true
	}
	return (s.Token != "") == (s.UserID != 0)
}
