package services

import (
	"github.com/helpx-community/helpx-gateway/models"
	"gorm.io/gorm"
)

// MessageStore holds the chat history the gateway keeps per contact. It
// replaces the hard-coded sample conversations from the old client with
// a real fetch-by-contact interface.
type MessageStore interface {
	// ListByContact returns all messages exchanged with the given user,
	// oldest first.
	ListByContact(contactID uint) ([]models.Message, error)

	// Append records a new message on a conversation.
	Append(message *models.Message) error
}

// GormMessageStore implements MessageStore on the local gorm database.
type GormMessageStore struct {
	db *gorm.DB
}

// NewGormMessageStore creates a message store backed by the given database.
func NewGormMessageStore(db *gorm.DB) *GormMessageStore {
	return &GormMessageStore{db: db}
}

// ListByContact returns the conversation with a contact, oldest first.
func (s *GormMessageStore) ListByContact(contactID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.
		Where("contact_id = ?", contactID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, storeErrorf("failed to load messages: %w", err)
	}
	return messages, nil
}

// Append records a new message on a conversation.
func (s *GormMessageStore) Append(message *models.Message) error {
	if err := s.db.Create(message).Error; err != nil {
		return storeErrorf("failed to store message: %w", err)
	}
	return nil
}
