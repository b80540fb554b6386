package storage

import "prattle/internal/models"

// Store is the persisted key-value tier backing the synchronization core.
// The boolean result reports presence: a missing or undecodable value is a
// cache miss (false, nil error), never a failure.
type Store interface {
	GetConversations() ([]models.Conversation, bool, error)
	PutConversations(convs []models.Conversation) error
	GetMessages(conversationID int64) ([]models.Message, bool, error)
	PutMessages(conversationID int64, msgs []models.Message) error
	Clear() error
	Close() error
}
