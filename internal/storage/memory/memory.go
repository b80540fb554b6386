package memory

import (
	"sync"

	"prattle/internal/models"
)

// Store is a map-backed storage.Store used in tests and -dev runs.
type Store struct {
	mu            sync.RWMutex
	conversations []models.Conversation
	hasConvs      bool
	messages      map[int64][]models.Message
}

func New() *Store {
	return &Store{
		messages: make(map[int64][]models.Message),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) GetConversations() ([]models.Conversation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasConvs {
		return nil, false, nil
	}
	return models.CloneConversations(s.conversations), true, nil
}

func (s *Store) PutConversations(convs []models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = models.CloneConversations(convs)
	s.hasConvs = true
	return nil
}

func (s *Store) GetMessages(conversationID int64) ([]models.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.messages[conversationID]
	if !ok {
		return nil, false, nil
	}
	return models.CloneMessages(msgs), true, nil
}

func (s *Store) PutMessages(conversationID int64, msgs []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[conversationID] = models.CloneMessages(msgs)
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = nil
	s.hasConvs = false
	s.messages = make(map[int64][]models.Message)
	return nil
}
