package storage

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"prattle/internal/models"

	"go.etcd.io/bbolt"
)

var (
	bucketConversations = []byte("conversations")
	bucketMessages      = []byte("messages")
)

// Single fixed key inside the conversations bucket. The whole ordered
// collection is stored as one blob so the persisted order round-trips.
var keyAll = []byte("all")

type BboltStore struct {
	db *bbolt.DB
}

func NewBboltStore(path string) (*BboltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt db: %w", err)
	}

	if err := createBuckets(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BboltStore{db: db}, nil
}

func createBuckets(db *bbolt.DB) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketConversations); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketMessages); err != nil {
			return err
		}
		return nil
	})
}

func (s *BboltStore) Close() error {
	return s.db.Close()
}

func conversationKey(conversationID int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(conversationID))
	return key
}

// GetConversations returns the persisted conversation collection. An absent
// or undecodable value is a cache miss.
func (s *BboltStore) GetConversations() ([]models.Conversation, bool, error) {
	var convs []models.Conversation
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketConversations).Get(keyAll)
		if data == nil {
			return nil
		}
		decoded, err := decodeConversations(data)
		if err != nil {
			slog.Warn("discarding undecodable conversations snapshot", "error", err)
			return nil
		}
		convs = decoded
		found = true
		return nil
	})
	return convs, found, err
}

func (s *BboltStore) PutConversations(convs []models.Conversation) error {
	data, err := encodeConversations(convs)
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConversations).Put(keyAll, data)
	})
}

// GetMessages returns the persisted message collection for one conversation.
func (s *BboltStore) GetMessages(conversationID int64) ([]models.Message, bool, error) {
	var msgs []models.Message
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMessages).Get(conversationKey(conversationID))
		if data == nil {
			return nil
		}
		decoded, err := decodeMessages(data)
		if err != nil {
			slog.Warn("discarding undecodable message snapshot",
				"conversation_id", conversationID, "error", err)
			return nil
		}
		msgs = decoded
		found = true
		return nil
	})
	return msgs, found, err
}

func (s *BboltStore) PutMessages(conversationID int64, msgs []models.Message) error {
	data, err := encodeMessages(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMessages).Put(conversationKey(conversationID), data)
	})
}

// Clear drops both collections. Used on logout and session teardown.
func (s *BboltStore) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketConversations); err != nil {
			return err
		}
		return tx.DeleteBucket(bucketMessages)
	})
	if err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return createBuckets(s.db)
}
