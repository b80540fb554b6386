package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"prattle/internal/cache"
	"prattle/internal/content"
	"prattle/internal/models"
	"prattle/internal/source"
	"prattle/internal/storage"

	"github.com/google/uuid"
)

const conversationsKey = "conversations"

// Store is the conversation/message synchronization core. It owns the
// in-memory state, keeps the conversation summaries consistent with the
// per-conversation message collections and writes both through to the
// persisted tier on every mutation.
//
// Mutations are atomic behind the mutex; reads return copies.
type Store struct {
	mu            sync.RWMutex
	conversations []models.Conversation
	messages      map[int64][]models.Message
	current       int64
	hasCurrent    bool // current conversation is transient, never persisted

	persisted storage.Store
	src       source.Source

	convLoader *cache.Loader[string, []models.Conversation]
	msgLoader  *cache.Loader[int64, []models.Message]

	now func() time.Time
}

func New(persisted storage.Store, src source.Source) *Store {
	return &Store{
		messages:   make(map[int64][]models.Message),
		persisted:  persisted,
		src:        src,
		convLoader: cache.NewLoader[string, []models.Conversation](),
		msgLoader:  cache.NewLoader[int64, []models.Message](),
		now:        time.Now,
	}
}

// SetCurrentConversation marks the conversation the UI is looking at.
// The id is not validated and the field is not persisted.
func (s *Store) SetCurrentConversation(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
	s.hasCurrent = true
}

func (s *Store) CurrentConversation() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.hasCurrent
}

// Conversations returns a snapshot of the conversation collection, sorted
// descending by last activity.
func (s *Store) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneConversations(s.conversations)
}

// Messages returns a snapshot of one conversation's message collection in
// chronological append order.
func (s *Store) Messages(conversationID int64) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneMessages(s.messages[conversationID])
}

// SetMessages replaces one conversation's message collection wholesale,
// leaving the conversation summaries untouched, and persists it.
func (s *Store) SetMessages(conversationID int64, msgs []models.Message) error {
	s.mu.Lock()
	s.messages[conversationID] = models.CloneMessages(msgs)
	s.mu.Unlock()

	s.msgLoader.Invalidate(conversationID)
	return s.persisted.PutMessages(conversationID, msgs)
}

// FetchConversations resolves the conversation collection cache-first:
// persisted tier, then the mock source with write-back. On failure the
// in-memory state is left untouched and the error surfaces to the caller.
func (s *Store) FetchConversations(ctx context.Context) error {
	convs, fromSource, err := s.convLoader.Load(ctx, conversationsKey,
		s.persisted.GetConversations,
		s.src.Conversations,
	)
	if errors.Is(err, cache.ErrStale) {
		// A local write landed while the fetch was in flight; it wins.
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch conversations: %w", err)
	}

	if fromSource {
		if err := s.persisted.PutConversations(convs); err != nil {
			return fmt.Errorf("write back conversations: %w", err)
		}
	}

	s.mu.Lock()
	s.conversations = models.CloneConversations(convs)
	s.sortConversationsLocked()
	s.mu.Unlock()
	return nil
}

// FetchMessages is the per-conversation counterpart of FetchConversations.
func (s *Store) FetchMessages(ctx context.Context, conversationID int64) error {
	msgs, fromSource, err := s.msgLoader.Load(ctx, conversationID,
		func() ([]models.Message, bool, error) {
			return s.persisted.GetMessages(conversationID)
		},
		func(ctx context.Context) ([]models.Message, error) {
			return s.src.Messages(ctx, conversationID)
		},
	)
	if errors.Is(err, cache.ErrStale) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch messages for conversation %d: %w", conversationID, err)
	}

	if fromSource {
		if err := s.persisted.PutMessages(conversationID, msgs); err != nil {
			return fmt.Errorf("write back messages: %w", err)
		}
	}

	s.mu.Lock()
	s.messages[conversationID] = models.CloneMessages(msgs)
	s.mu.Unlock()
	return nil
}

// AddMessage merges a message into the store: appends it to the
// conversation's collection, refreshes the conversation summary and the
// sender's participant entry, re-sorts conversations by recency and persists
// both collections. A conversation id with no matching summary leaves the
// conversation collection untouched.
func (s *Store) AddMessage(conversationID int64, msg models.Message) error {
	msg.ConversationID = conversationID
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Delivery == "" {
		msg.Delivery = models.DeliverySent
	}
	if msg.MessageType == models.MessageTypeText {
		msg.Message = content.Sanitize(msg.Message)
	}

	s.mu.Lock()
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	s.refreshConversationLocked(msg)
	msgs := models.CloneMessages(s.messages[conversationID])
	convs := models.CloneConversations(s.conversations)
	s.mu.Unlock()

	return s.persistBoth(conversationID, msgs, convs)
}

// AddReaction increments one reaction counter on the message identified by
// the (conversation, timestamp) pair and persists the collection. An
// unmatched key or unknown kind is a silent no-op.
func (s *Store) AddReaction(conversationID, timestamp int64, kind models.ReactionKind) error {
	if !kind.Valid() {
		return nil
	}

	s.mu.Lock()
	msgs := s.messages[conversationID]
	matched := false
	for i := range msgs {
		if msgs[i].Timestamp == timestamp {
			msgs[i].Reactions.Add(kind)
			matched = true
			break
		}
	}
	if !matched {
		s.mu.Unlock()
		return nil
	}
	snapshot := models.CloneMessages(msgs)
	s.mu.Unlock()

	s.msgLoader.Invalidate(conversationID)
	return s.persisted.PutMessages(conversationID, snapshot)
}

// Send drives the optimistic delivery state machine: a pending message is
// appended synchronously, then confirmed in place with the server-assigned
// timestamp once the mock backend acknowledges it. On failure the message is
// kept and marked failed so the UI can offer a retry.
func (s *Store) Send(ctx context.Context, conversationID int64, draft models.Message) (models.Message, error) {
	if draft.MessageType == models.MessageTypeImage {
		if _, err := content.ValidateImageDataURI(draft.Message); err != nil {
			return models.Message{}, fmt.Errorf("invalid image payload: %w", err)
		}
	}

	pending := draft
	pending.ID = uuid.NewString()
	pending.ConversationID = conversationID
	pending.Timestamp = s.now().UnixMilli()
	pending.Reactions = models.Reactions{}
	pending.Delivery = models.DeliveryPending

	if err := s.AddMessage(conversationID, pending); err != nil {
		return models.Message{}, err
	}
	return s.confirm(ctx, conversationID, pending.ID)
}

// Retry re-drives a failed message through the send path.
func (s *Store) Retry(ctx context.Context, conversationID int64, messageID string) (models.Message, error) {
	s.mu.Lock()
	found := false
	for i, msg := range s.messages[conversationID] {
		if msg.ID == messageID && msg.Delivery == models.DeliveryFailed {
			s.messages[conversationID][i].Delivery = models.DeliveryPending
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return models.Message{}, models.ErrNotFound
	}
	return s.confirm(ctx, conversationID, messageID)
}

// ClearAll resets every state field and the persisted tiers. Used on logout
// and session teardown.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	s.conversations = []models.Conversation{}
	s.messages = make(map[int64][]models.Message)
	s.current = 0
	s.hasCurrent = false
	s.mu.Unlock()

	s.convLoader.Reset()
	s.msgLoader.Reset()
	return s.persisted.Clear()
}

// Snapshot is the read-only view handed to the UI.
type Snapshot struct {
	Conversations       []models.Conversation      `json:"conversations"`
	CurrentConversation *int64                     `json:"currentConversation"`
	Messages            map[int64][]models.Message `json:"messages"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Conversations: models.CloneConversations(s.conversations),
		Messages:      make(map[int64][]models.Message, len(s.messages)),
	}
	if s.hasCurrent {
		id := s.current
		snap.CurrentConversation = &id
	}
	for id, msgs := range s.messages {
		snap.Messages[id] = models.CloneMessages(msgs)
	}
	return snap
}

func (s *Store) confirm(ctx context.Context, conversationID int64, messageID string) (models.Message, error) {
	s.mu.RLock()
	var pending models.Message
	found := false
	for _, msg := range s.messages[conversationID] {
		if msg.ID == messageID {
			pending = msg
			found = true
			break
		}
	}
	s.mu.RUnlock()
	if !found {
		return models.Message{}, models.ErrNotFound
	}

	sent, err := s.src.CreateMessage(ctx, pending)
	if err != nil {
		if markErr := s.setDelivery(conversationID, messageID, models.DeliveryFailed); markErr != nil {
			return models.Message{}, errors.Join(err, markErr)
		}
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}
	sent.Delivery = models.DeliverySent

	s.mu.Lock()
	msgs := s.messages[conversationID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i] = sent
			// The confirmed timestamp supersedes the local one in the
			// conversation summary.
			if i == len(msgs)-1 {
				s.refreshConversationLocked(sent)
			}
			break
		}
	}
	snapshot := models.CloneMessages(msgs)
	convs := models.CloneConversations(s.conversations)
	s.mu.Unlock()

	if err := s.persistBoth(conversationID, snapshot, convs); err != nil {
		return models.Message{}, err
	}
	return sent, nil
}

func (s *Store) setDelivery(conversationID int64, messageID string, state models.DeliveryState) error {
	s.mu.Lock()
	msgs := s.messages[conversationID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Delivery = state
			break
		}
	}
	snapshot := models.CloneMessages(msgs)
	s.mu.Unlock()

	s.msgLoader.Invalidate(conversationID)
	return s.persisted.PutMessages(conversationID, snapshot)
}

// refreshConversationLocked applies the summary side of the merge: last
// message preview, recency timestamp, participant display data, then the
// stable descending re-sort. Callers hold the mutex.
func (s *Store) refreshConversationLocked(msg models.Message) {
	for i := range s.conversations {
		c := &s.conversations[i]
		if c.ID != msg.ConversationID {
			continue
		}
		c.LastMessage = summarize(msg)
		c.Timestamp = msg.Timestamp
		// Refresh display data of the sender without changing membership.
		for j := range c.Participants {
			if c.Participants[j].UserID == msg.UserID {
				c.Participants[j].User = msg.User
				c.Participants[j].Avatar = msg.Avatar
			}
		}
		break
	}
	s.sortConversationsLocked()
}

func (s *Store) sortConversationsLocked() {
	sort.SliceStable(s.conversations, func(i, j int) bool {
		return s.conversations[i].Timestamp > s.conversations[j].Timestamp
	})
}

func (s *Store) persistBoth(conversationID int64, msgs []models.Message, convs []models.Conversation) error {
	s.msgLoader.Invalidate(conversationID)
	s.convLoader.Invalidate(conversationsKey)

	if err := s.persisted.PutMessages(conversationID, msgs); err != nil {
		return fmt.Errorf("persist messages: %w", err)
	}
	if err := s.persisted.PutConversations(convs); err != nil {
		return fmt.Errorf("persist conversations: %w", err)
	}
	return nil
}

func summarize(msg models.Message) string {
	if msg.MessageType == models.MessageTypeImage {
		return content.ImagePlaceholder
	}
	return content.Preview(msg.Message)
}
