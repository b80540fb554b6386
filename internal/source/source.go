package source

import (
	"context"
	"time"

	"prattle/internal/models"

	"github.com/google/uuid"
)

// Source is the mock network backend: two reads plus a create that echoes
// the submitted message with a server-assigned timestamp.
type Source interface {
	Conversations(ctx context.Context) ([]models.Conversation, error)
	Messages(ctx context.Context, conversationID int64) ([]models.Message, error)
	CreateMessage(ctx context.Context, draft models.Message) (models.Message, error)
}

const (
	DefaultFetchLatency  = 500 * time.Millisecond
	DefaultCreateLatency = 200 * time.Millisecond
)

// Mock serves seed data after a simulated network delay.
type Mock struct {
	fetchLatency  time.Duration
	createLatency time.Duration
	conversations []models.Conversation
	messages      []models.Message
	now           func() time.Time
	err           error
}

type Config struct {
	FetchLatency  time.Duration
	CreateLatency time.Duration
	Conversations []models.Conversation
	Messages      []models.Message // flat, filtered per conversation on read
	Now           func() time.Time
	Err           error // when set, every call fails after its delay
}

func NewMock(config Config) *Mock {
	m := &Mock{
		fetchLatency:  config.FetchLatency,
		createLatency: config.CreateLatency,
		conversations: config.Conversations,
		messages:      config.Messages,
		now:           config.Now,
		err:           config.Err,
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m *Mock) Conversations(ctx context.Context) ([]models.Conversation, error) {
	if err := m.delay(ctx, m.fetchLatency); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return models.CloneConversations(m.conversations), nil
}

func (m *Mock) Messages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	if err := m.delay(ctx, m.fetchLatency); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	msgs := make([]models.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// CreateMessage echoes the draft with a server-assigned timestamp, zeroed
// reactions and a fresh id when the draft carries none.
func (m *Mock) CreateMessage(ctx context.Context, draft models.Message) (models.Message, error) {
	if err := m.delay(ctx, m.createLatency); err != nil {
		return models.Message{}, err
	}
	if m.err != nil {
		return models.Message{}, m.err
	}

	msg := draft
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Timestamp = m.now().UnixMilli()
	msg.Reactions = models.Reactions{}
	msg.Delivery = models.DeliverySent
	return msg, nil
}

func (m *Mock) delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
