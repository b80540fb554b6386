package models

import "errors"

var (
	ErrNotFound = errors.New("not found")
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeSystem MessageType = "system"
)

type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
)

func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionLaugh:
		return true
	}
	return false
}

// DeliveryState tracks a message through the optimistic send path.
type DeliveryState string

const (
	DeliveryPending DeliveryState = "pending"
	DeliverySent    DeliveryState = "sent"
	DeliveryFailed  DeliveryState = "failed"
)

// User represents a conversation participant.
type User struct {
	UserID int64  `json:"userId"`
	User   string `json:"user"` // display name
	Avatar string `json:"avatar"`
}

// Reactions holds per-message emoji counters.
type Reactions struct {
	Like  int `json:"like"`
	Love  int `json:"love"`
	Laugh int `json:"laugh"`
}

func (r *Reactions) Add(kind ReactionKind) {
	switch kind {
	case ReactionLike:
		r.Like++
	case ReactionLove:
		r.Love++
	case ReactionLaugh:
		r.Laugh++
	}
}

// Message represents a single chat message. Within a conversation the
// timestamp is unique and serves as the reaction lookup key; ID identifies
// the message across the pending/sent/failed delivery transitions.
type Message struct {
	ID             string        `json:"id"`
	ConversationID int64         `json:"conversationId"`
	UserID         int64         `json:"userId"`
	User           string        `json:"user"`
	Avatar         string        `json:"avatar"`
	MessageType    MessageType   `json:"messageType"`
	Message        string        `json:"message"` // text content, or image payload as data URI
	Reactions      Reactions     `json:"reactions"`
	Timestamp      int64         `json:"timestamp"` // epoch milliseconds
	Delivery       DeliveryState `json:"delivery,omitempty"`
}

// Conversation is a thread summary: participants plus the rolling last
// message and last activity time.
type Conversation struct {
	ID           int64  `json:"id"`
	Participants []User `json:"participants"`
	LastMessage  string `json:"lastMessage"`
	Timestamp    int64  `json:"timestamp"` // epoch ms of most recent activity
}

// Clone returns a copy that shares no slices with the original.
func (c Conversation) Clone() Conversation {
	out := c
	out.Participants = make([]User, len(c.Participants))
	copy(out.Participants, c.Participants)
	return out
}

func CloneConversations(convs []Conversation) []Conversation {
	out := make([]Conversation, len(convs))
	for i, c := range convs {
		out[i] = c.Clone()
	}
	return out
}

func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
