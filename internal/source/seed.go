package source

import (
	"time"

	"prattle/internal/models"
)

var seedUsers = []models.User{
	{UserID: 1, User: "Alice", Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Alice"},
	{UserID: 2, User: "Bob", Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Bob"},
	{UserID: 3, User: "Charlie", Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Charlie"},
}

// Seed returns the collections served by the mock backend on a cold start.
// Timestamps are anchored to the current time so conversations look recent.
func Seed() ([]models.Conversation, []models.Message) {
	base := time.Now().Add(-24 * time.Hour).UnixMilli()
	at := func(offset time.Duration) int64 { return base + offset.Milliseconds() }

	messages := []models.Message{
		{
			ID:             "seed-1-1",
			ConversationID: 1,
			UserID:         2,
			User:           seedUsers[1].User,
			Avatar:         seedUsers[1].Avatar,
			MessageType:    models.MessageTypeSystem,
			Message:        "Bob joined the conversation",
			Timestamp:      at(0),
			Delivery:       models.DeliverySent,
		},
		{
			ID:             "seed-1-2",
			ConversationID: 1,
			UserID:         2,
			User:           seedUsers[1].User,
			Avatar:         seedUsers[1].Avatar,
			MessageType:    models.MessageTypeText,
			Message:        "Hey Alice, are we still on for tomorrow?",
			Reactions:      models.Reactions{Like: 1},
			Timestamp:      at(5 * time.Minute),
			Delivery:       models.DeliverySent,
		},
		{
			ID:             "seed-1-3",
			ConversationID: 1,
			UserID:         1,
			User:           seedUsers[0].User,
			Avatar:         seedUsers[0].Avatar,
			MessageType:    models.MessageTypeText,
			Message:        "Yes! See you at ten.",
			Timestamp:      at(7 * time.Minute),
			Delivery:       models.DeliverySent,
		},
		{
			ID:             "seed-2-1",
			ConversationID: 2,
			UserID:         3,
			User:           seedUsers[2].User,
			Avatar:         seedUsers[2].Avatar,
			MessageType:    models.MessageTypeText,
			Message:        "Lunch today?",
			Reactions:      models.Reactions{Love: 2, Laugh: 1},
			Timestamp:      at(2 * time.Hour),
			Delivery:       models.DeliverySent,
		},
		{
			ID:             "seed-3-1",
			ConversationID: 3,
			UserID:         2,
			User:           seedUsers[1].User,
			Avatar:         seedUsers[1].Avatar,
			MessageType:    models.MessageTypeText,
			Message:        "Welcome to the group everyone",
			Timestamp:      at(3 * time.Hour),
			Delivery:       models.DeliverySent,
		},
	}

	conversations := []models.Conversation{
		{
			ID:           3,
			Participants: []models.User{seedUsers[0], seedUsers[1], seedUsers[2]},
			LastMessage:  "Welcome to the group everyone",
			Timestamp:    at(3 * time.Hour),
		},
		{
			ID:           2,
			Participants: []models.User{seedUsers[0], seedUsers[2]},
			LastMessage:  "Lunch today?",
			Timestamp:    at(2 * time.Hour),
		},
		{
			ID:           1,
			Participants: []models.User{seedUsers[0], seedUsers[1]},
			LastMessage:  "Yes! See you at ten.",
			Timestamp:    at(7 * time.Minute),
		},
	}

	return conversations, messages
}
