package storage

import (
	"prattle/internal/models"

	"github.com/vmihailenco/msgpack/v5"
)

type DBParticipant struct {
	UserID int64  `msgpack:"userId"`
	User   string `msgpack:"user"`
	Avatar string `msgpack:"avatar"`
}

type DBConversation struct {
	ID           int64           `msgpack:"id"`
	Participants []DBParticipant `msgpack:"participants"`
	LastMessage  string          `msgpack:"lastMessage"`
	Timestamp    int64           `msgpack:"timestamp"`
}

type DBReactions struct {
	Like  int `msgpack:"like"`
	Love  int `msgpack:"love"`
	Laugh int `msgpack:"laugh"`
}

type DBMessage struct {
	ID             string      `msgpack:"id"`
	ConversationID int64       `msgpack:"conversationId"`
	UserID         int64       `msgpack:"userId"`
	User           string      `msgpack:"user"`
	Avatar         string      `msgpack:"avatar"`
	MessageType    string      `msgpack:"messageType"`
	Message        string      `msgpack:"message"`
	Reactions      DBReactions `msgpack:"reactions"`
	Timestamp      int64       `msgpack:"timestamp"`
	Delivery       string      `msgpack:"delivery"`
}

func encodeConversations(convs []models.Conversation) ([]byte, error) {
	dbConvs := make([]DBConversation, len(convs))
	for i, c := range convs {
		dbConvs[i] = DBConversation{
			ID:          c.ID,
			LastMessage: c.LastMessage,
			Timestamp:   c.Timestamp,
		}
		if len(c.Participants) > 0 {
			dbConvs[i].Participants = make([]DBParticipant, len(c.Participants))
			for j, p := range c.Participants {
				dbConvs[i].Participants[j] = DBParticipant{
					UserID: p.UserID,
					User:   p.User,
					Avatar: p.Avatar,
				}
			}
		}
	}
	return msgpack.Marshal(dbConvs)
}

func decodeConversations(data []byte) ([]models.Conversation, error) {
	var dbConvs []DBConversation
	if err := msgpack.Unmarshal(data, &dbConvs); err != nil {
		return nil, err
	}
	convs := make([]models.Conversation, len(dbConvs))
	for i, c := range dbConvs {
		convs[i] = models.Conversation{
			ID:          c.ID,
			LastMessage: c.LastMessage,
			Timestamp:   c.Timestamp,
		}
		if len(c.Participants) > 0 {
			convs[i].Participants = make([]models.User, len(c.Participants))
			for j, p := range c.Participants {
				convs[i].Participants[j] = models.User{
					UserID: p.UserID,
					User:   p.User,
					Avatar: p.Avatar,
				}
			}
		}
	}
	return convs, nil
}

func encodeMessages(msgs []models.Message) ([]byte, error) {
	dbMsgs := make([]DBMessage, len(msgs))
	for i, m := range msgs {
		dbMsgs[i] = DBMessage{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			UserID:         m.UserID,
			User:           m.User,
			Avatar:         m.Avatar,
			MessageType:    string(m.MessageType),
			Message:        m.Message,
			Reactions:      DBReactions(m.Reactions),
			Timestamp:      m.Timestamp,
			Delivery:       string(m.Delivery),
		}
	}
	return msgpack.Marshal(dbMsgs)
}

func decodeMessages(data []byte) ([]models.Message, error) {
	var dbMsgs []DBMessage
	if err := msgpack.Unmarshal(data, &dbMsgs); err != nil {
		return nil, err
	}
	msgs := make([]models.Message, len(dbMsgs))
	for i, m := range dbMsgs {
		msgs[i] = models.Message{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			UserID:         m.UserID,
			User:           m.User,
			Avatar:         m.Avatar,
			MessageType:    models.MessageType(m.MessageType),
			Message:        m.Message,
			Reactions:      models.Reactions(m.Reactions),
			Timestamp:      m.Timestamp,
			Delivery:       models.DeliveryState(m.Delivery),
		}
	}
	return msgs, nil
}
