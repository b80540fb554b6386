package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"prattle/internal/content"
	"prattle/internal/models"
	"prattle/internal/store"

	"github.com/go-chi/chi/v5"
)

// API exposes the synchronization core to the browser UI as JSON endpoints.
// Responses use the {data, error} envelope the frontend expects.
type API struct {
	store *store.Store
}

func New(st *store.Store) *API {
	return &API{store: st}
}

type response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, response{Error: msg})
}

func conversationID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (a *API) StateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Data: a.store.Snapshot()})
}

func (a *API) ClearStateHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.store.ClearAll(); err != nil {
		log.Printf("failed to clear state: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to clear state")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) SetCurrentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a.store.SetCurrentConversation(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.store.FetchConversations(r.Context()); err != nil {
		log.Printf("fetch conversations: %v", err)
		writeError(w, http.StatusBadGateway, "failed to load conversations")
		return
	}
	writeJSON(w, http.StatusOK, response{Data: a.store.Conversations()})
}

func (a *API) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}
	if err := a.store.FetchMessages(r.Context(), id); err != nil {
		log.Printf("fetch messages for %d: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to load messages")
		return
	}
	writeJSON(w, http.StatusOK, response{Data: a.store.Messages(id)})
}

type sendMessageRequest struct {
	UserID      int64              `json:"userId"`
	User        string             `json:"user"`
	Avatar      string             `json:"avatar"`
	MessageType models.MessageType `json:"messageType"`
	Message     string             `json:"message"`
}

func (a *API) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.MessageType {
	case models.MessageTypeText, models.MessageTypeSystem:
	case models.MessageTypeImage:
		if _, err := content.ValidateImageDataURI(req.Message); err != nil {
			writeError(w, http.StatusBadRequest, "invalid image payload")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown message type")
		return
	}

	msg, err := a.store.Send(r.Context(), id, models.Message{
		UserID:      req.UserID,
		User:        req.User,
		Avatar:      req.Avatar,
		MessageType: req.MessageType,
		Message:     req.Message,
	})
	if err != nil {
		log.Printf("send message to %d: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: msg})
}

func (a *API) RetryMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}
	messageID := chi.URLParam(r, "messageID")

	msg, err := a.store.Retry(r.Context(), id, messageID)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no failed message with that id")
		return
	}
	if err != nil {
		log.Printf("retry message %s: %v", messageID, err)
		writeError(w, http.StatusBadGateway, "failed to send message")
		return
	}
	writeJSON(w, http.StatusOK, response{Data: msg})
}

type reactionRequest struct {
	Timestamp int64               `json:"timestamp"`
	Type      models.ReactionKind `json:"type"`
}

func (a *API) AddReactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, "unknown reaction type")
		return
	}

	if err := a.store.AddReaction(id, req.Timestamp, req.Type); err != nil {
		log.Printf("add reaction in %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to store reaction")
		return
	}
	writeJSON(w, http.StatusOK, response{Data: a.store.Messages(id)})
}
