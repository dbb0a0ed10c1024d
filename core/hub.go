package core

import (
	"log/slog"
	"sync"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// Hub routes room messages to the session of each user.
type Hub struct {
	sessions sync.Map
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Register(session *Session) {
	if previous, loaded := h.sessions.Swap(session.UserID(), session); loaded {
		previous.(*Session).Close()
	}
}

func (h *Hub) Unregister(session *Session) {
	h.sessions.CompareAndDelete(session.UserID(), session)
}

func (h *Hub) Session(userID string) (*Session, bool) {
	value, ok := h.sessions.Load(userID)
	if !ok {
		return nil, false
	}
	return value.(*Session), true
}

func (h *Hub) Deliver(roomID string, userID string, message model.Message) {
	session, ok := h.Session(userID)
	if !ok {
		slog.Debug("送信先のセッションがありません", "id", roomID, "user", userID, "event", message.Event)
		return
	}
	session.Send(message)
}
