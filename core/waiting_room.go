package core

import (
	"log/slog"
	"slices"
	"sync"
)

// WaitingRoom queues sessions until a room's worth of users is connected.
type WaitingRoom struct {
	agentCount int
	mu         sync.Mutex
	sessions   []*Session
}

func NewWaitingRoom(agentCount int) *WaitingRoom {
	return &WaitingRoom{
		agentCount: agentCount,
		sessions:   make([]*Session, 0),
	}
}

// Add queues session and returns a full group once enough users wait. A user
// already waiting is replaced by the new session.
func (wr *WaitingRoom) Add(session *Session) []*Session {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	wr.sessions = slices.DeleteFunc(wr.sessions, func(s *Session) bool {
		return s.UserID() == session.UserID()
	})
	wr.sessions = append(wr.sessions, session)
	slog.Info("新しいクライアントが待機部屋に追加されました", "user", session.UserID(), "waiting", len(wr.sessions))

	if len(wr.sessions) < wr.agentCount {
		return nil
	}
	group := slices.Clone(wr.sessions[:wr.agentCount])
	wr.sessions = slices.Clone(wr.sessions[wr.agentCount:])
	slog.Info("マッチの接続を取得しました", "count", len(group))
	return group
}

func (wr *WaitingRoom) Remove(session *Session) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.sessions = slices.DeleteFunc(wr.sessions, func(s *Session) bool {
		return s == session
	})
}

func (wr *WaitingRoom) Len() int {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	return len(wr.sessions)
}
