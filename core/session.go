package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/logic"
	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	sendBufferSize = 64
	writeWait      = 10 * time.Second
)

var (
	ErrNoRoom         = errors.New("ルームに参加していません")
	ErrInvalidCommand = errors.New("不正なコマンドです")
)

// Session is one websocket connection of one user.
type Session struct {
	conn   *model.Connection
	server *Server
	send   chan model.Message
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	room   *logic.Room
}

func NewSession(server *Server, conn *model.Connection) *Session {
	return &Session{
		conn:   conn,
		server: server,
		send:   make(chan model.Message, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (s *Session) UserID() string {
	return s.conn.UserID
}

func (s *Session) Room() *logic.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

func (s *Session) SetRoom(room *logic.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
}

// Send queues message without blocking. A session that cannot keep up loses
// the message.
func (s *Session) Send(message model.Message) {
	select {
	case <-s.done:
	case s.send <- message:
	default:
		slog.Warn("送信バッファが溢れたため、メッセージを破棄しました", "user", s.UserID(), "event", message.Event)
	}
}

func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Conn.Close()
		slog.Info("クライアントの接続を切断しました", "user", s.UserID(), "session", s.conn.SessionID)
	})
}

func (s *Session) Run() {
	go s.writeLoop()
	s.readLoop()
}

func (s *Session) readLoop() {
	defer s.server.disconnect(s)
	for {
		_, data, err := s.conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("メッセージの受信に失敗しました", "user", s.UserID(), "error", err)
			}
			return
		}
		result := s.handle(data)
		s.Send(model.Message{Event: "command-result", Payload: result})
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case message := <-s.send:
			s.conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.Conn.WriteJSON(message); err != nil {
				slog.Error("パケットの送信に失敗しました", "user", s.UserID(), "error", err)
				s.Close()
				return
			}
		}
	}
}

// handle dispatches one command on its type field and answers with the
// validation error, if any.
func (s *Session) handle(data []byte) model.CommandResult {
	commandType := model.CommandType(gjson.GetBytes(data, "type").String())
	result := model.CommandResult{Type: commandType}
	if err := s.dispatch(commandType, data, &result); err != nil {
		slog.Warn("コマンドを拒否しました", "user", s.UserID(), "type", commandType, "error", err)
		message := err.Error()
		result.Error = &message
	}
	return result
}

func (s *Session) dispatch(commandType model.CommandType, data []byte, result *model.CommandResult) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidCommand
	}
	room := s.Room()
	if room == nil {
		return ErrNoRoom
	}
	var command model.Command
	if err := json.Unmarshal(data, &command); err != nil {
		return ErrInvalidCommand
	}
	switch commandType {
	case model.C_START:
		if room.Leader() != s.UserID() {
			return logic.ErrNotLeader
		}
		return room.StartGame(s.server.option.RoleNumMap)
	case model.C_ADVANCE:
		if room.Leader() != s.UserID() {
			return logic.ErrNotLeader
		}
		return room.AdvancePhase()
	case model.C_VOTE:
		return room.CastVote(s.UserID(), command.VotingID, command.OptionID)
	case model.C_CHAT:
		return room.SendChat(s.UserID(), command.Text)
	case model.C_STATE:
		info, err := room.GameState(s.UserID())
		if err != nil {
			return err
		}
		result.Info = info
		return nil
	}
	return ErrInvalidCommand
}
