package model

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Connection struct {
	SessionID string
	UserID    string
	Conn      *websocket.Conn
	Header    *http.Header
}

func NewConnection(conn *websocket.Conn, header *http.Header, userID string) *Connection {
	connection := Connection{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Conn:      conn,
		Header:    header,
	}
	slog.Info("クライアントが接続しました", "session", connection.SessionID, "user", connection.UserID, "remote_addr", conn.RemoteAddr().String())
	return &connection
}
