package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/logic"
	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/aiwolfdial/werewolf-room-server/service"
	"github.com/aiwolfdial/werewolf-room-server/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

type Server struct {
	config              model.Config
	option              *model.RoomOption
	registry            *logic.Registry
	upgrader            websocket.Upgrader
	waitingRoom         *WaitingRoom
	hub                 *Hub
	timer               *VotingTimer
	users               *service.MemoryUserRepository
	userDirectory       *service.UserDirectory
	rooms               sync.Map
	signaled            atomic.Bool
	jsonLogger          *service.JSONLogger
	gameLogger          *service.GameLogger
	realtimeBroadcaster *service.RealtimeBroadcaster
}

func NewServer(config model.Config) (*Server, error) {
	option, err := model.NewRoomOption(config)
	if err != nil {
		slog.Error("ゲーム設定の作成に失敗しました", "error", err)
		return nil, errors.New("ゲーム設定の作成に失敗しました")
	}
	registry := logic.DefaultRegistry()
	for name := range option.RoleNumMap {
		if _, err := registry.Role(name); err != nil {
			return nil, err
		}
	}
	for _, name := range option.Phases {
		if _, err := registry.Phase(name); err != nil {
			return nil, err
		}
	}
	users := service.NewMemoryUserRepository()
	server := &Server{
		config:   config,
		option:   option,
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		waitingRoom:   NewWaitingRoom(config.Game.AgentCount),
		hub:           NewHub(),
		users:         users,
		userDirectory: service.NewUserDirectory(users, config.UserDirectory.TTL),
	}
	server.timer = NewVotingTimer(server.finishVoting)
	if config.JSONLogger.Enable {
		server.jsonLogger = service.NewJSONLogger(config)
	}
	if config.GameLogger.Enable {
		server.gameLogger = service.NewGameLogger(config)
	}
	if config.RealtimeBroadcaster.Enable {
		server.realtimeBroadcaster = service.NewRealtimeBroadcaster(config)
	}
	return server, nil
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Header("Server", Version.ServerHeader())

		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, Version)
	})

	router.GET("/ws", func(c *gin.Context) {
		s.handleConnections(c.Writer, c.Request)
	})

	router.GET("/rooms/:id/state", func(c *gin.Context) {
		s.handleState(c)
	})

	if s.realtimeBroadcaster != nil {
		realtimeGroup := router.Group("/realtime")
		if s.config.Server.Authentication.Enable {
			realtimeGroup.Use(s.verifyMiddleware())
		}
		realtimeGroup.Static("/", s.realtimeBroadcaster.OutputDir())
	}
	return router
}

func (s *Server) Run() {
	server := &http.Server{
		Addr:    s.config.Server.WebSocket.Host + ":" + strconv.Itoa(s.config.Server.WebSocket.Port),
		Handler: s.Handler(),
	}

	go func() {
		trap := make(chan os.Signal, 1)
		signal.Notify(trap, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)
		sig := <-trap
		slog.Info("シグナルを受信しました", "signal", sig)
		s.signaled.Store(true)
		s.gracefullyShutdown()
		s.timer.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	slog.Info("サーバを起動しました", "host", s.config.Server.WebSocket.Host, "port", s.config.Server.WebSocket.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("サーバの起動に失敗しました", "error", err)
	}
}

// gracefullyShutdown waits for every running room to reach a winner.
func (s *Server) gracefullyShutdown() {
	for {
		isFinished := true
		s.rooms.Range(func(key, value any) bool {
			room := value.(*logic.Room)
			if room.Status() == model.G_RUNNING {
				isFinished = false
				return false
			}
			return true
		})
		if isFinished {
			break
		}
		time.Sleep(15 * time.Second)
	}
	slog.Info("全てのゲームが終了しました")
}

func (s *Server) Room(id string) (*logic.Room, bool) {
	value, ok := s.rooms.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*logic.Room), true
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	if s.signaled.Load() {
		slog.Warn("シグナルを受信したため、新しい接続を受け付けません")
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	userID, err := s.authenticate(r)
	if err != nil {
		slog.Warn("トークンが無効です", "remote_addr", r.RemoteAddr)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	header := r.Header.Clone()
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("クライアントのアップグレードに失敗しました", "error", err)
		return
	}
	conn := model.NewConnection(ws, &header, userID)
	if name := r.URL.Query().Get("name"); name != "" {
		s.users.Put(model.User{ID: userID, Name: name})
		s.userDirectory.Invalidate(userID)
	}
	session := NewSession(s, conn)
	s.hub.Register(session)

	if group := s.waitingRoom.Add(session); group != nil {
		s.createRoom(group)
	}
	session.Run()
}

// authenticate resolves the user of a request. Without authentication the
// user query parameter is trusted, or a fresh id is made up.
func (s *Server) authenticate(r *http.Request) (string, error) {
	if !s.config.Server.Authentication.Enable {
		if user := r.URL.Query().Get("user"); user != "" {
			return user, nil
		}
		return uuid.NewString(), nil
	}
	return util.PlayerFromToken(s.config.Server.Authentication.Secret, requestToken(r))
}

func requestToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// createRoom fixes the participants of a full group. The first user to join
// leads the room.
func (s *Server) createRoom(group []*Session) *logic.Room {
	userIDs := make([]string, 0, len(group))
	for _, session := range group {
		userIDs = append(userIDs, session.UserID())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.userDirectory.Prefetch(ctx, userIDs...); err != nil {
		slog.Warn("ユーザー情報の事前取得に失敗しました", "error", err)
	}

	room := logic.NewRoom(ulid.Make().String(), *s.option, s.registry, userIDs, userIDs[0])
	room.AddSink(s.hub)
	room.SetUserDirectory(s.userDirectory)
	room.SetVotingTimer(s.timer)
	if s.jsonLogger != nil {
		room.SetJSONLogger(s.jsonLogger)
	}
	if s.gameLogger != nil {
		room.SetGameLogger(s.gameLogger)
	}
	if s.realtimeBroadcaster != nil {
		room.SetRealtimeBroadcaster(s.realtimeBroadcaster)
	}
	s.rooms.Store(room.ID, room)

	for _, session := range group {
		session.SetRoom(room)
		if info, err := room.GameState(session.UserID()); err == nil {
			session.Send(model.Message{Event: "room-joined", RoomID: room.ID, Payload: info})
		}
	}
	if s.option.AutoStart {
		if err := room.StartGame(s.option.RoleNumMap); err != nil {
			slog.Error("ゲームの開始に失敗しました", "id", room.ID, "error", err)
		}
	}
	return room
}

func (s *Server) disconnect(session *Session) {
	s.waitingRoom.Remove(session)
	s.hub.Unregister(session)
	session.Close()
}

func (s *Server) finishVoting(roomID string, votingID string) {
	room, ok := s.Room(roomID)
	if !ok {
		return
	}
	err := room.FinishVoting(votingID)
	switch {
	case err == nil:
		slog.Info("投票がタイムアウトしました", "id", roomID, "voting", votingID)
	case errors.Is(err, logic.ErrUnknownVoting), errors.Is(err, logic.ErrVotingFinished), errors.Is(err, logic.ErrGameFinished):
		slog.Debug("終了済みの投票のタイムアウトを無視しました", "id", roomID, "voting", votingID)
	default:
		slog.Warn("投票のタイムアウト処理に失敗しました", "id", roomID, "voting", votingID, "error", err)
	}
}

func (s *Server) handleState(c *gin.Context) {
	room, ok := s.Room(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	userID, err := s.authenticate(c.Request)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	info, err := room.GameState(userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) verifyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c.Request)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !util.IsValidReceiver(s.config.Server.Authentication.Secret, token) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
