package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// RealtimeBroadcaster appends the spectator view of every running room to a
// JSONL file and keeps games.json listing the rooms in progress.
type RealtimeBroadcaster struct {
	config model.RealtimeBroadcasterConfig
	rooms  sync.Map
	listMu sync.Mutex
}

type realtimeRoom struct {
	mu        sync.Mutex
	id        string
	filename  string
	roles     []string
	file      *os.File
	events    int
	updatedAt time.Time
}

type realtimeListItem struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Roles     []string  `json:"roles"`
	Events    int       `json:"events"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewRealtimeBroadcaster(config model.Config) *RealtimeBroadcaster {
	rb := &RealtimeBroadcaster{
		config: config.RealtimeBroadcaster,
	}
	if err := os.MkdirAll(rb.config.OutputDir, 0755); err != nil {
		slog.Error("出力ディレクトリの作成に失敗しました", "error", err)
		return nil
	}
	if err := rb.writeList(); err != nil {
		slog.Error("ゲーム一覧ファイルの初期化に失敗しました", "error", err)
		return nil
	}
	slog.Info("リアルタイムブロードキャスターを初期化しました", "output_dir", rb.config.OutputDir)
	return rb
}

func (rb *RealtimeBroadcaster) OutputDir() string {
	return rb.config.OutputDir
}

// TrackStartGame opens the room's JSONL file. roles maps user ids to role
// names; the sorted role names fill the {roles} placeholder.
func (rb *RealtimeBroadcaster) TrackStartGame(id string, roles map[string]string) {
	names := slices.Sorted(maps.Values(roles))
	filename := strings.NewReplacer(
		"{game_id}", id,
		"{timestamp}", fmt.Sprintf("%d", time.Now().Unix()),
		"{roles}", strings.Join(names, "_"),
	).Replace(rb.config.Filename)

	path := filepath.Join(rb.config.OutputDir, filename+".jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("ゲームファイルの作成に失敗しました", "error", err, "path", path)
		return
	}
	rb.rooms.Store(id, &realtimeRoom{
		id:        id,
		filename:  filename,
		roles:     names,
		file:      file,
		updatedAt: time.Now(),
	})
	if err := rb.writeList(); err != nil {
		slog.Error("ゲーム一覧ファイルの作成に失敗しました", "error", err)
	}
}

func (rb *RealtimeBroadcaster) TrackEndGame(id string) {
	value, ok := rb.rooms.LoadAndDelete(id)
	if !ok {
		return
	}
	room := value.(*realtimeRoom)
	room.mu.Lock()
	err := room.file.Close()
	room.mu.Unlock()
	if err != nil {
		slog.Error("ゲームファイルのクローズに失敗しました", "error", err, "game_id", id)
	}
	if err := rb.writeList(); err != nil {
		slog.Error("ゲーム一覧ファイルの作成に失敗しました", "error", err)
	}
	slog.Info("ゲームファイルを保存しました", "game_id", id, "events", room.events)
}

// Broadcast appends packet to its room's file. Packets of untracked rooms are
// dropped.
func (rb *RealtimeBroadcaster) Broadcast(packet model.BroadcastPacket) {
	value, ok := rb.rooms.Load(packet.Id)
	if !ok {
		return
	}
	data, err := json.Marshal(packet)
	if err != nil {
		slog.Error("パケットのJSON化に失敗しました", "error", err)
		return
	}
	room := value.(*realtimeRoom)
	room.mu.Lock()
	_, err = room.file.Write(append(data, '\n'))
	room.events++
	room.updatedAt = time.Now()
	room.mu.Unlock()
	if err != nil {
		slog.Error("ゲームファイルへの書き込みに失敗しました", "error", err, "game_id", packet.Id)
		return
	}
	if err := rb.writeList(); err != nil {
		slog.Error("ゲーム一覧ファイルの作成に失敗しました", "error", err)
	}
	slog.Debug("JSONLファイルにブロードキャストを保存しました", "game_id", packet.Id, "event", packet.Event)
}

func (rb *RealtimeBroadcaster) writeList() error {
	rb.listMu.Lock()
	defer rb.listMu.Unlock()

	items := make([]realtimeListItem, 0)
	rb.rooms.Range(func(_, value any) bool {
		room := value.(*realtimeRoom)
		room.mu.Lock()
		items = append(items, realtimeListItem{
			ID:        room.id,
			Filename:  room.filename,
			Roles:     room.roles,
			Events:    room.events,
			UpdatedAt: room.updatedAt,
		})
		room.mu.Unlock()
		return true
	})
	slices.SortFunc(items, func(a, b realtimeListItem) int { return strings.Compare(a.ID, b.ID) })

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(rb.config.OutputDir, "games.json"), data, 0644)
}
