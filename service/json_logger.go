package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// JSONLogger records every message a room sends, per recipient, into one JSON
// file per game.
type JSONLogger struct {
	mu               sync.Mutex
	data             map[string]*JSONLog
	outputDir        string
	templateFilename string
}

type JSONLog struct {
	id       string
	filename string
	roles    map[string]string
	winner   *model.Winner
	entries  []any
}

func NewJSONLogger(config model.Config) *JSONLogger {
	return &JSONLogger{
		data:             make(map[string]*JSONLog),
		outputDir:        config.JSONLogger.OutputDir,
		templateFilename: config.JSONLogger.Filename,
	}
}

func (j *JSONLogger) TrackStartGame(id string, roles map[string]string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	filename := strings.ReplaceAll(j.templateFilename, "{game_id}", id)
	filename = strings.ReplaceAll(filename, "{timestamp}", fmt.Sprintf("%d", time.Now().Unix()))
	j.data[id] = &JSONLog{
		id:       id,
		filename: filename,
		roles:    roles,
		entries:  make([]any, 0),
	}
}

func (j *JSONLogger) TrackEndGame(id string, winner model.Winner) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if data, exists := j.data[id]; exists {
		data.winner = &winner
		j.saveGameData(data)
		delete(j.data, id)
	}
}

// Deliver records message as sent to userID. Messages of rooms that are not
// tracked are ignored.
func (j *JSONLogger) Deliver(roomID string, userID string, message model.Message) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if data, exists := j.data[roomID]; exists {
		data.entries = append(data.entries, map[string]any{
			"user":      userID,
			"event":     message.Event,
			"seq":       message.Seq,
			"payload":   message.Payload,
			"timestamp": time.Now().UnixMilli(),
		})
		j.saveGameData(data)
	}
}

func (j *JSONLogger) saveGameData(data *JSONLog) {
	game := map[string]any{
		"game_id": data.id,
		"roles":   data.roles,
		"winner":  data.winner,
		"entries": data.entries,
	}
	jsonData, err := json.Marshal(game)
	if err != nil {
		slog.Error("ログのJSON化に失敗しました", "id", data.id, "error", err)
		return
	}
	if err := os.MkdirAll(j.outputDir, 0755); err != nil {
		slog.Error("出力ディレクトリの作成に失敗しました", "error", err)
		return
	}
	filePath := filepath.Join(j.outputDir, fmt.Sprintf("%s.json", data.filename))
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		slog.Error("ログファイルの保存に失敗しました", "path", filePath, "error", err)
	}
}
