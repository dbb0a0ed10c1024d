package service

import (
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

// GameLogger writes one comma separated line per game action.
type GameLogger struct {
	mu               sync.Mutex
	data             map[string]*GameLog
	outputDir        string
	templateFilename string
}

type GameLog struct {
	id       string
	filename string
	logs     []string
}

func NewGameLogger(config model.Config) *GameLogger {
	return &GameLogger{
		data:             make(map[string]*GameLog),
		outputDir:        config.GameLogger.OutputDir,
		templateFilename: config.GameLogger.Filename,
	}
}

// TrackStartGame opens the log with one role line per player.
func (g *GameLogger) TrackStartGame(id string, roles map[string]string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	filename := strings.ReplaceAll(g.templateFilename, "{game_id}", id)
	filename = strings.ReplaceAll(filename, "{timestamp}", fmt.Sprintf("%d", time.Now().Unix()))
	data := &GameLog{
		id:       id,
		filename: filename,
		logs:     make([]string, 0, len(roles)),
	}
	for _, userID := range slices.Sorted(maps.Keys(roles)) {
		data.logs = append(data.logs, fmt.Sprintf("0,role,%s,%s", userID, roles[userID]))
	}
	g.data[id] = data
}

func (g *GameLogger) TrackEndGame(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if data, exists := g.data[id]; exists {
		g.saveLog(data)
		delete(g.data, id)
	}
}

func (g *GameLogger) AppendLog(id string, log string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if data, exists := g.data[id]; exists {
		data.logs = append(data.logs, log)
		g.saveLog(data)
	}
}

// Logs returns a copy of the lines recorded so far.
func (g *GameLogger) Logs(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if data, exists := g.data[id]; exists {
		return slices.Clone(data.logs)
	}
	return nil
}

func (g *GameLogger) saveLog(data *GameLog) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		slog.Error("出力ディレクトリの作成に失敗しました", "error", err)
		return
	}
	filePath := filepath.Join(g.outputDir, fmt.Sprintf("%s.log", data.filename))
	if err := os.WriteFile(filePath, []byte(strings.Join(data.logs, "\n")), 0644); err != nil {
		slog.Error("ログファイルの保存に失敗しました", "path", filePath, "error", err)
	}
}
