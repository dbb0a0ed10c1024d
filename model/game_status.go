package model

import "slices"

type GameStatus string

const (
	G_WAITING  GameStatus = "WAITING"
	G_RUNNING  GameStatus = "RUNNING"
	G_FINISHED GameStatus = "FINISHED"
)

// Winner is set at most once per room. An empty UserIDs slice is a draw.
type Winner struct {
	Round   int      `json:"round"`
	Team    Team     `json:"team"`
	UserIDs []string `json:"userIds"`
}

func (w Winner) Contains(userID string) bool {
	return slices.Contains(w.UserIDs, userID)
}
