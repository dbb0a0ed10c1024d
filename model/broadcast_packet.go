package model

// BroadcastPacket is the spectator view written by the realtime broadcaster.
type BroadcastPacket struct {
	Id      string           `json:"id"`
	Idx     int              `json:"idx"`
	Round   int              `json:"round"`
	Phase   string           `json:"phase"`
	Agents  []BroadcastAgent `json:"agents"`
	Event   string           `json:"event"`
	Message *string          `json:"message,omitempty"`
	FromIdx *int             `json:"fromIdx,omitempty"`
}

type BroadcastAgent struct {
	UserID     string   `json:"userId"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	IsAlive    bool     `json:"isAlive"`
	Tags       []string `json:"tags"`
	TargetIdxs []int    `json:"targetIdxs"`
}
