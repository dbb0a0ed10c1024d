package model

// Info is the projection of a room for one viewer. Every role name in it has
// already gone through the viewer's role projection.
type Info struct {
	RoomID       string            `json:"roomId"`
	Status       GameStatus        `json:"status"`
	Round        int               `json:"round"`
	Phase        *PhaseInfo        `json:"phase,omitempty"`
	Viewer       string            `json:"viewer"`
	Leader       string            `json:"leader"`
	Participants []ParticipantInfo `json:"participants"`
	Votings      []VotingInfo      `json:"votings"`
	Winner       *Winner           `json:"winner,omitempty"`
	Option       *RoomOption       `json:"option,omitempty"`
}

type PhaseInfo struct {
	Name       string `json:"name"`
	IsGame     bool   `json:"isGame"`
	CanMessage bool   `json:"canMessage"`
}

type ParticipantInfo struct {
	UserID  string   `json:"userId"`
	Name    string   `json:"name"`
	Avatar  *string  `json:"avatar,omitempty"`
	Role    *string  `json:"role,omitempty"`
	IsAlive bool     `json:"isAlive"`
	Tags    []string `json:"tags"`
}

type VotingInfo struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Started      bool         `json:"started"`
	CanVote      bool         `json:"canVote"`
	MissingVotes int          `json:"missingVotes"`
	Options      []OptionInfo `json:"options"`
	OwnVote      *int         `json:"ownVote,omitempty"`
}

type OptionInfo struct {
	ID     int               `json:"id"`
	LangID string            `json:"langId"`
	Vars   map[string]string `json:"vars,omitempty"`
	Users  []string          `json:"users,omitempty"`
}
