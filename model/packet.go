package model

// Message is one outbound event already rendered for a single recipient.
type Message struct {
	Event   string `json:"event"`
	RoomID  string `json:"roomId"`
	Seq     int    `json:"seq"`
	Payload any    `json:"payload,omitempty"`
}

type CommandType string

const (
	C_START   CommandType = "start"
	C_VOTE    CommandType = "vote"
	C_ADVANCE CommandType = "advance"
	C_CHAT    CommandType = "chat"
	C_STATE   CommandType = "state"
)

// Command is one inbound request from a connected user.
type Command struct {
	Type     CommandType `json:"type"`
	VotingID string      `json:"voting,omitempty"`
	OptionID int         `json:"option,omitempty"`
	Text     string      `json:"text,omitempty"`
}

// CommandResult answers a command; Error is the validation message if any.
type CommandResult struct {
	Type  CommandType `json:"type"`
	Error *string     `json:"error,omitempty"`
	Info  *Info       `json:"info,omitempty"`
}
