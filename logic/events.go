package logic

import (
	"slices"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// Event is an outbound state change. It is rendered once per recipient while
// the room lock is held; nothing rendered is shared between viewers.
type Event interface {
	Name() string
	CanSendTo(room *Room, userID string) bool
	Render(room *Room, userID string) any
}

type everyone struct{}

func (everyone) CanSendTo(room *Room, userID string) bool { return true }

type GameStartedEvent struct{ everyone }

func (e *GameStartedEvent) Name() string { return "game-started" }

func (e *GameStartedEvent) Render(room *Room, userID string) any {
	return room.info(userID)
}

type GameEndedEvent struct{ everyone }

func (e *GameEndedEvent) Name() string { return "game-ended" }

func (e *GameEndedEvent) Render(room *Room, userID string) any {
	return room.info(userID)
}

type PhaseChangedEvent struct{ everyone }

type PhaseChangedPayload struct {
	Round int              `json:"round"`
	Phase *model.PhaseInfo `json:"phase"`
}

func (e *PhaseChangedEvent) Name() string { return "phase-changed" }

func (e *PhaseChangedEvent) Render(room *Room, userID string) any {
	return PhaseChangedPayload{Round: room.round, Phase: room.phaseInfo(userID)}
}

type votingEvent struct {
	Voting *Voting
}

func (e votingEvent) CanSendTo(room *Room, userID string) bool {
	return room.isModerator(userID) || e.Voting.CanView(room, room.participants[userID])
}

func (e votingEvent) Render(room *Room, userID string) any {
	return e.Voting.info(room, room.participants[userID], room.isModerator(userID))
}

type VotingCreatedEvent struct{ votingEvent }

func (e *VotingCreatedEvent) Name() string { return "voting-created" }

type VoteSetEvent struct{ votingEvent }

func (e *VoteSetEvent) Name() string { return "vote-set" }

type VotingRemovedEvent struct{ votingEvent }

func (e *VotingRemovedEvent) Name() string { return "voting-removed" }

func (e *VotingRemovedEvent) Render(room *Room, userID string) any {
	return map[string]string{"id": e.Voting.ID}
}

type VotingFinishedEvent struct {
	votingEvent
	Result VotingResult
}

type VotingFinishedPayload struct {
	Voting model.VotingInfo `json:"voting"`
	Result VotingResult     `json:"result"`
}

func (e *VotingFinishedEvent) Name() string { return "voting-finished" }

func (e *VotingFinishedEvent) Render(room *Room, userID string) any {
	return VotingFinishedPayload{
		Voting: e.votingEvent.Render(room, userID).(model.VotingInfo),
		Result: e.Result,
	}
}

// RoleInfoEvent discloses the roles of Subjects to Recipients, as far as the
// projection allows. Nil slices mean every participant.
type RoleInfoEvent struct {
	Recipients []string
	Subjects   []string
}

func (e *RoleInfoEvent) Name() string { return "role-info" }

func (e *RoleInfoEvent) CanSendTo(room *Room, userID string) bool {
	if _, ok := room.participants[userID]; !ok {
		return false
	}
	return e.Recipients == nil || slices.Contains(e.Recipients, userID)
}

func (e *RoleInfoEvent) Render(room *Room, userID string) any {
	infos := make([]model.ParticipantInfo, 0)
	for _, id := range room.order {
		if e.Subjects != nil && !slices.Contains(e.Subjects, id) {
			continue
		}
		if room.participants[id] == nil {
			continue
		}
		infos = append(infos, room.participantInfo(userID, id))
	}
	return infos
}

// KillNotificationEvent reports one group per notification id.
type KillNotificationEvent struct {
	everyone
	Groups []KillGroup
}

func (e *KillNotificationEvent) Name() string {
	if len(e.Groups) == 1 {
		return "kill-notification"
	}
	return "multi-kill-notification"
}

func (e *KillNotificationEvent) Render(room *Room, userID string) any {
	return e.Groups
}

type ChatEvent struct {
	From string
	Text string
}

type ChatPayload struct {
	From  string `json:"from"`
	Phase string `json:"phase"`
	Text  string `json:"text"`
}

func (e *ChatEvent) Name() string { return "chat" }

func (e *ChatEvent) CanSendTo(room *Room, userID string) bool {
	if room.isModerator(userID) {
		return true
	}
	c := room.participants[userID]
	return c != nil && room.phase != nil && room.phase.CanMessage(room, c)
}

func (e *ChatEvent) Render(room *Room, userID string) any {
	payload := ChatPayload{From: e.From, Text: e.Text}
	if room.phase != nil {
		payload.Phase = room.phase.Name()
	}
	return payload
}
