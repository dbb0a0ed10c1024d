package logic

import (
	"github.com/aiwolfdial/werewolf-room-server/model"
)

func (r *Room) info(userID string) model.Info {
	viewer := r.participants[userID]
	option := r.option
	info := model.Info{
		RoomID:       r.ID,
		Status:       r.status,
		Round:        r.round,
		Phase:        r.phaseInfo(userID),
		Viewer:       userID,
		Leader:       r.leader,
		Participants: make([]model.ParticipantInfo, 0, len(r.order)),
		Votings:      make([]model.VotingInfo, 0),
		Option:       &option,
	}
	for _, id := range r.order {
		info.Participants = append(info.Participants, r.participantInfo(userID, id))
	}
	if r.phase != nil {
		moderator := r.isModerator(userID)
		for _, v := range r.phase.Votings() {
			if moderator || v.CanView(r, viewer) {
				info.Votings = append(info.Votings, v.info(r, viewer, moderator))
			}
		}
	}
	if r.winner != nil {
		winner := *r.winner
		info.Winner = &winner
	}
	return info
}

func (r *Room) phaseInfo(userID string) *model.PhaseInfo {
	if r.phase == nil {
		return nil
	}
	c := r.participants[userID]
	return &model.PhaseInfo{
		Name:       r.phase.Name(),
		IsGame:     r.phase.IsGamePhase(),
		CanMessage: c != nil && r.phase.CanMessage(r, c),
	}
}

// participantInfo renders subjectID as seen by viewerID. The role always goes
// through ViewRole.
func (r *Room) participantInfo(viewerID string, subjectID string) model.ParticipantInfo {
	info := model.ParticipantInfo{
		UserID:  subjectID,
		Name:    r.displayName(subjectID),
		IsAlive: true,
		Tags:    make([]string, 0),
	}
	if r.users != nil {
		if user, ok := r.users.User(subjectID); ok {
			info.Avatar = user.Avatar
		}
	}
	subject := r.participants[subjectID]
	if subject == nil {
		if subjectID == r.leader {
			info.Tags = append(info.Tags, "leader")
		}
		return info
	}
	viewer := r.participants[viewerID]
	role := subject.ViewRole(viewer).Role.Name
	if r.isModerator(viewerID) {
		role = subject.Role.Name
	}
	info.Role = &role
	info.IsAlive = subject.enabled
	info.Tags = subject.Tags(viewer)
	return info
}

func (r *Room) displayName(userID string) string {
	if r.users != nil {
		if user, ok := r.users.User(userID); ok {
			return user.String()
		}
	}
	return userID
}
