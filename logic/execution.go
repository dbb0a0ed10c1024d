package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// newDailyVotePhase clears the night's protections and then holds the lynch
// vote.
func newDailyVotePhase() Phase {
	dawn := NewActionPhase("dawn", nil, func(room *Room) {
		var cleared int
		for _, c := range room.characters() {
			cleared += model.RemoveAll[*GuardedEffect](c.Effects)
		}
		slog.Info("夜が明けました", "id", room.ID, "round", room.round, "cleared", cleared)
	})
	rule := &VotingRule{
		Name:    PhaseDailyVote,
		Policy:  P_SINGLE_WINNER,
		CanVote: isAlive,
		Execute: func(room *Room, option VoteOption, voters []*Character) {
			conductExecution(room, option.Target, voters)
		},
	}
	return NewComboPhase(PhaseDailyVote, dawn, NewVotingPhase(PhaseDailyVote, rule, isAlive, WithCanMessage(talkAllowed)))
}

func conductExecution(room *Room, target *Character, voters []*Character) {
	if target == nil {
		slog.Warn("追放対象がいないため、追放結果を設定しません", "id", room.ID)
		return
	}
	if target.MarkKill(VillageKill()) {
		room.logGame("%d,execute,%s,%s,%d", room.round, target.UserID, target.Role.Name, len(voters))
		slog.Info("追放結果を設定しました", "id", room.ID, "agent", target.String())
	}
}
