package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

func newSeerPhase() Phase {
	return NewRoleVotingPhase(PhaseSeer, aliveWithRole(model.R_SEER), func(room *Room, seer *Character) *Voting {
		rule := &VotingRule{
			Name:    PhaseSeer,
			Policy:  P_SINGLE_WINNER,
			CanView: onlyCharacter(seer),
			CanVote: onlyAlive(seer),
			Execute: func(room *Room, option VoteOption, voters []*Character) {
				conductDivination(room, seer, option.Target)
			},
		}
		return NewTargetVoting(room, rule, func(c *Character) bool {
			return c != seer
		})
	})
}

// conductDivination reveals target to the seer and tells the seer right away.
func conductDivination(room *Room, seer *Character, target *Character) {
	if target == nil || target == seer {
		slog.Warn("占い対象が自分自身であるため、占い結果を設定しません", "id", room.ID, "agent", seer.String())
		return
	}
	target.Effects.Add(&RevealedEffect{Viewer: seer})
	room.emit(&RoleInfoEvent{Recipients: []string{seer.UserID}, Subjects: []string{target.UserID}})
	room.logGame("%d,divine,%s,%s,%s", room.round, seer.UserID, target.UserID, target.Role.Species)
	slog.Info("占い結果を設定しました", "id", room.ID, "target", target.String(), "result", target.Role.Species)
}
