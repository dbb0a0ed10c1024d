package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

func newGuardPhase() Phase {
	return NewRoleVotingPhase(PhaseGuard, aliveWithRole(model.R_BODYGUARD), func(room *Room, bodyguard *Character) *Voting {
		last, hasLast := model.Get[*LastGuardEffect](bodyguard.Effects)
		rule := &VotingRule{
			Name:    PhaseGuard,
			Policy:  P_SINGLE_WINNER,
			CanView: onlyCharacter(bodyguard),
			CanVote: onlyAlive(bodyguard),
			Execute: func(room *Room, option VoteOption, voters []*Character) {
				conductGuard(room, bodyguard, option.Target)
			},
		}
		return NewTargetVoting(room, rule, func(c *Character) bool {
			return c != bodyguard && (!hasLast || c != last.Target)
		})
	})
}

func conductGuard(room *Room, bodyguard *Character, target *Character) {
	if target == nil || !target.enabled {
		slog.Warn("護衛対象が死亡しているため、護衛対象を設定しません", "id", room.ID, "agent", bodyguard.String())
		return
	}
	target.Effects.Add(&GuardedEffect{By: bodyguard})
	bodyguard.Effects.Add(&LastGuardEffect{Target: target})
	room.logGame("%d,guard,%s,%s,%s", room.round, bodyguard.UserID, target.UserID, target.Role.Name)
	slog.Info("護衛対象を設定しました", "id", room.ID, "agent", bodyguard.String(), "target", target.String())
}
