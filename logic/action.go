package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

func newAttackPhase() Phase {
	rule := &VotingRule{
		Name:        PhaseWerewolf,
		Policy:      P_SINGLE_WINNER,
		PublicVotes: true,
		CanView:     func(room *Room, c *Character) bool { return c.Role == model.R_WEREWOLF },
		CanVote:     aliveWithRole(model.R_WEREWOLF),
		Execute: func(room *Room, option VoteOption, voters []*Character) {
			conductAttack(room, option.Target)
		},
	}
	return NewVotingPhase(PhaseWerewolf, rule, func(room *Room, c *Character) bool {
		return c.Role != model.R_WEREWOLF
	}, WithCanMessage(whisperAllowed))
}

func conductAttack(room *Room, target *Character) {
	if target == nil {
		return
	}
	if model.Has[*GuardedEffect](target.Effects) {
		room.logGame("%d,attack,%s,guarded", room.round, target.UserID)
		slog.Info("護衛されているため、襲撃は失敗しました", "id", room.ID, "target", target.String())
		return
	}
	if target.MarkKill(WerewolfKill()) {
		room.logGame("%d,attack,%s,%s", room.round, target.UserID, target.Role.Name)
		slog.Info("襲撃対象を設定しました", "id", room.ID, "target", target.String())
	}
}

// newHunterPhase gives every killed hunter one public shot.
func newHunterPhase() Phase {
	return NewRoleVotingPhase(PhaseHunter, func(room *Room, c *Character) bool {
		return c.Role == model.R_HUNTER && c.killState == model.K_KILLED && !model.Has[*HunterShotEffect](c.Effects)
	}, func(room *Room, hunter *Character) *Voting {
		rule := &VotingRule{
			Name:        PhaseHunter,
			Policy:      P_SINGLE_WINNER,
			DoNothing:   true,
			PublicVotes: true,
			CanVote:     onlyCharacter(hunter),
			Execute: func(room *Room, option VoteOption, voters []*Character) {
				if option.Target.MarkKill(HunterKill()) {
					room.logGame("%d,shoot,%s,%s", room.round, hunter.UserID, option.Target.UserID)
					slog.Info("ハンターが対象を撃ちました", "id", room.ID, "agent", hunter.String(), "target", option.Target.String())
				}
			},
			Finally: func(room *Room, result VotingResult) {
				hunter.Effects.Add(&HunterShotEffect{})
			},
		}
		return NewTargetVoting(room, rule, nil)
	})
}
