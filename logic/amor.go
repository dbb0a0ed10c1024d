package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// newAmorPhase opens two pick votings per amor on the first round. Two
// distinct picks fall in love with each other.
func newAmorPhase() Phase {
	return NewComboPhase(PhaseAmor, newAmorPickPhase("amor-first"), newAmorPickPhase("amor-second"))
}

func newAmorPickPhase(name string) Phase {
	return NewRoleVotingPhase(name, func(room *Room, c *Character) bool {
		return room.round == 1 && c.enabled && c.Role == model.R_AMOR && !model.Has[*AmorDoneEffect](c.Effects)
	}, func(room *Room, amor *Character) *Voting {
		rule := &VotingRule{
			Name:    name,
			Policy:  P_SINGLE_WINNER,
			CanView: onlyCharacter(amor),
			CanVote: onlyAlive(amor),
			Execute: func(room *Room, option VoteOption, voters []*Character) {
				conductAmorPick(room, amor, option.Target)
			},
		}
		return NewTargetVoting(room, rule, nil)
	})
}

func conductAmorPick(room *Room, amor *Character, target *Character) {
	amor.Effects.Add(&AmorPickEffect{Target: target})
	picks := make([]*Character, 0, 2)
	for pick := range model.GetAll[*AmorPickEffect](amor.Effects) {
		picks = append(picks, pick.Target)
	}
	if len(picks) < 2 {
		return
	}
	a, b := picks[0], picks[1]
	a.Effects.Add(&LovedEffect{Partner: b})
	b.Effects.Add(&LovedEffect{Partner: a})
	model.RemoveAll[*AmorPickEffect](amor.Effects)
	amor.Effects.Add(&AmorDoneEffect{})
	room.logGame("%d,amor,%s,%s,%s", room.round, amor.UserID, a.UserID, b.UserID)
	slog.Info("恋人を設定しました", "id", room.ID, "agent", amor.String(), "lovers", []string{a.UserID, b.UserID})
}
