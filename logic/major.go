package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

func appointMajor(room *Room, target *Character) {
	if target == nil || !target.enabled {
		return
	}
	room.Effects.Add(&MajorEffect{Major: target})
	room.logGame("%d,major,%s", room.round, target.UserID)
	slog.Info("村長を設定しました", "id", room.ID, "major", target.String())
}

// newMajorElectionPhase is held whenever the office is vacant.
func newMajorElectionPhase() Phase {
	rule := &VotingRule{
		Name:        PhaseMajorElection,
		Policy:      P_SINGLE_WINNER,
		PublicVotes: true,
		CanVote:     isAlive,
		Execute: func(room *Room, option VoteOption, voters []*Character) {
			appointMajor(room, option.Target)
		},
	}
	return NewVotingPhase(PhaseMajorElection, rule, isAlive,
		WithCanExecute(func(room *Room) bool {
			return !model.Has[*MajorEffect](room.Effects) && len(room.aliveCharacters()) > 0
		}),
		WithCanMessage(talkAllowed),
	)
}

// newMajorSuccessorPhase lets a dead major hand the office on. Choosing to do
// nothing vacates it.
func newMajorSuccessorPhase() Phase {
	return NewRoleVotingPhase(PhaseMajorSuccessor, func(room *Room, c *Character) bool {
		major, ok := currentMajor(room)
		return ok && major == c && !c.enabled
	}, func(room *Room, major *Character) *Voting {
		rule := &VotingRule{
			Name:        PhaseMajorSuccessor,
			Policy:      P_SINGLE_WINNER,
			DoNothing:   true,
			PublicVotes: true,
			CanVote:     onlyCharacter(major),
			Execute: func(room *Room, option VoteOption, voters []*Character) {
				appointMajor(room, option.Target)
			},
			Finally: func(room *Room, result VotingResult) {
				if current, ok := currentMajor(room); ok && current == major {
					model.RemoveAll[*MajorEffect](room.Effects)
					slog.Info("村長が空席になりました", "id", room.ID)
				}
			},
		}
		return NewTargetVoting(room, rule, nil)
	})
}
