package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/util"
)

// MaxRunoffDepth bounds how often a single-winner voting is reopened; a tie
// after the last runoff is broken at random.
const MaxRunoffDepth = 3

// resolveVoting applies a finished voting according to its policy and removes
// it from set. The rule's Finally hook runs unless the voting was replaced by
// a runoff.
func resolveVoting(room *Room, set *votingSet, v *Voting, result VotingResult) {
	defer set.close(room, v)

	if result.DoNothing {
		slog.Info("何もしない選択肢が選ばれました", "id", room.ID, "voting", v.Name())
		room.logGame("%d,%s,do-nothing", room.round, v.Name())
		runFinally(room, v, result)
		return
	}

	winners := make([]int, 0, len(result.OptionIDs))
	for _, id := range result.OptionIDs {
		if !v.IsDoNothing(id) {
			winners = append(winners, id)
		}
	}

	switch v.rule.Policy {
	case P_MULTIPLE_WINNER:
		for _, id := range winners {
			execute(room, v, id)
		}
	default:
		switch {
		case len(winners) == 1:
			execute(room, v, winners[0])
		case len(winners) > room.option.RunoffThreshold && v.runoffDepth < MaxRunoffDepth:
			openRunoff(room, set, v, winners)
			return
		case len(winners) > room.option.RunoffThreshold:
			id := util.SelectRandom(winners)
			slog.Warn("決選投票の上限に達したため、ランダムに選択します", "id", room.ID, "voting", v.Name(), "option", id)
			execute(room, v, id)
		default:
			slog.Info("投票が成立しませんでした", "id", room.ID, "voting", v.Name(), "candidates", len(winners))
			room.logGame("%d,%s,discarded", room.round, v.Name())
		}
	}
	runFinally(room, v, result)
}

func execute(room *Room, v *Voting, optionID int) {
	option, ok := v.Option(optionID)
	if !ok || v.rule.Execute == nil {
		return
	}
	slog.Info("投票結果を実行します", "id", room.ID, "voting", v.Name(), "option", optionID)
	v.rule.Execute(room, option, v.Voters(room, optionID))
}

func runFinally(room *Room, v *Voting, result VotingResult) {
	if v.rule.Finally != nil {
		v.rule.Finally(room, result)
	}
}

func openRunoff(room *Room, set *votingSet, v *Voting, tied []int) {
	options := make([]VoteOption, 0, len(tied))
	for _, id := range tied {
		if option, ok := v.Option(id); ok {
			options = append(options, option)
		}
	}
	runoff := newVoting(v.rule, options)
	runoff.runoffDepth = v.runoffDepth + 1
	slog.Info("決選投票を開始します", "id", room.ID, "voting", v.Name(), "depth", runoff.runoffDepth, "candidates", len(options))
	room.logGame("%d,%s,runoff,%d", room.round, v.Name(), len(options))
	set.open(room, runoff)
}
