package logic

import (
	"github.com/aiwolfdial/werewolf-room-server/model"
)

const (
	PhaseAmor           = "amor"
	PhaseGuard          = "guard"
	PhaseSeer           = "seer"
	PhaseWerewolf       = "werewolf"
	PhaseKill           = "kill"
	PhaseHunter         = "hunter"
	PhaseMajorSuccessor = "major-successor"
	PhaseMajorElection  = "major-election"
	PhaseDailyVote      = "daily-vote"
)

// DefaultPhases is the standard rotation. kill follows every step that may
// mark somebody, so hunter shots and lovers resolve within the same night or
// day.
var DefaultPhases = []string{
	PhaseAmor,
	PhaseGuard,
	PhaseSeer,
	PhaseWerewolf,
	PhaseKill,
	PhaseHunter,
	PhaseKill,
	PhaseMajorSuccessor,
	PhaseMajorElection,
	PhaseDailyVote,
	PhaseKill,
	PhaseHunter,
	PhaseKill,
	PhaseMajorSuccessor,
}

func DefaultRegistry() *Registry {
	registry := NewRegistry()
	for _, role := range []model.Role{
		model.R_VILLAGER,
		model.R_WEREWOLF,
		model.R_POSSESSED,
		model.R_SEER,
		model.R_BODYGUARD,
		model.R_AMOR,
		model.R_HUNTER,
	} {
		registry.RegisterRole(&RoleKind{Role: role})
	}
	registry.RegisterPhase(PhaseAmor, newAmorPhase)
	registry.RegisterPhase(PhaseGuard, newGuardPhase)
	registry.RegisterPhase(PhaseSeer, newSeerPhase)
	registry.RegisterPhase(PhaseWerewolf, newAttackPhase)
	registry.RegisterPhase(PhaseKill, func() Phase { return NewKillPipelinePhase(PhaseKill) })
	registry.RegisterPhase(PhaseHunter, newHunterPhase)
	registry.RegisterPhase(PhaseMajorSuccessor, newMajorSuccessorPhase)
	registry.RegisterPhase(PhaseMajorElection, newMajorElectionPhase)
	registry.RegisterPhase(PhaseDailyVote, newDailyVotePhase)
	return registry
}
