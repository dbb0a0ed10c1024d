package logic

import (
	"slices"
)

// Phase is one slot of the rotation. A fresh instance is built every time the
// slot is visited.
type Phase interface {
	Name() string
	// IsGamePhase is false for action phases, which finish during Init.
	IsGamePhase() bool
	CanExecute(room *Room) bool
	Init(room *Room)
	Votings() []*Voting
	// ResolveVoting applies the result of a voting owned by this phase and
	// reports whether it owned it.
	ResolveVoting(room *Room, voting *Voting, result VotingResult) bool
	CanMessage(room *Room, c *Character) bool
}

type votingSet struct {
	votings []*Voting
}

func (s *votingSet) Votings() []*Voting {
	return slices.Clone(s.votings)
}

func (s *votingSet) open(room *Room, v *Voting) {
	s.votings = append(s.votings, v)
	room.votingOpened(v)
}

func (s *votingSet) close(room *Room, v *Voting) {
	idx := slices.Index(s.votings, v)
	if idx < 0 {
		return
	}
	s.votings = slices.Delete(s.votings, idx, idx+1)
	room.votingClosed(v)
}

func (s *votingSet) ResolveVoting(room *Room, v *Voting, result VotingResult) bool {
	if !slices.Contains(s.votings, v) {
		return false
	}
	resolveVoting(room, s, v, result)
	return true
}

// ActionPhase runs its action during Init and never hosts a voting.
type ActionPhase struct {
	name       string
	canExecute func(room *Room) bool
	action     func(room *Room)
}

func NewActionPhase(name string, canExecute func(room *Room) bool, action func(room *Room)) *ActionPhase {
	return &ActionPhase{name: name, canExecute: canExecute, action: action}
}

func (p *ActionPhase) Name() string      { return p.name }
func (p *ActionPhase) IsGamePhase() bool { return false }

func (p *ActionPhase) CanExecute(room *Room) bool {
	return p.canExecute == nil || p.canExecute(room)
}

func (p *ActionPhase) Init(room *Room) {
	p.action(room)
}

func (p *ActionPhase) Votings() []*Voting { return nil }

func (p *ActionPhase) ResolveVoting(room *Room, voting *Voting, result VotingResult) bool {
	return false
}

func (p *ActionPhase) CanMessage(room *Room, c *Character) bool { return false }

// ComboPhase runs two phases in one rotation slot. Each half is checked for
// executability right before it initialises, so the first half may enable or
// disable the second.
type ComboPhase struct {
	name          string
	first, second Phase
	active        []Phase
}

func NewComboPhase(name string, first Phase, second Phase) *ComboPhase {
	return &ComboPhase{name: name, first: first, second: second}
}

func (p *ComboPhase) Name() string { return p.name }

func (p *ComboPhase) IsGamePhase() bool {
	for _, phase := range p.halves() {
		if phase.IsGamePhase() {
			return true
		}
	}
	return false
}

func (p *ComboPhase) CanExecute(room *Room) bool {
	return p.first.CanExecute(room) || p.second.CanExecute(room)
}

func (p *ComboPhase) Init(room *Room) {
	p.active = make([]Phase, 0, 2)
	for _, phase := range []Phase{p.first, p.second} {
		if !phase.CanExecute(room) {
			continue
		}
		p.active = append(p.active, phase)
		phase.Init(room)
	}
}

func (p *ComboPhase) Votings() []*Voting {
	votings := make([]*Voting, 0)
	for _, phase := range p.halves() {
		votings = append(votings, phase.Votings()...)
	}
	return votings
}

func (p *ComboPhase) ResolveVoting(room *Room, voting *Voting, result VotingResult) bool {
	for _, phase := range p.halves() {
		if phase.ResolveVoting(room, voting, result) {
			return true
		}
	}
	return false
}

func (p *ComboPhase) CanMessage(room *Room, c *Character) bool {
	for _, phase := range p.halves() {
		if phase.CanMessage(room, c) {
			return true
		}
	}
	return false
}

// halves are the initialised halves, or both before Init.
func (p *ComboPhase) halves() []Phase {
	if p.active != nil {
		return p.active
	}
	return []Phase{p.first, p.second}
}
