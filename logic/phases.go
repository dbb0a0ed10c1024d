package logic

// VotingPhase hosts a single voting over the live participants accepted by
// candidate. Ties above the runoff threshold reopen it on the tied options.
type VotingPhase struct {
	votingSet
	name       string
	rule       *VotingRule
	candidate  func(room *Room, c *Character) bool
	canExecute func(room *Room) bool
	canMessage func(room *Room, c *Character) bool
}

type VotingPhaseOption func(p *VotingPhase)

func WithCanExecute(fn func(room *Room) bool) VotingPhaseOption {
	return func(p *VotingPhase) {
		p.canExecute = fn
	}
}

func WithCanMessage(fn func(room *Room, c *Character) bool) VotingPhaseOption {
	return func(p *VotingPhase) {
		p.canMessage = fn
	}
}

func NewVotingPhase(name string, rule *VotingRule, candidate func(room *Room, c *Character) bool, opts ...VotingPhaseOption) *VotingPhase {
	p := &VotingPhase{name: name, rule: rule, candidate: candidate}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *VotingPhase) Name() string      { return p.name }
func (p *VotingPhase) IsGamePhase() bool { return true }

// CanExecute defaults to "somebody can vote and there is something to vote on".
func (p *VotingPhase) CanExecute(room *Room) bool {
	if p.canExecute != nil {
		return p.canExecute(room)
	}
	hasVoter, hasCandidate := false, false
	for _, c := range room.characters() {
		if p.rule.CanVote(room, c) {
			hasVoter = true
		}
		if c.enabled && (p.candidate == nil || p.candidate(room, c)) {
			hasCandidate = true
		}
	}
	return hasVoter && hasCandidate
}

func (p *VotingPhase) Init(room *Room) {
	p.open(room, NewTargetVoting(room, p.rule, func(c *Character) bool {
		return p.candidate == nil || p.candidate(room, c)
	}))
}

func (p *VotingPhase) CanMessage(room *Room, c *Character) bool {
	return p.canMessage != nil && p.canMessage(room, c)
}

// RoleVotingPhase opens one voting per character accepted by filter, dead or
// alive.
type RoleVotingPhase struct {
	votingSet
	name   string
	filter func(room *Room, c *Character) bool
	build  func(room *Room, c *Character) *Voting
}

func NewRoleVotingPhase(name string, filter func(room *Room, c *Character) bool, build func(room *Room, c *Character) *Voting) *RoleVotingPhase {
	return &RoleVotingPhase{name: name, filter: filter, build: build}
}

func (p *RoleVotingPhase) Name() string      { return p.name }
func (p *RoleVotingPhase) IsGamePhase() bool { return true }

func (p *RoleVotingPhase) CanExecute(room *Room) bool {
	for _, c := range room.characters() {
		if p.filter(room, c) {
			return true
		}
	}
	return false
}

func (p *RoleVotingPhase) Init(room *Room) {
	for _, c := range room.characters() {
		if p.filter(room, c) {
			p.open(room, p.build(room, c))
		}
	}
}

func (p *RoleVotingPhase) CanMessage(room *Room, c *Character) bool { return false }
