package model

import (
	"encoding/json"
)

// Role is the static description of a role kind. Behaviour lives in the
// registry of the logic package; this is the part every projection can see.
type Role struct {
	Name    string
	Team    Team
	Species Species
	// KnowsTeam roles see the roles of other KnowsTeam roles of the same team.
	KnowsTeam bool
}

var (
	R_WEREWOLF  = Role{Name: "WEREWOLF", Team: T_WEREWOLF, Species: S_WEREWOLF, KnowsTeam: true}
	R_POSSESSED = Role{Name: "POSSESSED", Team: T_WEREWOLF, Species: S_HUMAN}
	R_SEER      = Role{Name: "SEER", Team: T_VILLAGER, Species: S_HUMAN}
	R_BODYGUARD = Role{Name: "BODYGUARD", Team: T_VILLAGER, Species: S_HUMAN}
	R_VILLAGER  = Role{Name: "VILLAGER", Team: T_VILLAGER, Species: S_HUMAN}
	R_AMOR      = Role{Name: "AMOR", Team: T_VILLAGER, Species: S_HUMAN}
	R_HUNTER    = Role{Name: "HUNTER", Team: T_VILLAGER, Species: S_HUMAN}
	R_UNKNOWN   = Role{Name: "UNKNOWN", Team: T_NONE, Species: S_NONE}
)

type Team string

const (
	T_VILLAGER Team = "VILLAGER"
	T_WEREWOLF Team = "WEREWOLF"
	T_LOVERS   Team = "LOVERS"
	T_NONE     Team = "NONE"
)

func TeamFromString(s string) Team {
	switch s {
	case "VILLAGER":
		return T_VILLAGER
	case "WEREWOLF":
		return T_WEREWOLF
	case "LOVERS":
		return T_LOVERS
	}
	return T_NONE
}

type Species string

const (
	S_HUMAN    Species = "HUMAN"
	S_WEREWOLF Species = "WEREWOLF"
	S_NONE     Species = "NONE"
)

func (r Role) String() string {
	return r.Name
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// Relation is the three-valued answer of a faction test.
type Relation string

const (
	REL_SAME      Relation = "SAME"
	REL_DIFFERENT Relation = "DIFFERENT"
	REL_UNKNOWN   Relation = "UNKNOWN"
)

// CompareTeams is the default faction test: teams are compared when both
// sides belong to one, anything involving T_NONE is unknown.
func CompareTeams(a, b Team) Relation {
	if a == T_NONE || b == T_NONE {
		return REL_UNKNOWN
	}
	if a == b {
		return REL_SAME
	}
	return REL_DIFFERENT
}
