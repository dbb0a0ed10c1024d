package logic

import (
	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/aiwolfdial/werewolf-room-server/util"
)

// WinCondition inspects the room and returns the winning team and its members,
// or ok=false while the game goes on.
type WinCondition func(room *Room) (team model.Team, userIDs []string, ok bool)

// DefaultWinConditions are checked in order; the first match wins.
var DefaultWinConditions = []WinCondition{
	DrawCondition,
	LoversCondition,
	FactionCondition,
	ParityCondition,
}

func DrawCondition(room *Room) (model.Team, []string, bool) {
	if len(room.aliveCharacters()) == 0 {
		return model.T_NONE, []string{}, true
	}
	return model.T_NONE, nil, false
}

// LoversCondition matches when the only survivors are two mutual lovers.
func LoversCondition(room *Room) (model.Team, []string, bool) {
	alive := room.aliveCharacters()
	if len(alive) != 2 {
		return model.T_NONE, nil, false
	}
	a, b := alive[0], alive[1]
	_, aLoves := model.GetWhere(a.Effects, func(e *LovedEffect) bool { return e.Partner == b })
	_, bLoves := model.GetWhere(b.Effects, func(e *LovedEffect) bool { return e.Partner == a })
	if !aLoves || !bLoves {
		return model.T_NONE, nil, false
	}
	return model.T_LOVERS, []string{a.UserID, b.UserID}, true
}

// FactionCondition matches when no two survivors are of different factions.
// Everyone of the survivors' faction wins, dead or alive.
func FactionCondition(room *Room) (model.Team, []string, bool) {
	alive := room.aliveCharacters()
	var reference *Character
	for i, c := range alive {
		for _, other := range alive[i+1:] {
			if c.IsSameFaction(other) == model.REL_DIFFERENT {
				return model.T_NONE, nil, false
			}
		}
		if reference == nil && c.Role.Team != model.T_NONE {
			reference = c
		}
	}
	if reference == nil {
		return model.T_NONE, nil, false
	}
	return reference.Role.Team, factionMembers(room, func(c *Character) bool {
		return reference.IsSameFaction(c) == model.REL_SAME
	}), true
}

// ParityCondition ends the game once the werewolves are gone or as many as
// the humans.
func ParityCondition(room *Room) (model.Team, []string, bool) {
	roles := make([]model.Role, 0)
	for _, c := range room.aliveCharacters() {
		roles = append(roles, c.Role)
	}
	team := util.CalcWinSideTeam(roles)
	if team == model.T_NONE {
		return model.T_NONE, nil, false
	}
	return team, factionMembers(room, func(c *Character) bool {
		return c.Role.Team == team
	}), true
}

func factionMembers(room *Room, member func(c *Character) bool) []string {
	return util.Map(util.Filter(room.characters(), member), func(c *Character) string {
		return c.UserID
	})
}
