package logic

import (
	"log/slog"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// Character is the role a participant plays in one room. It survives death so
// the visibility rules for the dead keep working; methods expect the room lock
// to be held.
type Character struct {
	UserID    string
	Role      model.Role
	Effects   *model.EffectCollection[Effect]
	room      *Room
	kind      *RoleKind
	enabled   bool
	killState model.KillState
}

// unknownCharacter stands in for every role a viewer may not see.
var unknownCharacter = &Character{
	Role:      model.R_UNKNOWN,
	Effects:   model.NewEffectCollection[Effect](),
	killState: model.K_ALIVE,
}

func newCharacter(room *Room, userID string, kind *RoleKind) *Character {
	return &Character{
		UserID:    userID,
		Role:      kind.Role,
		Effects:   model.NewEffectCollection[Effect](),
		room:      room,
		kind:      kind,
		enabled:   true,
		killState: model.K_ALIVE,
	}
}

func (c *Character) Enabled() bool {
	return c.enabled
}

func (c *Character) KillState() model.KillState {
	return c.killState
}

func (c *Character) IsUnknown() bool {
	return c == unknownCharacter
}

func (c *Character) String() string {
	return c.UserID + "(" + c.Role.Name + ")"
}

// IsSameFaction answers SAME, DIFFERENT or UNKNOWN. Callers must treat
// UNKNOWN as neither.
func (c *Character) IsSameFaction(other *Character) model.Relation {
	if c.kind != nil && c.kind.SameFaction != nil {
		if rel := c.kind.SameFaction(c, other); rel != model.REL_UNKNOWN {
			return rel
		}
	}
	return model.CompareTeams(c.Role.Team, other.Role.Team)
}

// ViewRole is the character viewer perceives when looking at c. A nil viewer
// is an observer without a role.
func (c *Character) ViewRole(viewer *Character) *Character {
	if viewer == c {
		return c
	}
	if c.kind != nil && c.kind.View != nil {
		if seen, ok := c.kind.View(c, viewer); ok {
			return seen
		}
	}
	room := c.room
	if room.winner != nil {
		return c
	}
	if !c.enabled && room.option.AllCanSeeRoleOfDead {
		return c
	}
	if viewer != nil && !viewer.enabled && room.option.DeadCanSeeAllRoles {
		return c
	}
	if _, ok := model.GetWhere(c.Effects, func(e *RevealedEffect) bool {
		return e.Viewer == nil || e.Viewer == viewer
	}); ok {
		return c
	}
	if viewer != nil && c.Role.KnowsTeam && viewer.Role.KnowsTeam && c.IsSameFaction(viewer) == model.REL_SAME {
		return c
	}
	return unknownCharacter
}

// Tags aggregates the base tags of the room with the seen tags of every effect
// attached to c.
func (c *Character) Tags(viewer *Character) []string {
	tags := make([]string, 0)
	if !c.enabled {
		tags = append(tags, "dead")
	}
	if c.room.leader == c.UserID {
		tags = append(tags, "leader")
	}
	for e := range model.GetAll[TagEffect](c.room.Effects) {
		tags = append(tags, e.SeenTags(c.room, c, viewer)...)
	}
	for e := range model.GetAll[TagEffect](c.Effects) {
		tags = append(tags, e.SeenTags(c.room, c, viewer)...)
	}
	return tags
}

// MarkKill moves an alive character to MARKED_KILL and attaches info. A
// character that is already marked only collects the extra info; one further
// along is left untouched.
func (c *Character) MarkKill(info KillInfo) bool {
	switch c.killState {
	case model.K_ALIVE:
	case model.K_MARKED_KILL:
		c.Effects.Add(info)
		return false
	default:
		return false
	}
	c.Effects.Add(info)
	c.killState = model.K_MARKED_KILL
	slog.Info("死亡予定に設定しました", "id", c.room.ID, "user", c.UserID, "cause", info.Cause())
	return true
}

// advance moves c one step along the kill state machine if it is in from.
// Any other state is a no-op.
func (c *Character) advance(from model.KillState) bool {
	if c.killState != from || from == model.K_KILLED {
		return false
	}
	c.killState = from.Next()
	if c.killState == model.K_KILLED {
		c.enabled = false
	}
	return true
}

// PrimaryKillInfo is the first kill info attached to c.
func (c *Character) PrimaryKillInfo() (KillInfo, bool) {
	return model.Get[KillInfo](c.Effects)
}
