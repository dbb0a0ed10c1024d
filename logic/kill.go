package logic

import (
	"log/slog"
	"sort"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

// NewKillPipelinePhase resolves every pending kill in one rotation slot:
// MARKED_KILL -> ABOUT_TO_KILL, the before-kill fixpoint, then KILLED.
func NewKillPipelinePhase(name string) Phase {
	return NewComboPhase(name,
		NewComboPhase(name+"-prepare",
			NewActionPhase(name+"-mark", hasKillState(model.K_MARKED_KILL), func(room *Room) {
				advanceAll(room, model.K_MARKED_KILL)
			}),
			NewActionPhase(name+"-before", hasKillState(model.K_ABOUT_TO_KILL), func(room *Room) {
				ResolveBeforeKill(room)
			}),
		),
		NewActionPhase(name+"-kill", hasKillState(model.K_BEFORE_KILL), func(room *Room) {
			CompleteKills(room)
		}),
	)
}

func hasKillState(state model.KillState) func(room *Room) bool {
	return func(room *Room) bool {
		for _, c := range room.characters() {
			if c.killState == state {
				return true
			}
		}
		return false
	}
}

// advanceAll moves every character in from one step forward and returns the
// moved characters. Characters in any other state are skipped.
func advanceAll(room *Room, from model.KillState) []*Character {
	moved := make([]*Character, 0)
	for _, c := range room.characters() {
		if c.advance(from) {
			moved = append(moved, c)
		}
	}
	return moved
}

// ResolveBeforeKill runs the before-kill fixpoint and returns the number of
// passes that advanced somebody. Every pass moves ABOUT_TO_KILL characters to
// BEFORE_KILL, runs their before-kill effects, then promotes whatever those
// effects marked. At most one pass per character runs; work left after that
// is logged and stays where it is.
func ResolveBeforeKill(room *Room) int {
	limit := len(room.characters())
	passes := 0
	for {
		if passes >= limit {
			if hasKillState(model.K_ABOUT_TO_KILL)(room) || hasKillState(model.K_MARKED_KILL)(room) {
				slog.Error("死亡処理が収束しませんでした", "id", room.ID, "passes", passes)
			}
			break
		}
		advanced := false
		for _, c := range advanceAll(room, model.K_ABOUT_TO_KILL) {
			advanced = true
			for e := range model.GetAll[BeforeKillEffect](c.Effects) {
				e.BeforeKill(room, c)
			}
		}
		if len(advanceAll(room, model.K_MARKED_KILL)) > 0 {
			advanced = true
		}
		if !advanced {
			break
		}
		passes++
	}
	notifyKills(room)
	return passes
}

type KillGroup struct {
	ID      string   `json:"id"`
	UserIDs []string `json:"userIds"`
}

// notifyKills emits one grouped notification for every character about to
// die, keyed by the notification id of its primary kill info.
func notifyKills(room *Room) {
	groups := make(map[string]*KillGroup)
	ids := make([]string, 0)
	for _, c := range room.characters() {
		if c.killState != model.K_BEFORE_KILL {
			continue
		}
		key := "unknown"
		if info, ok := c.PrimaryKillInfo(); ok {
			key = info.NotificationID()
		}
		group, ok := groups[key]
		if !ok {
			group = &KillGroup{ID: key, UserIDs: make([]string, 0)}
			groups[key] = group
			ids = append(ids, key)
		}
		group.UserIDs = append(group.UserIDs, c.UserID)
	}
	if len(ids) == 0 {
		return
	}
	sort.Strings(ids)
	event := &KillNotificationEvent{Groups: make([]KillGroup, 0, len(ids))}
	for _, id := range ids {
		event.Groups = append(event.Groups, *groups[id])
	}
	room.emit(event)
}

// CompleteKills moves every BEFORE_KILL character to KILLED, disabling it, and
// sends the role reveals the room's visibility flags ask for. With
// DeadCanSeeAllRoles everyone gets the full table through their own
// projection, so only the dead see past it.
func CompleteKills(room *Room) []*Character {
	killed := advanceAll(room, model.K_BEFORE_KILL)
	if len(killed) == 0 {
		return killed
	}
	userIDs := make([]string, 0, len(killed))
	for _, c := range killed {
		cause := "unknown"
		if info, ok := c.PrimaryKillInfo(); ok {
			cause = info.Cause()
		}
		slog.Info("エージェントが死亡しました", "id", room.ID, "user", c.UserID, "role", c.Role.Name, "cause", cause)
		room.logGame("%d,kill,%s,%s,%s", room.round, c.UserID, c.Role.Name, cause)
		userIDs = append(userIDs, c.UserID)
	}
	if room.option.AllCanSeeRoleOfDead {
		room.emit(&RoleInfoEvent{Subjects: userIDs})
	}
	if room.option.DeadCanSeeAllRoles {
		room.emit(&RoleInfoEvent{})
	}
	return killed
}
