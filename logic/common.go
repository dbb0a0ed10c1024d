package logic

import (
	"github.com/aiwolfdial/werewolf-room-server/model"
)

func isAlive(room *Room, c *Character) bool {
	return c.enabled
}

func aliveWithRole(role model.Role) func(room *Room, c *Character) bool {
	return func(room *Room, c *Character) bool {
		return c.enabled && c.Role == role
	}
}

func onlyCharacter(owner *Character) func(room *Room, c *Character) bool {
	return func(room *Room, c *Character) bool {
		return c == owner
	}
}

func onlyAlive(owner *Character) func(room *Room, c *Character) bool {
	return func(room *Room, c *Character) bool {
		return c == owner && c.enabled
	}
}

func currentMajor(room *Room) (*Character, bool) {
	major, ok := model.Get[*MajorEffect](room.Effects)
	if !ok {
		return nil, false
	}
	return major.Major, true
}
