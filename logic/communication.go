package logic

import (
	"github.com/aiwolfdial/werewolf-room-server/model"
)

// talkAllowed is the daytime chat: every live player.
func talkAllowed(room *Room, c *Character) bool {
	return c.enabled
}

// whisperAllowed is the werewolves' night chat.
func whisperAllowed(room *Room, c *Character) bool {
	return c.enabled && c.Role == model.R_WEREWOLF
}
