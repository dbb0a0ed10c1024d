package util

import "github.com/aiwolfdial/werewolf-room-server/model"

func AgentIdx(packet model.BroadcastPacket, userID string) (int, bool) {
	for i, a := range packet.Agents {
		if a.UserID == userID {
			return i, true
		}
	}
	return -1, false
}

func SetTargetIdx(packet *model.BroadcastPacket, userID string, target int) {
	for i, a := range packet.Agents {
		if a.UserID == userID {
			packet.Agents[i].TargetIdxs = append(packet.Agents[i].TargetIdxs, target)
			break
		}
	}
}
