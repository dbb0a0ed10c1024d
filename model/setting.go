package model

import (
	"encoding/json"
	"errors"
	"time"
)

const DefaultRunoffThreshold = 2

// RoomOption is the per-room copy of the game section of the config.
type RoomOption struct {
	DeadCanSeeAllRoles  bool           `json:"deadCanSeeAllRoles"`
	AllCanSeeRoleOfDead bool           `json:"allCanSeeRoleOfDead"`
	LeaderIsPlayer      bool           `json:"leaderIsPlayer"`
	AutoStart           bool           `json:"autoStart"`
	AutoFinishVotings   bool           `json:"autoFinishVotings"`
	AutoFinishRounds    bool           `json:"autoFinishRounds"`
	RunoffThreshold     int            `json:"runoffThreshold"`
	VotingTimeout       time.Duration  `json:"-"`
	Phases              []string       `json:"phases"`
	RoleNumMap          map[string]int `json:"roleNumMap"`
}

func NewRoomOption(config Config) (*RoomOption, error) {
	roles, ok := config.Game.Roles[config.PlayerCount()]
	if !ok {
		return nil, errors.New("対応する役職の人数がありません")
	}
	if len(config.Game.Phases) == 0 {
		return nil, errors.New("フェーズの順序が設定されていません")
	}
	option := RoomOption{
		DeadCanSeeAllRoles:  config.Game.DeadCanSeeAllRoles,
		AllCanSeeRoleOfDead: config.Game.AllCanSeeRoleOfDead,
		LeaderIsPlayer:      config.Game.LeaderIsPlayer,
		AutoStart:           config.Game.AutoStart,
		AutoFinishVotings:   config.Game.AutoFinishVotings,
		AutoFinishRounds:    config.Game.AutoFinishRounds,
		RunoffThreshold:     config.Game.RunoffThreshold,
		Phases:              append([]string(nil), config.Game.Phases...),
		RoleNumMap:          make(map[string]int, len(roles)),
	}
	if option.RunoffThreshold <= 0 {
		option.RunoffThreshold = DefaultRunoffThreshold
	}
	if config.Game.VotingTimeout.Enable {
		option.VotingTimeout = config.Game.VotingTimeout.Duration
	}
	for name, num := range roles {
		option.RoleNumMap[name] = num
	}
	return &option, nil
}

func (o RoomOption) RoleCount() int {
	var count int
	for _, num := range o.RoleNumMap {
		count += num
	}
	return count
}

func (o RoomOption) MarshalJSON() ([]byte, error) {
	type Alias RoomOption
	return json.Marshal(&struct {
		Alias
		VotingTimeout int64 `json:"votingTimeout"`
	}{
		Alias:         Alias(o),
		VotingTimeout: o.VotingTimeout.Milliseconds(),
	})
}
