package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
server:
  web_socket:
    host: 127.0.0.1
    port: 8080
  authentication:
    enable: true
    secret: from-file
game:
  agent_count: 5
  roles:
    5:
      VILLAGER: 2
      WEREWOLF: 1
      SEER: 1
      POSSESSED: 1
  phases: [seer, werewolf, kill, daily-vote, kill]
  dead_can_see_all_roles: true
  leader_is_player: true
  auto_finish_votings: true
  voting_timeout:
    enable: true
    duration: 90s
user_directory:
  ttl: 1m
`

func TestLoadFromBytes(t *testing.T) {
	config, err := LoadFromBytes([]byte(testConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.WebSocket.Port)
	assert.True(t, config.Server.Authentication.Enable)
	assert.Equal(t, 5, config.Game.AgentCount)
	assert.Equal(t, 2, config.Game.Roles[5]["VILLAGER"])
	assert.Equal(t, []string{"seer", "werewolf", "kill", "daily-vote", "kill"}, config.Game.Phases)
	assert.Equal(t, 90*time.Second, config.Game.VotingTimeout.Duration)
	assert.Equal(t, time.Minute, config.UserDirectory.TTL)
}

func TestLoadFromBytesInvalid(t *testing.T) {
	_, err := LoadFromBytes([]byte("server: [unterminated"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	config, err := LoadFromBytes([]byte(testConfig))
	require.NoError(t, err)

	t.Setenv("WEREWOLF_PORT", "9090")
	t.Setenv("WEREWOLF_AUTH_SECRET", "from-env")
	require.NoError(t, config.ApplyEnv())

	assert.Equal(t, "127.0.0.1", config.Server.WebSocket.Host)
	assert.Equal(t, 9090, config.Server.WebSocket.Port)
	assert.Equal(t, "from-env", config.Server.Authentication.Secret)
}

func TestApplyEnvInvalid(t *testing.T) {
	config := &Config{}
	t.Setenv("WEREWOLF_PORT", "not-a-port")
	assert.Error(t, config.ApplyEnv())
}

func TestNewRoomOption(t *testing.T) {
	config, err := LoadFromBytes([]byte(testConfig))
	require.NoError(t, err)

	option, err := NewRoomOption(*config)
	require.NoError(t, err)
	assert.True(t, option.DeadCanSeeAllRoles)
	assert.True(t, option.AutoFinishVotings)
	assert.Equal(t, DefaultRunoffThreshold, option.RunoffThreshold)
	assert.Equal(t, 90*time.Second, option.VotingTimeout)
	assert.Equal(t, 5, option.RoleCount())

	option.RoleNumMap["VILLAGER"] = 10
	option.Phases[0] = "changed"
	assert.Equal(t, 2, config.Game.Roles[5]["VILLAGER"])
	assert.Equal(t, "seer", config.Game.Phases[0])
}

func TestNewRoomOptionErrors(t *testing.T) {
	config, err := LoadFromBytes([]byte(testConfig))
	require.NoError(t, err)

	missingRoles := *config
	missingRoles.Game.AgentCount = 7
	_, err = NewRoomOption(missingRoles)
	assert.Error(t, err)

	moderated := *config
	moderated.Game.LeaderIsPlayer = false
	assert.Equal(t, 4, moderated.PlayerCount())
	_, err = NewRoomOption(moderated)
	assert.Error(t, err)

	missingPhases := *config
	missingPhases.Game.Phases = nil
	_, err = NewRoomOption(missingPhases)
	assert.Error(t, err)
}

func TestRoomOptionMarshalJSON(t *testing.T) {
	option := RoomOption{VotingTimeout: 3 * time.Second, RoleNumMap: map[string]int{"VILLAGER": 1}}
	data, err := option.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"votingTimeout":3000`)
	assert.Contains(t, string(data), `"roleNumMap":{"VILLAGER":1}`)
}
