package logic

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/stretchr/testify/require"
)

const moderator = "gm"

type delivery struct {
	userID  string
	message model.Message
}

type recorder struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (rec *recorder) Deliver(roomID string, userID string, message model.Message) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.deliveries = append(rec.deliveries, delivery{userID: userID, message: message})
}

func (rec *recorder) messages(userID string, event string) []model.Message {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	messages := make([]model.Message, 0)
	for _, d := range rec.deliveries {
		if d.userID == userID && d.message.Event == event {
			messages = append(messages, d.message)
		}
	}
	return messages
}

func (rec *recorder) events(userID string) []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	events := make([]string, 0)
	for _, d := range rec.deliveries {
		if d.userID == userID {
			events = append(events, d.message.Event)
		}
	}
	return events
}

type roomFixture struct {
	room     *Room
	recorder *recorder
	players  []string
}

func testOption(phases ...string) model.RoomOption {
	return model.RoomOption{
		AutoFinishVotings: true,
		AutoFinishRounds:  true,
		RunoffThreshold:   model.DefaultRunoffThreshold,
		Phases:            phases,
	}
}

// newFixture seats a moderator plus one player per role count.
func newFixture(t *testing.T, option model.RoomOption, registry *Registry, roles map[string]int, conditions []WinCondition) *roomFixture {
	t.Helper()
	count := 0
	for _, num := range roles {
		count += num
	}
	players := make([]string, 0, count)
	for i := range count {
		players = append(players, fmt.Sprintf("p%d", i))
	}
	option.RoleNumMap = roles
	rec := &recorder{}
	room := NewRoom("room", option, registry, append([]string{moderator}, players...), moderator)
	room.AddSink(rec)
	if conditions != nil {
		room.SetWinConditions(conditions)
	}
	require.NoError(t, room.StartGame(roles))
	return &roomFixture{room: room, recorder: rec, players: players}
}

// locked runs fn the way a public room method does.
func (f *roomFixture) locked(fn func(r *Room)) {
	f.room.mu.Lock()
	defer f.room.flush()
	fn(f.room)
}

func (f *roomFixture) character(userID string) *Character {
	var c *Character
	f.locked(func(r *Room) { c = r.participants[userID] })
	return c
}

func (f *roomFixture) withRole(role model.Role) []*Character {
	var found []*Character
	f.locked(func(r *Room) {
		for _, c := range r.characters() {
			if c.Role == role {
				found = append(found, c)
			}
		}
	})
	return found
}

func (f *roomFixture) others(exclude ...*Character) []*Character {
	var found []*Character
	f.locked(func(r *Room) {
		for _, c := range r.characters() {
			if !slices.Contains(exclude, c) {
				found = append(found, c)
			}
		}
	})
	return found
}

func (f *roomFixture) killState(c *Character) model.KillState {
	var state model.KillState
	f.locked(func(r *Room) { state = c.killState })
	return state
}

// voting returns the single open voting userID can see with the given name.
func (f *roomFixture) voting(t *testing.T, userID string, name string) model.VotingInfo {
	t.Helper()
	info, err := f.room.GameState(userID)
	require.NoError(t, err)
	for _, v := range info.Votings {
		if v.Name == name && v.Started {
			return v
		}
	}
	require.FailNow(t, "voting not found", "user %s voting %s", userID, name)
	return model.VotingInfo{}
}

func optionOf(t *testing.T, voting model.VotingInfo, target string) int {
	t.Helper()
	for _, option := range voting.Options {
		if option.Vars["player"] == target {
			return option.ID
		}
	}
	require.FailNow(t, "option not found", "target %s", target)
	return -1
}

func doNothingOf(t *testing.T, voting model.VotingInfo) int {
	t.Helper()
	for _, option := range voting.Options {
		if option.LangID == doNothingOption.LangID {
			return option.ID
		}
	}
	require.FailNow(t, "do-nothing option not found")
	return -1
}

func (f *roomFixture) vote(t *testing.T, voter *Character, name string, target *Character) {
	t.Helper()
	v := f.voting(t, voter.UserID, name)
	require.NoError(t, f.room.CastVote(voter.UserID, v.ID, optionOf(t, v, target.UserID)))
}

func (f *roomFixture) phaseName() string {
	var name string
	f.locked(func(r *Room) {
		if r.phase != nil {
			name = r.phase.Name()
		}
	})
	return name
}

func (f *roomFixture) round() int {
	var round int
	f.locked(func(r *Room) { round = r.round })
	return round
}

func noWinConditions() []WinCondition {
	return []WinCondition{}
}
