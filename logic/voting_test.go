package logic

import (
	"sync"
	"testing"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinishIsIdempotent(t *testing.T) {
	option := testOption(PhaseDailyVote, PhaseKill)
	option.AutoFinishVotings = false
	f := newFixture(t, option, DefaultRegistry(), map[string]int{"VILLAGER": 3}, noWinConditions())
	p0, p1 := f.character("p0"), f.character("p1")

	f.vote(t, p0, PhaseDailyVote, p1)
	var v *Voting
	f.locked(func(r *Room) { v = r.phase.Votings()[0] })

	var first, second VotingResult
	var firstOK, secondOK bool
	f.locked(func(r *Room) {
		first, firstOK = v.Finish()
		second, secondOK = v.Finish()
	})
	assert.True(t, firstOK)
	assert.False(t, secondOK)
	assert.Equal(t, first, second)
	assert.ErrorIs(t, f.room.FinishVoting(v.ID), ErrVotingFinished)
	assert.Equal(t, model.K_ALIVE, f.killState(p1))
}

func TestLateFinishIsRejected(t *testing.T) {
	option := testOption(PhaseDailyVote, PhaseKill)
	option.AutoFinishVotings = false
	f := newFixture(t, option, DefaultRegistry(), map[string]int{"VILLAGER": 3}, noWinConditions())
	p0, p1 := f.character("p0"), f.character("p1")

	f.vote(t, p0, PhaseDailyVote, p1)
	v := f.voting(t, "p0", PhaseDailyVote)
	require.NoError(t, f.room.FinishVoting(v.ID))
	assert.Equal(t, model.K_KILLED, f.killState(p1))
	round := f.round()

	assert.ErrorIs(t, f.room.FinishVoting(v.ID), ErrUnknownVoting)
	assert.Equal(t, round, f.round())
	assert.Len(t, f.recorder.messages("p0", "voting-finished"), 1)
}

func TestCastValidation(t *testing.T) {
	option := testOption(PhaseWerewolf, PhaseKill)
	option.AutoFinishVotings = false
	f := newFixture(t, option, DefaultRegistry(), map[string]int{"WEREWOLF": 1, "VILLAGER": 2}, noWinConditions())
	wolf := f.withRole(model.R_WEREWOLF)[0]
	villager := f.withRole(model.R_VILLAGER)[0]

	v := f.voting(t, wolf.UserID, PhaseWerewolf)
	assert.ErrorIs(t, f.room.CastVote(villager.UserID, v.ID, 0), ErrNotEligible)
	assert.ErrorIs(t, f.room.CastVote(wolf.UserID, v.ID, 99), ErrUnknownOption)
	assert.ErrorIs(t, f.room.CastVote(wolf.UserID, "missing", 0), ErrUnknownVoting)
	assert.ErrorIs(t, f.room.CastVote(moderator, v.ID, 0), ErrNotParticipant)
	assert.ErrorIs(t, f.room.CastVote("stranger", v.ID, 0), ErrNotParticipant)
	assert.Empty(t, f.recorder.messages(wolf.UserID, "vote-set"))
	assert.Equal(t, 1, f.voting(t, wolf.UserID, PhaseWerewolf).MissingVotes)

	for _, option := range v.Options {
		assert.NotEqual(t, wolf.UserID, option.Vars["player"])
	}

	f.vote(t, wolf, PhaseWerewolf, villager)
	f.vote(t, wolf, PhaseWerewolf, f.withRole(model.R_VILLAGER)[1])
	changed := f.voting(t, wolf.UserID, PhaseWerewolf)
	require.NotNil(t, changed.OwnVote)
	assert.Equal(t, optionOf(t, changed, f.withRole(model.R_VILLAGER)[1].UserID), *changed.OwnVote)
	assert.Equal(t, []string{wolf.UserID}, changed.Options[*changed.OwnVote].Users)
}

func TestSecretBallotVisibility(t *testing.T) {
	f := newFixture(t, testOption(PhaseWerewolf, PhaseKill), DefaultRegistry(),
		map[string]int{"WEREWOLF": 2, "VILLAGER": 2}, noWinConditions())
	villager := f.withRole(model.R_VILLAGER)[0]
	wolves := f.withRole(model.R_WEREWOLF)

	info, err := f.room.GameState(villager.UserID)
	require.NoError(t, err)
	assert.Empty(t, info.Votings)
	assert.Empty(t, f.recorder.messages(villager.UserID, "voting-created"))
	assert.Len(t, f.recorder.messages(wolves[0].UserID, "voting-created"), 1)
	assert.Len(t, f.recorder.messages(moderator, "voting-created"), 1)

	f.vote(t, wolves[0], PhaseWerewolf, villager)
	seen := f.voting(t, wolves[1].UserID, PhaseWerewolf)
	assert.Equal(t, []string{wolves[0].UserID}, seen.Options[optionOf(t, seen, villager.UserID)].Users)
}

func TestDailyVoteHidesOtherBallots(t *testing.T) {
	option := testOption(PhaseDailyVote, PhaseKill)
	option.AutoFinishVotings = false
	f := newFixture(t, option, DefaultRegistry(), map[string]int{"VILLAGER": 3}, noWinConditions())
	p0, p1 := f.character("p0"), f.character("p1")

	f.vote(t, p0, PhaseDailyVote, p1)
	other := f.voting(t, "p2", PhaseDailyVote)
	for _, option := range other.Options {
		assert.Empty(t, option.Users)
	}
	assert.Nil(t, other.OwnVote)

	own := f.voting(t, "p0", PhaseDailyVote)
	require.NotNil(t, own.OwnVote)
	assert.Empty(t, own.Options[*own.OwnVote].Users)

	moderated := f.voting(t, moderator, PhaseDailyVote)
	assert.Equal(t, []string{"p0"}, moderated.Options[optionOf(t, moderated, "p1")].Users)
}

func TestRunoffThenRandomPick(t *testing.T) {
	f := newFixture(t, testOption(PhaseDailyVote, PhaseKill), DefaultRegistry(), map[string]int{"VILLAGER": 3}, noWinConditions())
	players := f.others()

	for depth := 0; depth <= MaxRunoffDepth; depth++ {
		require.Equal(t, 1, f.round(), "depth %d", depth)
		var current *Voting
		f.locked(func(r *Room) {
			votings := r.phase.Votings()
			require.Len(t, votings, 1)
			current = votings[0]
		})
		assert.Equal(t, depth, current.runoffDepth)
		assert.Len(t, current.Options(), 3)
		for i, voter := range players {
			f.vote(t, voter, PhaseDailyVote, players[(i+1)%len(players)])
		}
	}

	dead := 0
	for _, c := range players {
		if f.killState(c) == model.K_KILLED {
			dead++
		}
	}
	assert.Equal(t, 1, dead)
	assert.Equal(t, 2, f.round())
	assert.Len(t, f.recorder.messages("p0", "voting-created"), MaxRunoffDepth+2)
}

func TestRunoffThresholdIsConfigurable(t *testing.T) {
	option := testOption(PhaseDailyVote, PhaseKill)
	option.RunoffThreshold = 1
	f := newFixture(t, option, DefaultRegistry(), map[string]int{"VILLAGER": 2}, noWinConditions())
	p0, p1 := f.character("p0"), f.character("p1")

	f.vote(t, p0, PhaseDailyVote, p1)
	f.vote(t, p1, PhaseDailyVote, p0)

	runoff := f.voting(t, "p0", PhaseDailyVote)
	assert.Len(t, runoff.Options, 2)
	assert.Equal(t, 1, f.round())
	assert.Len(t, f.recorder.messages("p0", "voting-removed"), 1)
}

func TestMultipleWinnerExecutesEveryTiedOption(t *testing.T) {
	registry := DefaultRegistry()
	var accepted []string
	registry.RegisterPhase("accept", func() Phase {
		return NewVotingPhase("accept", &VotingRule{
			Name:    "accept",
			Policy:  P_MULTIPLE_WINNER,
			CanVote: isAlive,
			Execute: func(room *Room, option VoteOption, voters []*Character) {
				accepted = append(accepted, option.Target.UserID)
				assert.Len(t, voters, 1)
			},
		}, isAlive)
	})
	option := testOption("accept")
	option.AutoFinishRounds = false
	f := newFixture(t, option, registry, map[string]int{"VILLAGER": 3}, noWinConditions())
	p0, p1, p2 := f.character("p0"), f.character("p1"), f.character("p2")

	f.vote(t, p0, "accept", p1)
	f.vote(t, p1, "accept", p0)
	f.vote(t, p2, "accept", p2)

	assert.Equal(t, []string{"p0", "p1", "p2"}, accepted)
}

func TestAdvancePhaseResolvesOpenVotings(t *testing.T) {
	option := testOption(PhaseDailyVote, PhaseKill)
	option.AutoFinishVotings = false
	option.AutoFinishRounds = false
	f := newFixture(t, option, DefaultRegistry(), map[string]int{"VILLAGER": 3}, noWinConditions())
	p0, p1 := f.character("p0"), f.character("p1")

	f.vote(t, p0, PhaseDailyVote, p1)
	v := f.voting(t, "p0", PhaseDailyVote)
	require.NoError(t, f.room.FinishVoting(v.ID))
	assert.Equal(t, model.K_MARKED_KILL, f.killState(p1))
	assert.Equal(t, PhaseDailyVote, f.phaseName())

	require.NoError(t, f.room.AdvancePhase())
	assert.Equal(t, model.K_KILLED, f.killState(p1))
	assert.Equal(t, PhaseDailyVote, f.phaseName())
	assert.Equal(t, 2, f.round())

	f.vote(t, p0, PhaseDailyVote, f.character("p2"))
	require.NoError(t, f.room.AdvancePhase())
	assert.Equal(t, model.K_KILLED, f.killState(f.character("p2")))
}

type fakeTimer struct {
	mu        sync.Mutex
	scheduled []string
	after     time.Duration
}

func (ft *fakeTimer) Schedule(roomID string, votingID string, after time.Duration) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.scheduled = append(ft.scheduled, votingID)
	ft.after = after
}

func TestVotingTimeoutIsScheduled(t *testing.T) {
	option := testOption(PhaseDailyVote, PhaseKill)
	option.VotingTimeout = 30 * time.Second
	option.RoleNumMap = map[string]int{"VILLAGER": 2}
	timer := &fakeTimer{}
	room := NewRoom("room", option, DefaultRegistry(), []string{moderator, "p0", "p1"}, moderator)
	room.SetVotingTimer(timer)
	room.SetWinConditions(noWinConditions())
	require.NoError(t, room.StartGame(option.RoleNumMap))

	info, err := room.GameState("p0")
	require.NoError(t, err)
	require.Len(t, info.Votings, 1)
	assert.Equal(t, []string{info.Votings[0].ID}, timer.scheduled)
	assert.Equal(t, 30*time.Second, timer.after)

	require.NoError(t, room.FinishVoting(info.Votings[0].ID))
	assert.ErrorIs(t, room.FinishVoting(info.Votings[0].ID), ErrUnknownVoting)
}
