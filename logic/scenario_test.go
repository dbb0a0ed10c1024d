package logic

import (
	"testing"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpposingTieIsDiscarded(t *testing.T) {
	f := newFixture(t, testOption(PhaseDailyVote, PhaseKill), DefaultRegistry(),
		map[string]int{"WEREWOLF": 1, "VILLAGER": 1}, noWinConditions())
	wolf := f.withRole(model.R_WEREWOLF)[0]
	villager := f.withRole(model.R_VILLAGER)[0]

	f.vote(t, wolf, PhaseDailyVote, villager)
	pending := f.voting(t, moderator, PhaseDailyVote)
	assert.Equal(t, 1, pending.MissingVotes)

	f.vote(t, villager, PhaseDailyVote, wolf)

	finished := f.recorder.messages(wolf.UserID, "voting-finished")
	require.Len(t, finished, 1)
	assert.Len(t, finished[0].Payload.(VotingFinishedPayload).Result.OptionIDs, 2)
	assert.Equal(t, model.K_ALIVE, f.killState(wolf))
	assert.Equal(t, model.K_ALIVE, f.killState(villager))
	assert.Empty(t, f.recorder.messages(wolf.UserID, "kill-notification"))
	assert.Equal(t, 2, f.round())
	assert.Equal(t, PhaseDailyVote, f.phaseName())
}

func TestUnanimousLynchEndsGame(t *testing.T) {
	f := newFixture(t, testOption(PhaseDailyVote, PhaseKill), DefaultRegistry(),
		map[string]int{"WEREWOLF": 1, "VILLAGER": 2}, nil)
	wolf := f.withRole(model.R_WEREWOLF)[0]
	villagers := f.withRole(model.R_VILLAGER)

	f.vote(t, villagers[0], PhaseDailyVote, wolf)
	f.vote(t, villagers[1], PhaseDailyVote, wolf)
	assert.Equal(t, model.K_ALIVE, f.killState(wolf))
	f.vote(t, wolf, PhaseDailyVote, villagers[0])

	assert.Equal(t, model.K_KILLED, f.killState(wolf))
	assert.False(t, wolf.Enabled())
	winner := f.room.Winner()
	require.NotNil(t, winner)
	assert.Equal(t, 1, winner.Round)
	assert.Equal(t, model.T_VILLAGER, winner.Team)
	assert.ElementsMatch(t, []string{villagers[0].UserID, villagers[1].UserID}, winner.UserIDs)
	assert.Equal(t, model.G_FINISHED, f.room.Status())

	notifications := f.recorder.messages(villagers[0].UserID, "kill-notification")
	require.Len(t, notifications, 1)
	assert.Equal(t, []KillGroup{{ID: CauseVillage, UserIDs: []string{wolf.UserID}}}, notifications[0].Payload)
	assert.Len(t, f.recorder.messages(moderator, "game-ended"), 1)
}

func TestDoNothingFinishesImmediately(t *testing.T) {
	registry := DefaultRegistry()
	executed := false
	var final *VotingResult
	registry.RegisterPhase("leader-selection", func() Phase {
		rule := &VotingRule{
			Name:      "leader-selection",
			Policy:    P_SINGLE_WINNER,
			DoNothing: true,
			CanVote:   aliveWithRole(model.R_SEER),
			Execute: func(room *Room, option VoteOption, voters []*Character) {
				executed = true
			},
			Finally: func(room *Room, result VotingResult) {
				final = &result
			},
		}
		return NewVotingPhase("leader-selection", rule, isAlive)
	})
	option := testOption("leader-selection")
	option.AutoFinishVotings = false
	option.AutoFinishRounds = false
	f := newFixture(t, option, registry, map[string]int{"SEER": 1, "VILLAGER": 2}, noWinConditions())
	seer := f.withRole(model.R_SEER)[0]

	v := f.voting(t, seer.UserID, "leader-selection")
	assert.Equal(t, 1, v.MissingVotes)
	assert.True(t, v.CanVote)
	require.NoError(t, f.room.CastVote(seer.UserID, v.ID, doNothingOf(t, v)))

	set := f.recorder.messages(seer.UserID, "vote-set")
	require.Len(t, set, 1)
	assert.Equal(t, 0, set[0].Payload.(model.VotingInfo).MissingVotes)
	assert.False(t, executed)
	require.NotNil(t, final)
	assert.True(t, final.DoNothing)

	info, err := f.room.GameState(seer.UserID)
	require.NoError(t, err)
	assert.Empty(t, info.Votings)
	assert.ErrorIs(t, f.room.CastVote(seer.UserID, v.ID, 0), ErrUnknownVoting)
}

func lovers(r *Room, a, b *Character) {
	a.Effects.Add(&LovedEffect{Partner: b})
	b.Effects.Add(&LovedEffect{Partner: a})
}

func TestLoversShareNotification(t *testing.T) {
	f := newFixture(t, testOption(PhaseDailyVote), DefaultRegistry(), map[string]int{"VILLAGER": 3}, noWinConditions())
	a, b, bystander := f.character("p0"), f.character("p1"), f.character("p2")

	var passes int
	f.locked(func(r *Room) {
		lovers(r, a, b)
		require.True(t, a.MarkKill(NewKillInfo(CauseLoved, "")))
		advanceAll(r, model.K_MARKED_KILL)
		passes = ResolveBeforeKill(r)
	})

	assert.Equal(t, 2, passes)
	assert.Equal(t, model.K_BEFORE_KILL, f.killState(a))
	assert.Equal(t, model.K_BEFORE_KILL, f.killState(b))
	assert.Equal(t, model.K_ALIVE, f.killState(bystander))

	notifications := f.recorder.messages(bystander.UserID, "kill-notification")
	require.Len(t, notifications, 1)
	assert.Equal(t, []KillGroup{{ID: CauseLoved, UserIDs: []string{a.UserID, b.UserID}}}, notifications[0].Payload)
	assert.Empty(t, f.recorder.messages(bystander.UserID, "multi-kill-notification"))
}

func TestLoversWithDifferentCauses(t *testing.T) {
	f := newFixture(t, testOption(PhaseDailyVote), DefaultRegistry(), map[string]int{"VILLAGER": 3}, noWinConditions())
	a, b := f.character("p0"), f.character("p1")

	f.locked(func(r *Room) {
		lovers(r, a, b)
		a.MarkKill(WerewolfKill())
		advanceAll(r, model.K_MARKED_KILL)
		ResolveBeforeKill(r)
		CompleteKills(r)
	})

	notifications := f.recorder.messages("p2", "multi-kill-notification")
	require.Len(t, notifications, 1)
	assert.Equal(t, []KillGroup{
		{ID: CauseLoved, UserIDs: []string{b.UserID}},
		{ID: CauseWerewolf, UserIDs: []string{a.UserID}},
	}, notifications[0].Payload)
	assert.Equal(t, model.K_KILLED, f.killState(a))
	assert.Equal(t, model.K_KILLED, f.killState(b))
	assert.Contains(t, a.Tags(nil), "killed-by-werewolf")
	assert.Contains(t, b.Tags(nil), "killed-by-loved")
}
