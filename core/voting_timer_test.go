package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firing struct {
	roomID   string
	votingID string
}

func TestVotingTimerFires(t *testing.T) {
	fired := make(chan firing, 1)
	timer := NewVotingTimer(func(roomID string, votingID string) {
		fired <- firing{roomID: roomID, votingID: votingID}
	})

	timer.Schedule("room", "v1", 10*time.Millisecond)
	timer.Schedule("room", "v1", time.Hour)
	assert.Equal(t, 1, timer.Pending())

	select {
	case f := <-fired:
		assert.Equal(t, firing{roomID: "room", votingID: "v1"}, f)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timer did not fire")
	}
	assert.Eventually(t, func() bool { return timer.Pending() == 0 }, time.Second, 10*time.Millisecond)
}

func TestVotingTimerStop(t *testing.T) {
	fired := make(chan firing, 2)
	timer := NewVotingTimer(func(roomID string, votingID string) {
		fired <- firing{roomID: roomID, votingID: votingID}
	})

	timer.Schedule("room", "v1", 50*time.Millisecond)
	timer.Schedule("room", "v2", 50*time.Millisecond)
	assert.Equal(t, 2, timer.Pending())

	timer.Stop()
	assert.Equal(t, 0, timer.Pending())
	assert.Never(t, func() bool { return len(fired) > 0 }, 200*time.Millisecond, 20*time.Millisecond)
}
