package core

import (
	"sync"
	"time"
)

// VotingTimer finishes votings that outlive their timeout.
type VotingTimer struct {
	fire   func(roomID string, votingID string)
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewVotingTimer(fire func(roomID string, votingID string)) *VotingTimer {
	return &VotingTimer{
		fire:   fire,
		timers: make(map[string]*time.Timer),
	}
}

func (t *VotingTimer) Schedule(roomID string, votingID string, after time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.timers[votingID]; exists {
		return
	}
	t.timers[votingID] = time.AfterFunc(after, func() {
		t.mu.Lock()
		delete(t.timers, votingID)
		t.mu.Unlock()
		t.fire(roomID, votingID)
	})
}

func (t *VotingTimer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

func (t *VotingTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}
