package logic

import (
	"log/slog"
	"strings"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/aiwolfdial/werewolf-room-server/util"
)

// nextPhase walks the rotation until it reaches a phase that waits for the
// players, or the game ends. Action phases complete during Init and are
// passed through.
func (r *Room) nextPhase() {
	skipped := 0
	for r.winner == nil {
		if r.phase != nil {
			r.endPhase()
		}
		r.phaseIdx++
		if r.phaseIdx >= len(r.option.Phases) {
			r.phaseIdx = 0
			r.round++
			slog.Info("ラウンドが進みました", "id", r.ID, "round", r.round)
		}
		name := r.option.Phases[r.phaseIdx]
		phase, err := r.registry.Phase(name)
		if err != nil {
			slog.Error("フェーズの生成に失敗しました", "id", r.ID, "phase", name, "error", err)
			r.abort()
			return
		}
		if !phase.CanExecute(r) {
			skipped++
			if skipped > len(r.option.Phases) {
				slog.Error("実行可能なフェーズがありません", "id", r.ID, "round", r.round)
				r.abort()
				return
			}
			continue
		}
		skipped = 0
		r.phase = phase
		slog.Info("フェーズを開始します", "id", r.ID, "round", r.round, "phase", name)
		r.emit(&PhaseChangedEvent{})
		phase.Init(r)
		if r.checkWinner() {
			return
		}
		if phase.IsGamePhase() || len(phase.Votings()) > 0 {
			return
		}
	}
}

// abort ends a room that cannot go on as a draw, so it never idles in the
// running state.
func (r *Room) abort() {
	r.winner = &model.Winner{Round: r.round, Team: model.T_NONE, UserIDs: []string{}}
	r.status = model.G_FINISHED
	slog.Warn("ゲームを中断しました", "id", r.ID, "round", r.round)
	r.logGame("%d,result,%s,aborted", r.round, model.T_NONE)
	r.emit(&GameEndedEvent{})
	r.trackEnd()
}

// endPhase discards whatever votings the phase still holds.
func (r *Room) endPhase() {
	for _, v := range r.phase.Votings() {
		v.Finish()
		r.emit(&VotingRemovedEvent{votingEvent{Voting: v}})
	}
	slog.Info("フェーズを終了します", "id", r.ID, "round", r.round, "phase", r.phase.Name())
	r.phase = nil
}

// resolve finishes v and hands the result to the owning phase.
func (r *Room) resolve(v *Voting) error {
	result, first := v.Finish()
	if !first {
		return ErrVotingFinished
	}
	slog.Info("投票を終了します", "id", r.ID, "voting", v.Name(), "result", result.OptionIDs, "doNothing", result.DoNothing)
	r.emit(&VotingFinishedEvent{votingEvent: votingEvent{Voting: v}, Result: result})
	if !r.phase.ResolveVoting(r, v, result) {
		slog.Error("投票を所有するフェーズが見つかりません", "id", r.ID, "voting", v.Name())
	}
	r.checkWinner()
	return nil
}

func (r *Room) finishVoting(v *Voting) error {
	if err := r.resolve(v); err != nil {
		return err
	}
	r.maybeAutoAdvance()
	return nil
}

func (r *Room) maybeAutoAdvance() {
	if r.winner != nil || r.phase == nil || len(r.phase.Votings()) > 0 {
		return
	}
	if r.option.AutoFinishRounds || !r.phase.IsGamePhase() {
		r.nextPhase()
	}
}

// checkWinner evaluates the win conditions in order and freezes the room on
// the first match.
func (r *Room) checkWinner() bool {
	if r.winner != nil {
		return true
	}
	if r.status != model.G_RUNNING {
		return false
	}
	for _, condition := range r.winConditions {
		team, userIDs, ok := condition(r)
		if !ok {
			continue
		}
		r.winner = &model.Winner{Round: r.round, Team: team, UserIDs: userIDs}
		r.status = model.G_FINISHED
		if r.phase != nil {
			r.endPhase()
		}
		slog.Info("ゲームが終了しました", "id", r.ID, "round", r.round, "winSide", team, "winners", userIDs)
		r.logGame("%d,result,%s,%s", r.round, team, strings.Join(userIDs, " "))
		r.emit(&GameEndedEvent{})
		r.trackEnd()
		return true
	}
	return false
}

// emit renders e for every recipient now and delivers after unlock.
func (r *Room) emit(e Event) {
	r.seq++
	name := e.Name()
	for _, userID := range r.order {
		if !e.CanSendTo(r, userID) {
			continue
		}
		message := model.Message{
			Event:   name,
			RoomID:  r.ID,
			Seq:     r.seq,
			Payload: e.Render(r, userID),
		}
		for _, sink := range r.sinks {
			r.after(func() { sink.Deliver(r.ID, userID, message) })
		}
		if r.jsonLogger != nil {
			r.after(func() { r.jsonLogger.Deliver(r.ID, userID, message) })
		}
	}
	if r.realtimeBroadcaster != nil {
		packet := r.broadcastPacket(name)
		if chat, ok := e.(*ChatEvent); ok {
			text := chat.Text
			packet.Message = &text
			if idx, ok := util.AgentIdx(packet, chat.From); ok {
				packet.FromIdx = &idx
			}
		}
		r.after(func() { r.realtimeBroadcaster.Broadcast(packet) })
	}
}

func (r *Room) emitVote(v *Voting, voter *Character, optionID int) {
	r.emit(&VoteSetEvent{votingEvent{Voting: v}})
	r.logGame("%d,vote,%s,%s,%d", r.round, v.Name(), voter.UserID, optionID)
}

// broadcastPacket is the spectator view: true roles, no projection.
func (r *Room) broadcastPacket(event string) model.BroadcastPacket {
	r.broadcastIdx++
	packet := model.BroadcastPacket{
		Id:    r.ID,
		Idx:   r.broadcastIdx,
		Round: r.round,
		Event: event,
	}
	if r.phase != nil {
		packet.Phase = r.phase.Name()
	}
	for _, c := range r.characters() {
		packet.Agents = append(packet.Agents, model.BroadcastAgent{
			UserID:     c.UserID,
			Name:       r.displayName(c.UserID),
			Role:       c.Role.Name,
			IsAlive:    c.enabled,
			Tags:       c.Tags(nil),
			TargetIdxs: make([]int, 0),
		})
	}
	if r.phase != nil {
		for _, v := range r.phase.Votings() {
			for _, userID := range v.voteOrder {
				option, _ := v.Option(v.votes[userID])
				if option.Target == nil {
					continue
				}
				if idx, ok := util.AgentIdx(packet, option.Target.UserID); ok {
					util.SetTargetIdx(&packet, userID, idx)
				}
			}
		}
	}
	return packet
}

func (r *Room) trackStart() {
	roles := make(map[string]string, len(r.order))
	for _, c := range r.characters() {
		roles[c.UserID] = c.Role.Name
	}
	id := r.ID
	if r.jsonLogger != nil {
		r.after(func() { r.jsonLogger.TrackStartGame(id, roles) })
	}
	if r.gameLogger != nil {
		r.after(func() { r.gameLogger.TrackStartGame(id, roles) })
	}
	if r.realtimeBroadcaster != nil {
		r.after(func() { r.realtimeBroadcaster.TrackStartGame(id, roles) })
	}
}

func (r *Room) trackEnd() {
	id, winner := r.ID, *r.winner
	if r.jsonLogger != nil {
		r.after(func() { r.jsonLogger.TrackEndGame(id, winner) })
	}
	if r.gameLogger != nil {
		r.after(func() { r.gameLogger.TrackEndGame(id) })
	}
	if r.realtimeBroadcaster != nil {
		r.after(func() { r.realtimeBroadcaster.TrackEndGame(id) })
	}
}
