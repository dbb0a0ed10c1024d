package logic

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/aiwolfdial/werewolf-room-server/service"
	"github.com/aiwolfdial/werewolf-room-server/util"
)

var (
	ErrGameFinished       = errors.New("ゲームは既に終了しています")
	ErrGameNotStarted     = errors.New("ゲームが開始されていません")
	ErrGameAlreadyStarted = errors.New("ゲームは既に開始されています")
	ErrNotParticipant     = errors.New("ルームの参加者ではありません")
	ErrCannotMessage      = errors.New("このフェーズではメッセージを送信できません")
	ErrNotLeader          = errors.New("リーダーのみが実行できます")
	ErrRoleCount          = errors.New("役職の数がプレイヤー数と一致しません")
	ErrNoPhases           = errors.New("フェーズの順序が設定されていません")
)

// EventSink receives messages already rendered for one recipient. Deliver is
// called after the room lock has been released.
type EventSink interface {
	Deliver(roomID string, userID string, message model.Message)
}

// UserDirectory resolves display config. It must not block.
type UserDirectory interface {
	User(id string) (model.User, bool)
}

// VotingTimer is told about every opened voting when a timeout is configured.
// It is expected to call Room.FinishVoting once the duration elapses.
type VotingTimer interface {
	Schedule(roomID string, votingID string, after time.Duration)
}

type Room struct {
	ID      string
	Effects *model.EffectCollection[Effect]

	mu           sync.Mutex
	outbox       []func()
	seq          int
	broadcastIdx int

	registry      *Registry
	option        model.RoomOption
	winConditions []WinCondition
	status        model.GameStatus
	leader        string
	order         []string
	participants  map[string]*Character
	round         int
	phaseIdx      int
	phase         Phase
	winner        *model.Winner

	sinks               []EventSink
	users               UserDirectory
	timer               VotingTimer
	jsonLogger          *service.JSONLogger
	gameLogger          *service.GameLogger
	realtimeBroadcaster *service.RealtimeBroadcaster
}

// NewRoom fixes the participant set. The leader is one of userIDs; unless
// the option says the leader plays, the leader is left without a role.
func NewRoom(id string, option model.RoomOption, registry *Registry, userIDs []string, leader string) *Room {
	room := &Room{
		ID:            id,
		Effects:       model.NewEffectCollection[Effect](),
		registry:      registry,
		option:        option,
		winConditions: DefaultWinConditions,
		status:        model.G_WAITING,
		leader:        leader,
		order:         slices.Clone(userIDs),
		participants:  make(map[string]*Character, len(userIDs)),
		phaseIdx:      -1,
	}
	if room.option.RunoffThreshold <= 0 {
		room.option.RunoffThreshold = model.DefaultRunoffThreshold
	}
	for _, userID := range userIDs {
		room.participants[userID] = nil
	}
	room.Effects.OnAdded(func(e Effect) {
		slog.Debug("ルームに効果を付与しました", "id", room.ID, "effect", e.EffectID())
	})
	room.Effects.OnRemoved(func(e Effect) {
		slog.Debug("ルームから効果を削除しました", "id", room.ID, "effect", e.EffectID())
	})
	slog.Info("ルームを作成しました", "id", id, "participants", len(userIDs))
	return room
}

func (r *Room) AddSink(sink EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, sink)
}

func (r *Room) SetUserDirectory(users UserDirectory) {
	r.users = users
}

func (r *Room) SetVotingTimer(timer VotingTimer) {
	r.timer = timer
}

func (r *Room) SetWinConditions(conditions []WinCondition) {
	r.winConditions = conditions
}

func (r *Room) SetJSONLogger(jsonLogger *service.JSONLogger) {
	r.jsonLogger = jsonLogger
}

func (r *Room) SetGameLogger(gameLogger *service.GameLogger) {
	r.gameLogger = gameLogger
}

func (r *Room) SetRealtimeBroadcaster(realtimeBroadcaster *service.RealtimeBroadcaster) {
	r.realtimeBroadcaster = realtimeBroadcaster
}

// flush releases the lock and runs everything queued while it was held.
func (r *Room) flush() {
	outbox := r.outbox
	r.outbox = nil
	r.mu.Unlock()
	for _, fn := range outbox {
		fn()
	}
}

func (r *Room) after(fn func()) {
	r.outbox = append(r.outbox, fn)
}

func (r *Room) Leader() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leader
}

func (r *Room) Status() model.GameStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) Winner() *model.Winner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.winner == nil {
		return nil
	}
	winner := *r.winner
	return &winner
}

func (r *Room) IsParticipant(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.participants[userID]
	return ok
}

// StartGame assigns roles and enters the first phase. Every role and phase
// name is resolved before anything changes.
func (r *Room) StartGame(roles map[string]int) error {
	r.mu.Lock()
	defer r.flush()

	if r.status != model.G_WAITING {
		return ErrGameAlreadyStarted
	}
	players := r.players()
	kinds := make(map[string]*RoleKind, len(roles))
	count := 0
	for name, num := range roles {
		kind, err := r.registry.Role(name)
		if err != nil {
			slog.Error("役職の解決に失敗しました", "id", r.ID, "error", err)
			return err
		}
		kinds[name] = kind
		count += num
	}
	if count != len(players) {
		slog.Error("役職の数がプレイヤー数と一致しません", "id", r.ID, "roles", count, "players", len(players))
		return fmt.Errorf("役職%d人, プレイヤー%d人: %w", count, len(players), ErrRoleCount)
	}
	if len(r.option.Phases) == 0 {
		slog.Error("フェーズの順序が空です", "id", r.ID)
		return ErrNoPhases
	}
	for _, name := range r.option.Phases {
		if _, err := r.registry.Phase(name); err != nil {
			slog.Error("フェーズの解決に失敗しました", "id", r.ID, "error", err)
			return err
		}
	}

	for i, name := range util.ExpandRoleTable(roles) {
		c := newCharacter(r, players[i], kinds[name])
		c.Effects.OnAdded(func(e Effect) {
			slog.Debug("効果を付与しました", "id", r.ID, "user", c.UserID, "effect", e.EffectID())
		})
		r.participants[players[i]] = c
	}
	for _, c := range r.characters() {
		if c.kind.Setup != nil {
			c.kind.Setup(r, c)
		}
	}
	r.status = model.G_RUNNING
	r.round = 1
	slog.Info("ゲームを開始します", "id", r.ID, "players", len(players))
	r.trackStart()
	r.emit(&GameStartedEvent{})
	r.nextPhase()
	return nil
}

// CastVote records a ballot and finishes the voting once it is complete.
func (r *Room) CastVote(userID string, votingID string, optionID int) error {
	r.mu.Lock()
	defer r.flush()

	if err := r.checkRunning(); err != nil {
		return err
	}
	c, ok := r.participants[userID]
	if !ok || c == nil {
		return ErrNotParticipant
	}
	v := r.findVoting(votingID)
	if v == nil {
		return ErrUnknownVoting
	}
	if err := v.Cast(r, c, optionID); err != nil {
		slog.Warn("投票を受け付けませんでした", "id", r.ID, "user", userID, "voting", v.Name(), "error", err)
		return err
	}
	slog.Info("投票を受け付けました", "id", r.ID, "user", userID, "voting", v.Name(), "option", optionID)
	r.emitVote(v, c, optionID)
	if v.IsDoNothing(optionID) || (r.option.AutoFinishVotings && v.MissingVotes(r) == 0) {
		return r.finishVoting(v)
	}
	return nil
}

// FinishVoting is the entry point shared by the quorum path and the timeout
// timer. A voting that already finished is rejected.
func (r *Room) FinishVoting(votingID string) error {
	r.mu.Lock()
	defer r.flush()

	if err := r.checkRunning(); err != nil {
		return err
	}
	v := r.findVoting(votingID)
	if v == nil {
		return ErrUnknownVoting
	}
	return r.finishVoting(v)
}

// AdvancePhase resolves the open votings of the current phase and moves on,
// unless resolving reopened a runoff.
func (r *Room) AdvancePhase() error {
	r.mu.Lock()
	defer r.flush()

	if err := r.checkRunning(); err != nil {
		return err
	}
	for _, v := range r.phase.Votings() {
		if v.IsFinished() {
			continue
		}
		r.resolve(v)
		if r.winner != nil {
			return nil
		}
	}
	if len(r.phase.Votings()) > 0 {
		slog.Info("決選投票があるため、フェーズを継続します", "id", r.ID, "phase", r.phase.Name())
		return nil
	}
	r.nextPhase()
	return nil
}

func (r *Room) SendChat(userID string, text string) error {
	r.mu.Lock()
	defer r.flush()

	if err := r.checkRunning(); err != nil {
		return err
	}
	c, ok := r.participants[userID]
	if !ok {
		return ErrNotParticipant
	}
	if c == nil || !r.phase.CanMessage(r, c) {
		return ErrCannotMessage
	}
	r.logGame("%d,talk,%s,%s,%s", r.round, r.phase.Name(), userID, text)
	r.emit(&ChatEvent{From: userID, Text: text})
	return nil
}

// GameState is the projection of the room for userID.
func (r *Room) GameState(userID string) (*model.Info, error) {
	r.mu.Lock()
	defer r.flush()

	if _, ok := r.participants[userID]; !ok {
		return nil, ErrNotParticipant
	}
	info := r.info(userID)
	return &info, nil
}

func (r *Room) checkRunning() error {
	switch {
	case r.winner != nil || r.status == model.G_FINISHED:
		return ErrGameFinished
	case r.status != model.G_RUNNING || r.phase == nil:
		return ErrGameNotStarted
	}
	return nil
}

// players are the participants that receive a role, in join order.
func (r *Room) players() []string {
	if r.option.LeaderIsPlayer {
		return slices.Clone(r.order)
	}
	return util.Filter(r.order, func(id string) bool { return id != r.leader })
}

func (r *Room) characters() []*Character {
	characters := make([]*Character, 0, len(r.order))
	for _, id := range r.order {
		if c := r.participants[id]; c != nil {
			characters = append(characters, c)
		}
	}
	return characters
}

func (r *Room) aliveCharacters() []*Character {
	return util.Filter(r.characters(), func(c *Character) bool { return c.enabled })
}

func (r *Room) isModerator(userID string) bool {
	c, ok := r.participants[userID]
	return ok && c == nil && userID == r.leader
}

func (r *Room) findVoting(votingID string) *Voting {
	if r.phase == nil {
		return nil
	}
	v, _ := util.Find(r.phase.Votings(), func(v *Voting) bool { return v.ID == votingID })
	return v
}

func (r *Room) votingOpened(v *Voting) {
	slog.Info("投票を開始します", "id", r.ID, "voting", v.Name(), "options", len(v.options))
	r.emit(&VotingCreatedEvent{votingEvent{Voting: v}})
	if r.timer != nil && r.option.VotingTimeout > 0 {
		roomID, votingID, timeout := r.ID, v.ID, r.option.VotingTimeout
		r.after(func() { r.timer.Schedule(roomID, votingID, timeout) })
	}
}

func (r *Room) votingClosed(v *Voting) {
	r.emit(&VotingRemovedEvent{votingEvent{Voting: v}})
}

func (r *Room) logGame(format string, args ...any) {
	if r.gameLogger == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	r.after(func() { r.gameLogger.AppendLog(r.ID, line) })
}
