package logic

import (
	"errors"
	"slices"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/aiwolfdial/werewolf-room-server/util"
	"github.com/oklog/ulid/v2"
)

var (
	ErrUnknownVoting  = errors.New("存在しない投票です")
	ErrUnknownOption  = errors.New("存在しない選択肢です")
	ErrNotEligible    = errors.New("投票する権限がありません")
	ErrVotingFinished = errors.New("投票は既に終了しています")
)

type VotingPolicy string

const (
	P_SINGLE_WINNER   VotingPolicy = "SINGLE_WINNER"
	P_MULTIPLE_WINNER VotingPolicy = "MULTIPLE_WINNER"
)

type VoteOption struct {
	LangID    string
	Vars      map[string]string
	Target    *Character
	DoNothing bool
}

func targetOption(c *Character) VoteOption {
	return VoteOption{
		LangID: "option-player",
		Vars:   map[string]string{"player": c.UserID},
		Target: c,
	}
}

var doNothingOption = VoteOption{LangID: "option-do-nothing", DoNothing: true}

// VotingRule is the behaviour table of a voting.
type VotingRule struct {
	Name   string
	Policy VotingPolicy
	// DoNothing appends the sentinel option; choosing it ends the voting
	// immediately without effect.
	DoNothing bool
	// PublicVotes lets every viewer see who voted for what; otherwise a voter
	// only sees their own ballot.
	PublicVotes bool
	CanView     func(room *Room, viewer *Character) bool
	CanVote     func(room *Room, voter *Character) bool
	// Execute applies a winning option. voters are the characters that chose it.
	Execute func(room *Room, option VoteOption, voters []*Character)
	// Finally runs once after the result was applied, whatever it was.
	Finally func(room *Room, result VotingResult)
}

type VotingResult struct {
	OptionIDs []int `json:"optionIds"`
	DoNothing bool  `json:"doNothing"`
}

type Voting struct {
	ID          string
	rule        *VotingRule
	options     []VoteOption
	doNothingID int
	votes       map[string]int
	voteOrder   []string
	runoffDepth int
	finished    bool
	result      *VotingResult
}

func newVoting(rule *VotingRule, options []VoteOption) *Voting {
	v := &Voting{
		ID:          ulid.Make().String(),
		rule:        rule,
		options:     slices.Clone(options),
		doNothingID: -1,
		votes:       make(map[string]int),
		voteOrder:   make([]string, 0),
	}
	if rule.DoNothing {
		v.doNothingID = len(v.options)
		v.options = append(v.options, doNothingOption)
	}
	return v
}

// NewTargetVoting offers every live participant accepted by candidate.
func NewTargetVoting(room *Room, rule *VotingRule, candidate func(c *Character) bool) *Voting {
	options := make([]VoteOption, 0)
	for _, c := range room.aliveCharacters() {
		if candidate == nil || candidate(c) {
			options = append(options, targetOption(c))
		}
	}
	return newVoting(rule, options)
}

// NewSubsetVoting offers exactly the given characters, e.g. for a runoff.
func NewSubsetVoting(rule *VotingRule, targets []*Character) *Voting {
	options := make([]VoteOption, 0, len(targets))
	for _, c := range targets {
		options = append(options, targetOption(c))
	}
	return newVoting(rule, options)
}

func NewChoiceVoting(rule *VotingRule, options []VoteOption) *Voting {
	return newVoting(rule, options)
}

func (v *Voting) Name() string {
	return v.rule.Name
}

func (v *Voting) Rule() *VotingRule {
	return v.rule
}

func (v *Voting) Options() []VoteOption {
	return slices.Clone(v.options)
}

func (v *Voting) Option(id int) (VoteOption, bool) {
	if id < 0 || id >= len(v.options) {
		return VoteOption{}, false
	}
	return v.options[id], true
}

func (v *Voting) IsFinished() bool {
	return v.finished
}

func (v *Voting) IsDoNothing(optionID int) bool {
	return v.doNothingID >= 0 && optionID == v.doNothingID
}

func (v *Voting) VoteOf(userID string) (int, bool) {
	id, ok := v.votes[userID]
	return id, ok
}

func (v *Voting) CanView(room *Room, viewer *Character) bool {
	return viewer != nil && (v.rule.CanView == nil || v.rule.CanView(room, viewer))
}

func (v *Voting) CanVote(room *Room, voter *Character) bool {
	return voter != nil && v.rule.CanVote != nil && v.rule.CanVote(room, voter)
}

// Cast validates before it mutates; a rejected cast leaves v untouched.
func (v *Voting) Cast(room *Room, voter *Character, optionID int) error {
	if v.finished {
		return ErrVotingFinished
	}
	if !v.CanVote(room, voter) {
		return ErrNotEligible
	}
	if _, ok := v.Option(optionID); !ok {
		return ErrUnknownOption
	}
	if _, voted := v.votes[voter.UserID]; !voted {
		v.voteOrder = append(v.voteOrder, voter.UserID)
	}
	v.votes[voter.UserID] = optionID
	return nil
}

func (v *Voting) doNothingSelected() bool {
	if v.doNothingID < 0 {
		return false
	}
	for _, id := range v.votes {
		if id == v.doNothingID {
			return true
		}
	}
	return false
}

// MissingVotes counts eligible voters without a ballot. A do-nothing ballot
// drops it to zero.
func (v *Voting) MissingVotes(room *Room) int {
	if v.doNothingSelected() {
		return 0
	}
	var missing int
	for _, c := range room.characters() {
		if !v.CanVote(room, c) {
			continue
		}
		if _, voted := v.votes[c.UserID]; !voted {
			missing++
		}
	}
	return missing
}

// ResultIDs are the option ids tied for the plurality, ascending.
func (v *Voting) ResultIDs() []int {
	ballots := make([]int, 0, len(v.votes))
	for _, userID := range v.voteOrder {
		ballots = append(ballots, v.votes[userID])
	}
	return util.CountCandidates(ballots)
}

// Voters returns the characters that chose optionID in the order they voted.
func (v *Voting) Voters(room *Room, optionID int) []*Character {
	voters := make([]*Character, 0)
	for _, userID := range v.voteOrder {
		if v.votes[userID] != optionID {
			continue
		}
		if c := room.participants[userID]; c != nil {
			voters = append(voters, c)
		}
	}
	return voters
}

// Finish closes the voting. Calling it again returns the same result and
// false.
func (v *Voting) Finish() (VotingResult, bool) {
	if v.finished {
		return *v.result, false
	}
	v.finished = true
	v.result = &VotingResult{
		OptionIDs: v.ResultIDs(),
		DoNothing: v.doNothingSelected(),
	}
	return *v.result, true
}

func (v *Voting) info(room *Room, viewer *Character, moderator bool) model.VotingInfo {
	info := model.VotingInfo{
		ID:           v.ID,
		Name:         v.rule.Name,
		Started:      !v.finished,
		CanVote:      v.CanVote(room, viewer),
		MissingVotes: v.MissingVotes(room),
		Options:      make([]model.OptionInfo, 0, len(v.options)),
	}
	if viewer != nil {
		if id, ok := v.votes[viewer.UserID]; ok {
			info.OwnVote = &id
		}
	}
	for id, option := range v.options {
		optionInfo := model.OptionInfo{
			ID:     id,
			LangID: option.LangID,
			Vars:   option.Vars,
		}
		if v.rule.PublicVotes || moderator {
			for _, c := range v.Voters(room, id) {
				optionInfo.Users = append(optionInfo.Users, c.UserID)
			}
		}
		info.Options = append(info.Options, optionInfo)
	}
	return info
}
