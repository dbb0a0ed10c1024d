package logic

import (
	"github.com/aiwolfdial/werewolf-room-server/model"
)

// Effect is a fact attached to a character, to the room or to a phase.
type Effect interface {
	EffectID() string
}

// TagEffect contributes client hints to a character's tag list. owner is the
// character being rendered; for room-level effects it is the character the
// tags are computed for.
type TagEffect interface {
	Effect
	SeenTags(room *Room, owner *Character, viewer *Character) []string
}

// BeforeKillEffect runs when its owner moves from ABOUT_TO_KILL to BEFORE_KILL.
type BeforeKillEffect interface {
	Effect
	BeforeKill(room *Room, owner *Character)
}

// KillInfo explains a pending or completed kill. Only this package can
// implement it; authored content uses NewKillInfo.
type KillInfo interface {
	TagEffect
	Cause() string
	NotificationID() string
	killInfo()
}

const (
	CauseWerewolf = "werewolf"
	CauseVillage  = "village"
	CauseLoved    = "loved"
	CauseHunter   = "hunter"
)

type killInfo struct {
	cause string
	group string
}

func NewKillInfo(cause string, group string) KillInfo {
	if group == "" {
		group = cause
	}
	return killInfo{cause: cause, group: group}
}

func WerewolfKill() KillInfo { return NewKillInfo(CauseWerewolf, "") }
func VillageKill() KillInfo  { return NewKillInfo(CauseVillage, "") }
func LovedKill() KillInfo    { return NewKillInfo(CauseLoved, "") }
func HunterKill() KillInfo   { return NewKillInfo(CauseHunter, "") }

func (k killInfo) EffectID() string       { return "kill-info" }
func (k killInfo) Cause() string          { return k.cause }
func (k killInfo) NotificationID() string { return k.group }
func (k killInfo) killInfo()              {}

func (k killInfo) SeenTags(room *Room, owner *Character, viewer *Character) []string {
	if owner.KillState() != model.K_KILLED {
		return nil
	}
	return []string{"killed-by-" + k.cause}
}

// LovedEffect binds its owner to Partner: when the owner dies the partner is
// marked for death too.
type LovedEffect struct {
	Partner *Character
}

func (e *LovedEffect) EffectID() string { return "loved" }

func (e *LovedEffect) EqualEffect(other any) bool {
	o, ok := other.(*LovedEffect)
	return ok && o.Partner == e.Partner
}

func (e *LovedEffect) SeenTags(room *Room, owner *Character, viewer *Character) []string {
	if viewer == owner || viewer == e.Partner {
		return []string{"loved"}
	}
	return nil
}

func (e *LovedEffect) BeforeKill(room *Room, owner *Character) {
	if e.Partner.MarkKill(LovedKill()) {
		room.logGame("%d,loved,%s,%s", room.round, owner.UserID, e.Partner.UserID)
	}
}

// GuardedEffect protects its owner from the werewolves for one night.
type GuardedEffect struct {
	By *Character
}

func (e *GuardedEffect) EffectID() string { return "guarded" }

func (e *GuardedEffect) SeenTags(room *Room, owner *Character, viewer *Character) []string {
	if viewer != nil && viewer == e.By {
		return []string{"guarded"}
	}
	return nil
}

// LastGuardEffect remembers the bodyguard's previous target.
type LastGuardEffect struct {
	Target *Character
}

func (e *LastGuardEffect) EffectID() string { return "last-guard" }

func (e *LastGuardEffect) EqualEffect(other any) bool {
	_, ok := other.(*LastGuardEffect)
	return ok
}

// RevealedEffect discloses its owner's role to Viewer, or to everyone when
// Viewer is nil.
type RevealedEffect struct {
	Viewer *Character
}

func (e *RevealedEffect) EffectID() string { return "revealed" }

func (e *RevealedEffect) EqualEffect(other any) bool {
	o, ok := other.(*RevealedEffect)
	return ok && o.Viewer == e.Viewer
}

func (e *RevealedEffect) SeenTags(room *Room, owner *Character, viewer *Character) []string {
	if viewer != nil && viewer == e.Viewer {
		return []string{"inspected"}
	}
	return nil
}

type AmorPickEffect struct {
	Target *Character
}

func (e *AmorPickEffect) EffectID() string { return "amor-pick" }

func (e *AmorPickEffect) EqualEffect(other any) bool {
	o, ok := other.(*AmorPickEffect)
	return ok && o.Target == e.Target
}

type AmorDoneEffect struct{}

func (e *AmorDoneEffect) EffectID() string { return "amor-done" }

type HunterShotEffect struct{}

func (e *HunterShotEffect) EffectID() string { return "hunter-shot" }

// MajorEffect is a room-level effect naming the current major.
type MajorEffect struct {
	Major *Character
}

func (e *MajorEffect) EffectID() string { return "major" }

func (e *MajorEffect) EqualEffect(other any) bool {
	_, ok := other.(*MajorEffect)
	return ok
}

func (e *MajorEffect) SeenTags(room *Room, owner *Character, viewer *Character) []string {
	if owner == e.Major {
		return []string{"major"}
	}
	return nil
}
