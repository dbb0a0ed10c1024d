package model

type KillState string

const (
	K_ALIVE         KillState = "ALIVE"
	K_MARKED_KILL   KillState = "MARKED_KILL"
	K_ABOUT_TO_KILL KillState = "ABOUT_TO_KILL"
	K_BEFORE_KILL   KillState = "BEFORE_KILL"
	K_KILLED        KillState = "KILLED"
)

var killStateOrder = map[KillState]int{
	K_ALIVE:         0,
	K_MARKED_KILL:   1,
	K_ABOUT_TO_KILL: 2,
	K_BEFORE_KILL:   3,
	K_KILLED:        4,
}

func (k KillState) String() string {
	return string(k)
}

// Next is the only state k may move to, or k itself for K_KILLED.
func (k KillState) Next() KillState {
	switch k {
	case K_ALIVE:
		return K_MARKED_KILL
	case K_MARKED_KILL:
		return K_ABOUT_TO_KILL
	case K_ABOUT_TO_KILL:
		return K_BEFORE_KILL
	}
	return K_KILLED
}

func (k KillState) Before(other KillState) bool {
	return killStateOrder[k] < killStateOrder[other]
}
