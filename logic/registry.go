package logic

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

var (
	ErrUnknownRole  = errors.New("不明な役職名があります")
	ErrUnknownPhase = errors.New("不明なフェーズ名があります")
)

// RoleKind is the behaviour table shared by every character of one role.
// Nil hooks fall back to the defaults of Character.
type RoleKind struct {
	Role model.Role
	// SameFaction may override the team comparison; REL_UNKNOWN defers to it.
	SameFaction func(self *Character, other *Character) model.Relation
	// View may disguise or reveal self to viewer. ok=false defers to the
	// default visibility rules.
	View  func(self *Character, viewer *Character) (seen *Character, ok bool)
	Setup func(room *Room, self *Character)
}

type Registry struct {
	roles  map[string]*RoleKind
	phases map[string]func() Phase
}

func NewRegistry() *Registry {
	return &Registry{
		roles:  make(map[string]*RoleKind),
		phases: make(map[string]func() Phase),
	}
}

func (r *Registry) RegisterRole(kind *RoleKind) {
	r.roles[kind.Role.Name] = kind
}

// RegisterPhase stores a constructor; every rotation slot gets a fresh phase.
func (r *Registry) RegisterPhase(name string, factory func() Phase) {
	r.phases[name] = factory
}

func (r *Registry) Role(name string) (*RoleKind, error) {
	kind, ok := r.roles[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownRole)
	}
	return kind, nil
}

func (r *Registry) Phase(name string) (Phase, error) {
	factory, ok := r.phases[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownPhase)
	}
	return factory(), nil
}

func (r *Registry) RoleNames() []string {
	names := make([]string, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
