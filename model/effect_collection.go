package model

import (
	"iter"
	"reflect"
	"slices"
	"sync"
)

// EffectEqualer lets an effect decide which already attached effect it
// replaces on Add.
type EffectEqualer interface {
	EqualEffect(other any) bool
}

// EffectCollection is a thread-safe ordered multiset of effects. Readers share
// the lock, writers hold it exclusively; sync.RWMutex blocks new readers while a
// writer waits. Added/removed hooks run after the lock is released so a hook
// may mutate the same collection.
type EffectCollection[E any] struct {
	mu        sync.RWMutex
	effects   []E
	onAdded   []func(E)
	onRemoved []func(E)
}

func NewEffectCollection[E any]() *EffectCollection[E] {
	return &EffectCollection[E]{
		effects: make([]E, 0),
	}
}

func (c *EffectCollection[E]) OnAdded(fn func(E)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAdded = append(c.onAdded, fn)
}

func (c *EffectCollection[E]) OnRemoved(fn func(E)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRemoved = append(c.onRemoved, fn)
}

// Add replaces an equal effect in place or appends effect.
func (c *EffectCollection[E]) Add(effect E) {
	c.mu.Lock()
	replaced := false
	for i, e := range c.effects {
		if effectEqual(e, effect) {
			c.effects[i] = effect
			replaced = true
			break
		}
	}
	if !replaced {
		c.effects = append(c.effects, effect)
	}
	hooks := slices.Clone(c.onAdded)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook(effect)
	}
}

// Remove removes the first effect equal to effect.
func (c *EffectCollection[E]) Remove(effect E) bool {
	c.mu.Lock()
	idx := -1
	for i, e := range c.effects {
		if effectEqual(e, effect) {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	removed := c.effects[idx]
	c.effects = append(c.effects[:idx:idx], c.effects[idx+1:]...)
	hooks := slices.Clone(c.onRemoved)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook(removed)
	}
	return true
}

func (c *EffectCollection[E]) Contains(effect E) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.effects {
		if effectEqual(e, effect) {
			return true
		}
	}
	return false
}

// All returns a snapshot of every attached effect in insertion order.
func (c *EffectCollection[E]) All() []E {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.effects)
}

func (c *EffectCollection[E]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.effects)
}

// Clear drops every effect without firing removed hooks.
func (c *EffectCollection[E]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.effects = make([]E, 0)
}

// RemoveAll removes every effect assignable to T and returns how many were
// removed. The removed hook fires once per removed effect.
func RemoveAll[T any, E any](c *EffectCollection[E]) int {
	c.mu.Lock()
	kept := make([]E, 0, len(c.effects))
	removed := make([]E, 0)
	for _, e := range c.effects {
		if _, ok := any(e).(T); ok {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	c.effects = kept
	hooks := slices.Clone(c.onRemoved)
	c.mu.Unlock()

	for _, e := range removed {
		for _, hook := range hooks {
			hook(e)
		}
	}
	return len(removed)
}

// Get returns the first effect assignable to T.
func Get[T any, E any](c *EffectCollection[E]) (T, bool) {
	return GetWhere[T](c, func(T) bool { return true })
}

func GetWhere[T any, E any](c *EffectCollection[E], predicate func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.effects {
		if t, ok := any(e).(T); ok && predicate(t) {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// GetAll lazily yields every effect assignable to T in insertion order. The
// sequence walks a snapshot taken when iteration starts.
func GetAll[T any, E any](c *EffectCollection[E]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range c.All() {
			if t, ok := any(e).(T); ok {
				if !yield(t) {
					return
				}
			}
		}
	}
}

func Has[T any, E any](c *EffectCollection[E]) bool {
	_, ok := Get[T](c)
	return ok
}

func effectEqual[E any](a, b E) bool {
	if eq, ok := any(a).(EffectEqualer); ok {
		return eq.EqualEffect(b)
	}
	va, vb := any(a), any(b)
	if va == nil || vb == nil {
		return va == vb
	}
	ta := reflect.TypeOf(va)
	if ta != reflect.TypeOf(vb) || !ta.Comparable() {
		return false
	}
	return va == vb
}
