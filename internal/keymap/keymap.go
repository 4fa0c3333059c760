// Package keymap maintains a bidirectional mapping between opaque external
// keys and dense internal ids. Ids are assigned sequentially from zero in
// first-seen order and are stable for the lifetime of a Map: ids are never
// reused, so id-based lookups stay valid even after the owning node has
// been removed from the graph.
package keymap

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrUnknownKey reports a lookup for a key that was never inserted.
var ErrUnknownKey = errors.New("keymap: unknown key")

// ErrUnknownID reports a lookup for an id that was never assigned.
var ErrUnknownID = errors.New("keymap: unknown id")

// Map is the id arena. The comparable constraint is the equality/hash
// capability over keys; the hot path only ever touches dense ints.
type Map[K comparable] struct {
	ids  map[K]int
	keys []K
}

// New creates an empty Map.
func New[K comparable]() *Map[K] {
	return &Map[K]{ids: make(map[K]int)}
}

// LookupOrInsert returns the id for key, assigning the next sequential id
// if the key has not been seen before.
func (m *Map[K]) LookupOrInsert(key K) int {
	if id, ok := m.ids[key]; ok {
		return id
	}
	id := len(m.keys)
	m.ids[key] = id
	m.keys = append(m.keys, key)
	return id
}

// IDOf returns the id previously assigned to key.
func (m *Map[K]) IDOf(key K) (int, error) {
	id, ok := m.ids[key]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownKey, key)
	}
	return id, nil
}

// KeyOf returns the key that owns id.
func (m *Map[K]) KeyOf(id int) (K, error) {
	if id < 0 || id >= len(m.keys) {
		var zero K
		return zero, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return m.keys[id], nil
}

// Len returns the number of assigned ids.
func (m *Map[K]) Len() int {
	return len(m.keys)
}

// Clone returns an independent copy. Mutating either Map never affects
// the other.
func (m *Map[K]) Clone() *Map[K] {
	return &Map[K]{
		ids:  maps.Clone(m.ids),
		keys: slices.Clone(m.keys),
	}
}
