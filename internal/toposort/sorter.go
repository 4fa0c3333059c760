package toposort

import (
	"fmt"
	"iter"
	"slices"

	"github.com/vk/depflow/internal/keymap"
)

// Phase is the coarse state of a Sorter.
type Phase int

const (
	// PhaseEditable allows Add; Prepare has not succeeded yet.
	PhaseEditable Phase = iota
	// PhaseActive is reached by a successful Prepare; nodes are being
	// surfaced and completed.
	PhaseActive
	// PhaseClosed is terminal: every node is Done or Removed.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseEditable:
		return "editable"
	case PhaseActive:
		return "active"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sorter drives a dependency graph to completion in topological order.
// Keys are opaque to the engine; they are interned into dense ids on
// first sight and all internal work happens on ids.
//
// A Sorter is not safe for concurrent use. Clone produces a fully
// independent instance at the same execution position; the original and
// the clone may then be driven on separate goroutines.
type Sorter[K comparable] struct {
	keys  *keymap.Map[K]
	store graphStore
	ready readyQueue

	// remaining counts nodes that are Pending, Ready, or Processing;
	// processing counts the Processing subset. Together with the node
	// table length these derive IsActive and Phase without scanning.
	remaining  int
	processing int
	prepared   bool
}

// New creates an empty Sorter in the editable phase.
func New[K comparable]() *Sorter[K] {
	return &Sorter[K]{keys: keymap.New[K]()}
}

// Add declares a node and its direct predecessors. Nodes named only as
// predecessors are created implicitly. Adding the same node again merges
// the predecessor sets; duplicate edges between the same pair are
// deduplicated. Valid only before Prepare. Removal is terminal, so a key
// that was removed can never be named again, on either side of an edge.
func (s *Sorter[K]) Add(key K, predecessors ...K) error {
	if s.prepared {
		return fmt.Errorf("%w: add %v", ErrMutateAfterPrepare, key)
	}
	if err := s.checkNotRemoved(key); err != nil {
		return err
	}
	for _, pk := range predecessors {
		if err := s.checkNotRemoved(pk); err != nil {
			return err
		}
	}
	id := s.intern(key)
	for _, pk := range predecessors {
		s.store.addEdge(id, s.intern(pk))
	}
	return nil
}

func (s *Sorter[K]) checkNotRemoved(key K) error {
	if id, err := s.keys.IDOf(key); err == nil && s.store.nodes[id].state == stateRemoved {
		return fmt.Errorf("%w: %v already removed", keymap.ErrUnknownID, key)
	}
	return nil
}

// intern maps key to its dense id, growing the node table for first-seen
// keys.
func (s *Sorter[K]) intern(key K) int {
	before := s.keys.Len()
	id := s.keys.LookupOrInsert(key)
	if s.keys.Len() > before {
		s.store.grow(id)
		s.remaining++
	}
	return id
}

// Prepare validates that the graph is acyclic and seeds the ready queue
// with every node that has no outstanding predecessors, in ascending-id
// order. It may be called exactly once; on a CycleError the Sorter stays
// editable so the cycle can be broken with Remove and Prepare retried.
func (s *Sorter[K]) Prepare() error {
	if s.prepared {
		return ErrAlreadyPrepared
	}
	if ids := s.store.findCycle(); ids != nil {
		path := make([]K, len(ids))
		for i, id := range ids {
			key, err := s.keys.KeyOf(id)
			if err != nil {
				return err
			}
			path[i] = key
		}
		return &CycleError[K]{Path: path}
	}
	s.prepared = true
	for id := range s.store.nodes {
		n := &s.store.nodes[id]
		if n.state == statePending && n.npred == 0 {
			n.state = stateReady
			s.ready.push(id)
		}
	}
	return nil
}

// GetReady drains the ready queue and returns the surfaced keys in queue
// order, transitioning each node to Processing. It never blocks; an empty
// result means the caller should finish in-flight work or check IsActive.
func (s *Sorter[K]) GetReady() ([]K, error) {
	if !s.prepared {
		return nil, fmt.Errorf("%w: get ready", ErrNotPrepared)
	}
	ids := s.ready.drain()
	out := make([]K, 0, len(ids))
	for _, id := range ids {
		// A node removed after it was queued must not surface.
		if s.store.nodes[id].state != stateReady {
			continue
		}
		s.store.nodes[id].state = stateProcessing
		s.processing++
		key, err := s.keys.KeyOf(id)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}

// Done marks surfaced nodes as completed and advances readiness of their
// successors. The batch is validated as a unit before any mutation: every
// key must name a node currently Processing, or the whole call fails with
// no effect. Successors becoming ready in the same call are enqueued once,
// in ascending-id order.
func (s *Sorter[K]) Done(keys ...K) error {
	if !s.prepared {
		return fmt.Errorf("%w: done", ErrNotPrepared)
	}
	ids := make([]int, len(keys))
	seen := make(map[int]struct{}, len(keys))
	for i, key := range keys {
		id, err := s.keys.IDOf(key)
		if err != nil {
			return err
		}
		if st := s.store.nodes[id].state; st != stateProcessing {
			return fmt.Errorf("%w: %v is %s", ErrNotProcessing, key, st)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %v appears twice in one batch", ErrNotProcessing, key)
		}
		seen[id] = struct{}{}
		ids[i] = id
	}

	var zeroed []int
	for _, id := range ids {
		s.store.nodes[id].state = stateDone
		s.remaining--
		s.processing--
		zeroed = append(zeroed, s.store.satisfy(id)...)
	}
	s.enqueueReady(zeroed)
	return nil
}

// Remove permanently removes nodes from the graph in any phase before
// Closed. Successors treat a removal exactly like a completion. The batch
// is validated as a unit: every key must name a node that is neither Done
// nor already Removed.
func (s *Sorter[K]) Remove(keys ...K) error {
	ids := make([]int, len(keys))
	seen := make(map[int]struct{}, len(keys))
	for i, key := range keys {
		id, err := s.keys.IDOf(key)
		if err != nil {
			return err
		}
		switch s.store.nodes[id].state {
		case stateRemoved:
			return fmt.Errorf("%w: %v already removed", keymap.ErrUnknownID, key)
		case stateDone:
			return fmt.Errorf("%w: %v", ErrNodeDone, key)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %v appears twice in one batch", keymap.ErrUnknownID, key)
		}
		seen[id] = struct{}{}
		ids[i] = id
	}

	var zeroed []int
	for _, id := range ids {
		if s.store.nodes[id].state == stateProcessing {
			s.processing--
		}
		s.remaining--
		zeroed = append(zeroed, s.store.removeNode(id)...)
	}
	s.enqueueReady(zeroed)
	return nil
}

// enqueueReady promotes candidate ids whose count hit zero during one
// batch. Candidates that were themselves removed in the same batch are
// skipped; survivors are enqueued in ascending-id order so that identical
// call sequences always surface identical orders. Before Prepare the
// queue is left alone: Prepare seeds it from the counts.
func (s *Sorter[K]) enqueueReady(zeroed []int) {
	if !s.prepared || len(zeroed) == 0 {
		return
	}
	slices.Sort(zeroed)
	for _, id := range zeroed {
		n := &s.store.nodes[id]
		if n.state == statePending && n.npred == 0 {
			n.state = stateReady
			s.ready.push(id)
		}
	}
}

// IsActive reports whether any node is still Pending, Ready, or
// Processing. Once it returns false the Sorter is closed for good.
func (s *Sorter[K]) IsActive() (bool, error) {
	if !s.prepared {
		return false, fmt.Errorf("%w: is active", ErrNotPrepared)
	}
	return s.remaining > 0, nil
}

// Len returns the total number of nodes ever added, removed ones included.
func (s *Sorter[K]) Len() int {
	return len(s.store.nodes)
}

// Phase returns the Sorter's coarse state.
func (s *Sorter[K]) Phase() Phase {
	switch {
	case !s.prepared:
		return PhaseEditable
	case s.remaining > 0:
		return PhaseActive
	default:
		return PhaseClosed
	}
}

// StaticOrder prepares the Sorter and returns a lazy topological sequence
// over all keys, driving the ready/done cycle internally. The sequence is
// single-use and consumes the Sorter: a Sorter given to StaticOrder should
// not be driven manually afterwards. Use a fresh instance or a Clone.
func (s *Sorter[K]) StaticOrder() (iter.Seq[K], error) {
	if err := s.Prepare(); err != nil {
		return nil, err
	}
	return func(yield func(K) bool) {
		for {
			id, ok := s.ready.pop()
			if !ok {
				return
			}
			if s.store.nodes[id].state != stateReady {
				continue
			}
			s.store.nodes[id].state = stateDone
			s.remaining--
			s.enqueueReady(s.store.satisfy(id))
			key, err := s.keys.KeyOf(id)
			if err != nil {
				return
			}
			if !yield(key) {
				return
			}
		}
	}, nil
}

// Clone returns an independent Sorter with identical topology and
// identical execution position: node states, remaining counts, ready
// queue, and key map are all duplicated wholesale, with no re-validation
// and no shared mutable state. Cost is O(n+m), cheap enough to clone a
// prepared Sorter once per replay.
func (s *Sorter[K]) Clone() *Sorter[K] {
	return &Sorter[K]{
		keys:       s.keys.Clone(),
		store:      s.store.clone(),
		ready:      s.ready.clone(),
		remaining:  s.remaining,
		processing: s.processing,
		prepared:   s.prepared,
	}
}
