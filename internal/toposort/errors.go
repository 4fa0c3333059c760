package toposort

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for caller protocol violations. Every violation is
// detected before any state is mutated, so a failing call leaves the
// Sorter unchanged. Match with errors.Is.
var (
	// ErrMutateAfterPrepare reports an Add call on a prepared Sorter.
	ErrMutateAfterPrepare = errors.New("toposort: graph cannot be modified after prepare")

	// ErrAlreadyPrepared reports a second Prepare call.
	ErrAlreadyPrepared = errors.New("toposort: cannot prepare more than once")

	// ErrNotPrepared reports GetReady, Done, IsActive, or a clone-side
	// operation issued before Prepare succeeded.
	ErrNotPrepared = errors.New("toposort: prepare has not been called")

	// ErrNotProcessing reports Done on a node that was never surfaced by
	// GetReady, or was already completed or removed.
	ErrNotProcessing = errors.New("toposort: node is not processing")

	// ErrNodeDone reports Remove on a node that already completed.
	ErrNodeDone = errors.New("toposort: node is already done")
)

// CycleError is returned by Prepare when the declared edge set contains a
// cycle. Path is the full offending cycle in dependency direction,
// starting and ending at the same key.
//
// The Sorter stays editable after a CycleError: the cycle can be broken
// with Remove and Prepare retried.
type CycleError[K comparable] struct {
	Path []K
}

func (e *CycleError[K]) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return "toposort: nodes are in a cycle: " + strings.Join(parts, " -> ")
}
