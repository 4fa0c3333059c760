package toposort

import "slices"

// readyQueue holds the ids of nodes whose dependencies are satisfied but
// that have not yet been surfaced to the caller. Ids are kept in the order
// they became ready; the Sorter is responsible for the ascending-id
// tie-break within a single batch, so the queue itself is a plain FIFO.
type readyQueue struct {
	ids []int
}

func (q *readyQueue) push(ids ...int) {
	q.ids = append(q.ids, ids...)
}

// drain removes and returns all queued ids atomically.
func (q *readyQueue) drain() []int {
	ids := q.ids
	q.ids = nil
	return ids
}

// pop removes and returns the front id.
func (q *readyQueue) pop() (int, bool) {
	if len(q.ids) == 0 {
		return 0, false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

func (q *readyQueue) clone() readyQueue {
	return readyQueue{ids: slices.Clone(q.ids)}
}
