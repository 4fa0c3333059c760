package toposort

// nodeState is the lifecycle state of a single node.
//
// Transitions: Pending -> Ready -> Processing -> Done, with Removed
// reachable from any non-terminal state. Done and Removed are terminal.
type nodeState uint8

const (
	statePending nodeState = iota
	stateReady
	stateProcessing
	stateDone
	stateRemoved
)

func (s nodeState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateReady:
		return "ready"
	case stateProcessing:
		return "processing"
	case stateDone:
		return "done"
	case stateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// nodeInfo is the per-node record: lifecycle state plus the number of
// predecessors that are neither Done nor Removed. Adjacency lives in
// graphStore so that predecessor and successor lists can be borrowed
// independently of the node table.
type nodeInfo struct {
	state nodeState
	npred int
}
