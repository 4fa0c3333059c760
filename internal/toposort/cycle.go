package toposort

// findCycle runs the one-shot depth-first cycle check over the dependency
// relation. Classic three-color marking: nodes are unvisited, in the
// current recursion stack (grey), or fully finished (black). Hitting a
// grey node means a back-edge; the offending cycle is reconstructed from
// the explicit stack so diagnostics can name every node on it.
//
// Returns the cycle as ids, starting and ending at the same node, or nil
// if the graph is acyclic. Runs in O(n+m).
func (g *graphStore) findCycle() []int {
	const (
		white = iota // unvisited
		grey         // in progress
		black        // finished
	)

	color := make([]uint8, len(g.nodes))
	stackPos := make([]int, len(g.nodes))
	var stack []int
	var cycle []int

	var visit func(id int) bool
	visit = func(id int) bool {
		color[id] = grey
		stackPos[id] = len(stack)
		stack = append(stack, id)

		for _, pred := range g.preds[id] {
			switch color[pred] {
			case grey:
				// Back-edge: everything from pred's stack position to the
				// top, closed with pred again, is the cycle.
				cycle = append(cycle, stack[stackPos[pred]:]...)
				cycle = append(cycle, pred)
				return true
			case white:
				if visit(pred) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for id := range g.nodes {
		if color[id] != white || g.nodes[id].state == stateRemoved {
			continue
		}
		if visit(id) {
			return cycle
		}
	}
	return nil
}
