package toposort

import "slices"

// graphStore is the dense node table: per-node record plus predecessor and
// successor adjacency, all indexed by the ids handed out by the key map.
// Adjacency is stored outside nodeInfo so that edge lists and node records
// can be mutated independently during removal cascades.
type graphStore struct {
	nodes []nodeInfo
	preds [][]int
	succs [][]int
}

// grow extends the table so that id is a valid index. Ids are dense and
// assigned sequentially, so this only ever appends a single slot.
func (g *graphStore) grow(id int) {
	for len(g.nodes) <= id {
		g.nodes = append(g.nodes, nodeInfo{state: statePending})
		g.preds = append(g.preds, nil)
		g.succs = append(g.succs, nil)
	}
}

// addEdge records "dependent depends on pred". Duplicate edges between the
// same pair are deduplicated; the return value reports whether the edge
// was new. A self-edge is recorded as given and rejected later by the
// cycle validator as a one-node cycle.
func (g *graphStore) addEdge(dependent, pred int) bool {
	if slices.Contains(g.preds[dependent], pred) {
		return false
	}
	g.preds[dependent] = append(g.preds[dependent], pred)
	g.succs[pred] = append(g.succs[pred], dependent)
	g.nodes[dependent].npred++
	return true
}

// satisfy treats node id as completed for dependency purposes: every
// successor's remaining-predecessor count drops by one. It returns the
// successors whose count reached zero; the caller decides whether they
// become ready (they may be mid-removal in the same batch).
func (g *graphStore) satisfy(id int) []int {
	var zeroed []int
	for _, succ := range g.succs[id] {
		g.nodes[succ].npred--
		if g.nodes[succ].npred == 0 {
			zeroed = append(zeroed, succ)
		}
	}
	return zeroed
}

// removeNode tombstones id: successors see the removal as a satisfied
// dependency, predecessors drop id from their successor lists, and the
// node's own adjacency is cleared. The id itself stays valid forever.
func (g *graphStore) removeNode(id int) []int {
	zeroed := g.satisfy(id)
	for _, pred := range g.preds[id] {
		if pred == id {
			continue // self-edge: own lists are cleared below
		}
		if i := slices.Index(g.succs[pred], id); i >= 0 {
			g.succs[pred] = slices.Delete(g.succs[pred], i, i+1)
		}
	}
	g.preds[id] = nil
	g.succs[id] = nil
	g.nodes[id].state = stateRemoved
	return zeroed
}

// clone returns a deep copy: the node table and every adjacency list are
// duplicated, never shared. Cost is O(n+m).
func (g *graphStore) clone() graphStore {
	c := graphStore{
		nodes: slices.Clone(g.nodes),
		preds: make([][]int, len(g.preds)),
		succs: make([][]int, len(g.succs)),
	}
	for i, p := range g.preds {
		c.preds[i] = slices.Clone(p)
	}
	for i, s := range g.succs {
		c.succs[i] = slices.Clone(s)
	}
	return c
}
