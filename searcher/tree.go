package searcher

import "hanabi/game"

// NodeID indexes a node in the tree arena.
type NodeID int

const rootID NodeID = 0
const noNode NodeID = -1

type node struct {
	move     game.Move // Move leading to this node
	parent   NodeID
	children []NodeID
	visits   int
	value    float64 // Sum of rewards, unused at the root
}

// tree stores nodes in one slice so a search allocates little and can be
// reset without freeing.
type tree struct {
	nodes []node
}

func newTree(root game.Move) *tree {
	t := &tree{}
	t.reset(root)
	return t
}

func (t *tree) reset(root game.Move) {
	for i := range t.nodes {
		t.nodes[i].children = t.nodes[i].children[:0]
	}
	t.nodes = t.nodes[:0]
	t.nodes = append(t.nodes, node{move: root, parent: noNode})
}

// add inserts a zero-visit child under parent.
func (t *tree) add(parent NodeID, move game.Move) NodeID {
	id := NodeID(len(t.nodes))
	if cap(t.nodes) > len(t.nodes) {
		// Reuse the children buffer left behind by a reset
		t.nodes = t.nodes[:id+1]
		children := t.nodes[id].children[:0]
		t.nodes[id] = node{move: move, parent: parent, children: children}
	} else {
		t.nodes = append(t.nodes, node{move: move, parent: parent})
	}
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// get returns the node with id. The pointer is invalidated by add.
func (t *tree) get(id NodeID) *node {
	return &t.nodes[id]
}

func (t *tree) child(parent NodeID, move game.Move) (NodeID, bool) {
	for _, id := range t.nodes[parent].children {
		if t.nodes[id].move == move {
			return id, true
		}
	}
	return noNode, false
}

func (t *tree) isRoot(id NodeID) bool {
	return id == rootID
}

func (t *tree) size() int {
	return len(t.nodes)
}

// mostVisited returns the first child of id with the most visits.
func (t *tree) mostVisited(id NodeID) (NodeID, bool) {
	best, bestVisits := noNode, -1
	for _, child := range t.nodes[id].children {
		if v := t.nodes[child].visits; v > bestVisits {
			best, bestVisits = child, v
		}
	}
	return best, best != noNode
}
