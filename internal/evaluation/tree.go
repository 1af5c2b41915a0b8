package evaluation

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/phlp/studeval/internal/config"
)

// Tree is an arena of evaluation nodes built from sheet categories.
// It is not safe for concurrent use.
type Tree struct {
	nodes     map[uuid.UUID]*Node
	roots     []uuid.UUID
	qualified map[string]uuid.UUID
}

// Build creates a tree from sheet categories. All nodes start pending with
// no points.
func Build(categories []config.Category) *Tree {
	t := &Tree{
		nodes:     make(map[uuid.UUID]*Node),
		qualified: make(map[string]uuid.UUID),
	}
	for _, c := range categories {
		t.roots = append(t.roots, t.add(c, uuid.Nil, ""))
	}
	return t
}

func (t *Tree) add(c config.Category, parent uuid.UUID, prefix string) uuid.UUID {
	n := &Node{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(c.Name),
		Commands:      c.Commands,
		ConfigComment: c.Comment,
		Pseudo:        c.Pseudo,
		parent:        parent,
		status:        StatusPending,
	}
	t.nodes[n.ID] = n

	qn := n.Name
	if prefix != "" {
		qn = prefix + "/" + n.Name
	}
	t.qualified[qn] = n.ID

	for _, child := range c.Children {
		n.children = append(n.children, t.add(child, n.ID, qn))
	}
	if n.IsLeaf() {
		n.max = math.Max(0, c.MaxPoints)
	} else {
		for _, id := range n.children {
			n.max += t.nodes[id].max
		}
	}
	return n.ID
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id uuid.UUID) *Node {
	return t.nodes[id]
}

// Roots returns the top-level nodes in sheet order.
func (t *Tree) Roots() []*Node {
	return t.resolve(t.roots)
}

// Children returns the children of n in sheet order.
func (t *Tree) Children(n *Node) []*Node {
	return t.resolve(n.children)
}

// Parent returns the parent of n, or nil for roots.
func (t *Tree) Parent(n *Node) *Node {
	return t.nodes[n.parent]
}

func (t *Tree) resolve(ids []uuid.UUID) []*Node {
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = t.nodes[id]
	}
	return out
}

// QualifiedName returns the slash separated path from the root, e.g.
// "Tests/Unit".
func (t *Tree) QualifiedName(n *Node) string {
	if p := t.Parent(n); p != nil {
		return t.QualifiedName(p) + "/" + n.Name
	}
	return n.Name
}

// Find looks up a node by qualified name.
func (t *Tree) Find(qualifiedName string) (*Node, bool) {
	id, ok := t.qualified[qualifiedName]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

// Walk visits all nodes depth-first in sheet order.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var walk func(ids []uuid.UUID, depth int)
	walk = func(ids []uuid.UUID, depth int) {
		for _, id := range ids {
			n := t.nodes[id]
			fn(n, depth)
			walk(n.children, depth+1)
		}
	}
	walk(t.roots, 0)
}

// Leaves returns all leaf nodes in sheet order.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	t.Walk(func(n *Node, _ int) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
	})
	return leaves
}

// QualifiedNames returns the qualified names of all nodes in sheet order.
func (t *Tree) QualifiedNames() []string {
	var names []string
	t.Walk(func(n *Node, _ int) {
		names = append(names, t.QualifiedName(n))
	})
	return names
}

// Totals returns the achieved and maximum points over all roots.
func (t *Tree) Totals() (achieved, maxPoints float64) {
	for _, n := range t.Roots() {
		achieved += n.points
		maxPoints += n.max
	}
	return achieved, maxPoints
}

// SetPoints sets the points of a leaf, clamped to [0, max], and marks them
// defined. It is a no-op for inner nodes.
func (t *Tree) SetPoints(n *Node, points float64) {
	if !n.IsLeaf() {
		return
	}
	n.points = clamp(points, n.max)
	n.defined = true
	t.Recompute(n.ID)
}

// ClearPoints resets the points of n and all its descendants to zero and
// undefined.
func (t *Tree) ClearPoints(n *Node) {
	t.eachLeaf(n, func(leaf *Node) {
		leaf.points = 0
		leaf.defined = false
	})
	t.Recompute(n.ID)
}

// MarkFull awards all points to n and its descendants.
func (t *Tree) MarkFull(n *Node) {
	t.eachLeaf(n, func(leaf *Node) {
		leaf.points = leaf.max
		leaf.defined = true
	})
	t.Recompute(n.ID)
}

// SetStatus sets the status of a leaf. Inner node statuses are derived.
func (t *Tree) SetStatus(n *Node, s Status) {
	if !n.IsLeaf() {
		return
	}
	if s == "" {
		s = StatusPending
	}
	n.status = s
	t.Recompute(n.ID)
}

// SetComment sets the grader's comment on any node.
func (t *Tree) SetComment(n *Node, comment string) {
	n.comment = comment
}

// Reset returns every node to its initial state: no comment, no points,
// pending.
func (t *Tree) Reset() {
	for _, n := range t.nodes {
		n.comment = ""
		n.points = 0
		n.defined = false
		n.status = StatusPending
	}
	t.RecomputeAll()
}

// Recompute refreshes aggregated points and status from the node with the
// given id up to its root.
func (t *Tree) Recompute(id uuid.UUID) {
	for n := t.nodes[id]; n != nil; n = t.nodes[n.parent] {
		t.refresh(n)
	}
}

// RecomputeAll refreshes every inner node bottom-up.
func (t *Tree) RecomputeAll() {
	var post func(ids []uuid.UUID)
	post = func(ids []uuid.UUID) {
		for _, id := range ids {
			n := t.nodes[id]
			post(n.children)
			t.refresh(n)
		}
	}
	post(t.roots)
}

func (t *Tree) refresh(n *Node) {
	if n.IsLeaf() {
		return
	}
	n.points = 0
	n.defined = false
	statuses := make([]Status, 0, len(n.children))
	for _, c := range t.Children(n) {
		n.points += c.points
		n.defined = n.defined || c.defined
		statuses = append(statuses, c.status)
	}
	n.status = aggregate(statuses)
}

func (t *Tree) eachLeaf(n *Node, fn func(*Node)) {
	if n.IsLeaf() {
		fn(n)
		return
	}
	for _, c := range t.Children(n) {
		t.eachLeaf(c, fn)
	}
}

func clamp(points, limit float64) float64 {
	return math.Max(0, math.Min(points, limit))
}
