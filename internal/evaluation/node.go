package evaluation

import "github.com/google/uuid"

// Node is one category of the evaluation tree. Configuration fields are
// fixed at build time; evaluation state changes only through the Tree so
// aggregates stay consistent.
type Node struct {
	ID            uuid.UUID
	Name          string
	Commands      []string
	ConfigComment string
	Pseudo        bool

	parent   uuid.UUID
	children []uuid.UUID
	max      float64
	points   float64
	defined  bool
	status   Status
	comment  string
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// IsRoot reports whether the node is a top-level category.
func (n *Node) IsRoot() bool { return n.parent == uuid.Nil }

// Max returns the maximum points. For inner nodes this is the sum over
// all children.
func (n *Node) Max() float64 { return n.max }

// Points returns the achieved points. For inner nodes this is the sum over
// all children.
func (n *Node) Points() float64 { return n.points }

// Status returns the node status. Inner nodes aggregate their children.
func (n *Node) Status() Status { return n.status }

// Comment returns the grader's comment.
func (n *Node) Comment() string { return n.comment }

// PointsDefined reports whether points were explicitly set. An inner node
// is defined when any child is.
func (n *Node) PointsDefined() bool { return n.defined }

// FullyAwarded reports whether the node has all its points.
func (n *Node) FullyAwarded() bool { return n.points == n.max }

// PartiallyAwarded reports whether some but not all points were achieved.
func (n *Node) PartiallyAwarded() bool { return n.points > 0 && n.points < n.max }

// Ratio returns achieved over max points, 0 when max is 0.
func (n *Node) Ratio() float64 {
	if n.max == 0 {
		return 0
	}
	return n.points / n.max
}
