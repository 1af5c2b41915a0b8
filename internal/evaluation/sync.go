package evaluation

import (
	"strings"

	"github.com/phlp/studeval/internal/state"
)

// Capture converts the tree to persisted node states keyed by qualified
// name. Leaves are always captured; inner nodes only when they carry a
// comment. logRefs maps qualified names to the last command log.
func (t *Tree) Capture(logRefs map[string]string) map[string]state.NodeState {
	out := make(map[string]state.NodeState)
	t.Walk(func(n *Node, _ int) {
		leaf := n.IsLeaf()
		if !leaf && strings.TrimSpace(n.comment) == "" {
			return
		}
		name := t.QualifiedName(n)
		ns := state.NodeState{Comment: n.comment}
		if leaf {
			defined := n.defined
			ns.AchievedPoints = n.points
			ns.AchievedPointsDefined = &defined
			ns.LastLogFile = logRefs[name]
			ns.Status = string(n.status)
		}
		out[name] = ns
	})
	return out
}

// Apply restores persisted node states onto the tree and refreshes all
// aggregates. Log references found in leaf states are copied into logRefs
// when it is non-nil. States for unknown nodes and unknown statuses are
// ignored.
func (t *Tree) Apply(states map[string]state.NodeState, logRefs map[string]string) {
	if len(states) == 0 {
		return
	}
	t.Walk(func(n *Node, _ int) {
		name := t.QualifiedName(n)
		ns, ok := states[name]
		if !ok {
			return
		}
		n.comment = ns.Comment
		if !n.IsLeaf() {
			return
		}
		n.points = clamp(ns.AchievedPoints, n.max)
		n.defined = ns.PointsDefined()
		if logRefs != nil && ns.LastLogFile != "" {
			logRefs[name] = ns.LastLogFile
		}
		if s, err := ParseStatus(ns.Status); err == nil {
			n.status = s
		}
	})
	t.RecomputeAll()
}
