// Package evaluation models the grading tree of one repository.
//
// The tree mirrors the category hierarchy of an evaluation sheet. Leaves
// carry points (clamped to their maximum), a status and optionally the
// commands that check them. Inner nodes aggregate: their points and
// maximum are the sums over their children and their status folds the
// children's with the precedence failed, running, pending, cancelled,
// success.
//
// Nodes are addressed by id within a Tree and by qualified name
// ("Parent/Child") in persisted state.
package evaluation
