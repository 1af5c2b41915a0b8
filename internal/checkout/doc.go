// Package checkout decides which commit of a student repository gets graded.
//
// A [Resolver] picks exactly one of three strategies per repository, in
// priority order:
//
//   - [ModeTag]: the configured tag, unless its commit is newer than the
//     deadline (then the deadline strategy wins)
//   - [ModeDeadline]: the newest commit on the default branch that is not
//     after the end of the deadline day, in the local time zone
//   - [ModeHead]: whatever HEAD points to after the repository was updated
//
// The chosen strategy and the resolved commit id are returned as an [Info]
// and persisted in the evaluation state file using [Strategy.Encode].
//
// Object-level git work is delegated to a [Git] implementation; the
// production one lives in internal/git and is backed by go-git.
package checkout
