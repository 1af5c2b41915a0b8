package checkout

import (
	"context"
	"errors"
	"time"
)

// Errors returned by Git implementations and the Resolver.
var (
	ErrTagNotFound            = errors.New("tag not found")
	ErrNoDefaultBranch        = errors.New("no default branch found")
	ErrNoCommitBeforeDeadline = errors.New("no commit on or before the deadline")
)

// SnapshotBranch is the local branch a resolved commit is checked out on.
const SnapshotBranch = "evaluation-snapshot"

// Commit is the subset of commit metadata the resolver needs.
type Commit struct {
	ID   string
	Time time.Time // committer time
}

// Git is the narrow set of repository operations used during preparation.
// All paths refer to a working tree on disk.
type Git interface {
	// CloneOrUpdate clones url into dir, or, if dir already is a checkout,
	// fetches and resets the default branch to its remote state.
	CloneOrUpdate(ctx context.Context, url, dir string) error
	// TagCommit resolves a tag to the commit it (eventually) points at.
	TagCommit(ctx context.Context, dir, tag string) (Commit, error)
	// CheckoutCommit force-checks out id on SnapshotBranch.
	CheckoutCommit(ctx context.Context, dir, id string) error
	// Head returns the commit id HEAD currently resolves to.
	Head(ctx context.Context, dir string) (string, error)
	// DefaultBranchHead returns the tip of the remote default branch.
	DefaultBranchHead(ctx context.Context, dir string) (string, error)
	// WalkCommits visits the history reachable from id, newest first,
	// until fn returns false.
	WalkCommits(ctx context.Context, dir, from string, fn func(Commit) bool) error
}
