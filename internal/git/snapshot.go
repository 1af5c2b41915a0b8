package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/log"
)

// CheckoutCommit points the snapshot branch at id and forces the working
// tree to it. An existing snapshot branch is discarded first.
func (c *Client) CheckoutCommit(ctx context.Context, dir, id string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	hash, err := parseHash(id)
	if err != nil {
		return err
	}
	if _, err := repo.CommitObject(hash); err != nil {
		return fmt.Errorf("commit %s: %w", id, err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	branch := plumbing.NewBranchReferenceName(checkout.SnapshotBranch)
	if err := repo.Storer.RemoveReference(branch); err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("delete %s: %w", checkout.SnapshotBranch, err)
	}

	done := log.FromContext(ctx).Command(dir, "git", "checkout", "-B", checkout.SnapshotBranch, id)
	start := time.Now()
	err = w.Checkout(&gogit.CheckoutOptions{
		Hash:   hash,
		Branch: branch,
		Create: true,
		Force:  true,
	})
	done(time.Since(start))
	if err != nil {
		return fmt.Errorf("checkout %s: %w", id, err)
	}
	return nil
}

// WalkCommits calls fn for every commit reachable from from, newest
// committer time first, until fn returns false.
func (c *Client) WalkCommits(ctx context.Context, dir, from string, fn func(checkout.Commit) bool) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	hash, err := parseHash(from)
	if err != nil {
		return err
	}

	iter, err := repo.Log(&gogit.LogOptions{From: hash, Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return fmt.Errorf("log %s: %w", from, err)
	}
	defer iter.Close()

	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(toCommit(commit)) {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return err
	}
	return nil
}

func parseHash(id string) (plumbing.Hash, error) {
	id = strings.TrimSpace(id)
	if !plumbing.IsHash(id) {
		return plumbing.ZeroHash, fmt.Errorf("invalid commit id %q", id)
	}
	return plumbing.NewHash(id), nil
}
