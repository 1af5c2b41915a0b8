package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/log"
)

const remoteName = "origin"

// Client runs repository operations through go-git.
type Client struct {
	// SSHDir is searched for identity files. Empty means ~/.ssh.
	SSHDir string
}

var _ checkout.Git = (*Client)(nil)

// New creates a client using the default SSH directory.
func New() *Client {
	return &Client{}
}

// CloneOrUpdate makes dir a current checkout of url.
//
// If dir already holds a repository it is fetched (all tags, pruning deleted
// refs), its default branch is checked out, hard reset to the remote
// tracking branch and pulled. Otherwise url is cloned into dir.
func (c *Client) CloneOrUpdate(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return c.update(ctx, dir)
	}
	return c.clone(ctx, url, dir)
}

func (c *Client) clone(ctx context.Context, url, dir string) error {
	auth, err := c.authFor(url)
	if err != nil {
		return err
	}

	done := log.FromContext(ctx).Command(dir, "git", "clone", url)
	start := time.Now()
	_, err = gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:        url,
		RemoteName: remoteName,
		Tags:       gogit.AllTags,
		Auth:       auth,
	})
	done(time.Since(start))
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

func (c *Client) update(ctx context.Context, dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("remote %s: %w", remoteName, err)
	}
	var url string
	if urls := remote.Config().URLs; len(urls) > 0 {
		url = urls[0]
	}
	auth, err := c.authFor(url)
	if err != nil {
		return err
	}

	l := log.FromContext(ctx)
	done := l.Command(dir, "git", "fetch", "--tags", "--prune", remoteName)
	start := time.Now()
	err = repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: remoteName,
		Tags:       gogit.AllTags,
		Prune:      true,
		Force:      true,
		Auth:       auth,
	})
	done(time.Since(start))
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}

	branch, ok := remoteDefaultBranch(repo)
	if !ok {
		l.Debug("no default branch on origin, keeping working tree", "dir", dir)
		return nil
	}

	if err := checkoutTracking(repo, branch); err != nil {
		return err
	}

	upstream, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	if err != nil {
		return fmt.Errorf("resolve %s/%s: %w", remoteName, branch, err)
	}
	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := w.Reset(&gogit.ResetOptions{Commit: upstream.Hash(), Mode: gogit.HardReset}); err != nil {
		return fmt.Errorf("reset to %s/%s: %w", remoteName, branch, err)
	}

	done = l.Command(dir, "git", "pull", remoteName, branch)
	start = time.Now()
	err = w.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Force:         true,
		Auth:          auth,
	})
	done(time.Since(start))
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

// checkoutTracking switches to the local branch tracking origin/<branch>,
// creating it when missing.
func checkoutTracking(repo *gogit.Repository, branch string) error {
	local := plumbing.NewBranchReferenceName(branch)
	if _, err := repo.Reference(local, false); err != nil {
		upstream, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
		if err != nil {
			return fmt.Errorf("resolve %s/%s: %w", remoteName, branch, err)
		}
		if err := repo.Storer.SetReference(plumbing.NewHashReference(local, upstream.Hash())); err != nil {
			return fmt.Errorf("create branch %s: %w", branch, err)
		}
		err = repo.CreateBranch(&config.Branch{Name: branch, Remote: remoteName, Merge: local})
		if err != nil && !errors.Is(err, gogit.ErrBranchExists) {
			return fmt.Errorf("track %s/%s: %w", remoteName, branch, err)
		}
	}

	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := w.Checkout(&gogit.CheckoutOptions{Branch: local, Force: true}); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return nil
}
