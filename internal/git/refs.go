package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/phlp/studeval/internal/checkout"
)

// TagCommit resolves tag (short name or full ref) and peels annotated tags to
// the commit they point at.
func (c *Client) TagCommit(_ context.Context, dir, tag string) (checkout.Commit, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return checkout.Commit{}, fmt.Errorf("open repository: %w", err)
	}

	name := strings.TrimPrefix(strings.TrimSpace(tag), "refs/tags/")
	ref, err := repo.Tag(name)
	if err != nil {
		if errors.Is(err, gogit.ErrTagNotFound) {
			return checkout.Commit{}, fmt.Errorf("%w: %s", checkout.ErrTagNotFound, name)
		}
		return checkout.Commit{}, fmt.Errorf("resolve tag %s: %w", name, err)
	}

	commit, err := peel(repo, ref.Hash())
	if err != nil {
		return checkout.Commit{}, fmt.Errorf("peel tag %s: %w", name, err)
	}
	return toCommit(commit), nil
}

// Head returns the commit id HEAD currently resolves to.
func (c *Client) Head(_ context.Context, dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// DefaultBranchHead returns the commit the default branch points at.
func (c *Client) DefaultBranchHead(_ context.Context, dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}

	candidates := []plumbing.ReferenceName{
		plumbing.NewRemoteHEADReferenceName(remoteName),
		plumbing.NewBranchReferenceName("main"),
		plumbing.NewRemoteReferenceName(remoteName, "main"),
		plumbing.NewBranchReferenceName("master"),
		plumbing.NewRemoteReferenceName(remoteName, "master"),
		plumbing.HEAD,
	}
	for _, name := range candidates {
		ref, err := repo.Reference(name, true)
		if err != nil {
			continue
		}
		commit, err := peel(repo, ref.Hash())
		if err != nil {
			continue
		}
		return commit.Hash.String(), nil
	}
	return "", checkout.ErrNoDefaultBranch
}

// remoteDefaultBranch names the branch origin/HEAD points at, else main or
// master if origin has them.
func remoteDefaultBranch(repo *gogit.Repository) (string, bool) {
	prefix := "refs/remotes/" + remoteName + "/"
	if ref, err := repo.Reference(plumbing.NewRemoteHEADReferenceName(remoteName), false); err == nil &&
		ref.Type() == plumbing.SymbolicReference {
		if target := ref.Target().String(); strings.HasPrefix(target, prefix) {
			return strings.TrimPrefix(target, prefix), true
		}
	}
	for _, candidate := range []string{"main", "master"} {
		if _, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, candidate), false); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// peel follows annotated tags until it reaches a commit.
func peel(repo *gogit.Repository, h plumbing.Hash) (*object.Commit, error) {
	for range 8 {
		tag, err := repo.TagObject(h)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return repo.CommitObject(h)
		}
		if err != nil {
			return nil, err
		}
		if tag.TargetType != plumbing.CommitObject && tag.TargetType != plumbing.TagObject {
			return nil, fmt.Errorf("tag %s points to a %s", tag.Name, tag.TargetType)
		}
		h = tag.Target
	}
	return nil, fmt.Errorf("tag chain at %s is too deep", h)
}

func toCommit(c *object.Commit) checkout.Commit {
	return checkout.Commit{ID: c.Hash.String(), Time: c.Committer.When}
}
