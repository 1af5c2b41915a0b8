package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phlp/studeval/internal/log"
)

// Resolver applies exactly one checkout per repository.
type Resolver struct {
	Git Git
	// Location is the zone deadlines are interpreted in. Defaults to time.Local.
	Location *time.Location
}

// NewResolver creates a resolver that interprets deadlines in local time.
func NewResolver(git Git) *Resolver {
	return &Resolver{Git: git, Location: time.Local}
}

// Resolve checks out the commit selected by tag and deadline in the
// repository at dir. Either may be empty/nil.
//
// A tag wins unless its commit is after the deadline or it cannot be
// resolved or checked out; then the deadline strategy is used if a deadline
// is set, otherwise HEAD.
func (r *Resolver) Resolve(ctx context.Context, dir, tag string, deadline *Date) (Info, error) {
	l := log.FromContext(ctx)

	if tag != "" {
		if deadline != nil {
			c, err := r.Git.TagCommit(ctx, dir, tag)
			if err != nil {
				l.Debug("tag not resolvable, using deadline", "tag", tag, "err", err)
				return r.byDeadline(ctx, dir, *deadline)
			}
			if c.Time.After(deadline.EndOfDay(r.location())) {
				l.Debug("tag is after deadline", "tag", tag, "commit", c.ID, "deadline", deadline)
				return r.byDeadline(ctx, dir, *deadline)
			}
		}
		info, err := r.byTag(ctx, dir, tag)
		if err == nil {
			return info, nil
		}
		l.Debug("tag checkout failed", "tag", tag, "err", err)
		if deadline != nil {
			return r.byDeadline(ctx, dir, *deadline)
		}
		return r.head(ctx, dir)
	}

	if deadline != nil {
		return r.byDeadline(ctx, dir, *deadline)
	}
	return r.head(ctx, dir)
}

func (r *Resolver) byTag(ctx context.Context, dir, tag string) (Info, error) {
	c, err := r.Git.TagCommit(ctx, dir, tag)
	if err != nil {
		return Info{}, err
	}
	if err := r.Git.CheckoutCommit(ctx, dir, c.ID); err != nil {
		return Info{}, fmt.Errorf("checkout tag %s: %w", tag, err)
	}
	return NewInfo(c.ID, NewStrategy(ModeTag, tag)), nil
}

func (r *Resolver) byDeadline(ctx context.Context, dir string, deadline Date) (Info, error) {
	start, err := r.Git.DefaultBranchHead(ctx, dir)
	if err != nil {
		if errors.Is(err, ErrNoDefaultBranch) {
			return Info{}, err
		}
		return Info{}, fmt.Errorf("%w: %v", ErrNoDefaultBranch, err)
	}

	cutoff := deadline.EndOfDay(r.location())
	var target string
	err = r.Git.WalkCommits(ctx, dir, start, func(c Commit) bool {
		if !c.Time.After(cutoff) {
			target = c.ID
			return false
		}
		return true
	})
	if err != nil {
		return Info{}, fmt.Errorf("walk history: %w", err)
	}
	if target == "" {
		return Info{}, fmt.Errorf("%w (%s)", ErrNoCommitBeforeDeadline, deadline)
	}

	if err := r.Git.CheckoutCommit(ctx, dir, target); err != nil {
		return Info{}, fmt.Errorf("checkout deadline commit: %w", err)
	}
	return NewInfo(target, NewStrategy(ModeDeadline, deadline.String())), nil
}

func (r *Resolver) head(ctx context.Context, dir string) (Info, error) {
	id, err := r.Git.Head(ctx, dir)
	if err != nil {
		return Info{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	return NewInfo(id, NewStrategy(ModeHead, "")), nil
}

func (r *Resolver) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}
