package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/session"
)

var (
	// ErrNoMatch is returned when no node matches a query.
	ErrNoMatch = errors.New("no matching category")
	// ErrAmbiguous is returned when several nodes match equally well.
	ErrAmbiguous = errors.New("ambiguous category")
	// ErrNotPrepared is returned when no prepared repository can be chosen.
	ErrNotPrepared = errors.New("repository not prepared")
)

// Task resolves query to a node of tree. An exact qualified name wins,
// then a unique case-insensitive match on the node name, then the best
// fuzzy match over all qualified names.
func Task(tree *evaluation.Tree, query string) (*evaluation.Node, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty name", ErrNoMatch)
	}
	if n, ok := tree.Find(query); ok {
		return n, nil
	}

	var byName []*evaluation.Node
	tree.Walk(func(n *evaluation.Node, _ int) {
		if strings.EqualFold(n.Name, query) || strings.EqualFold(tree.QualifiedName(n), query) {
			byName = append(byName, n)
		}
	})
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return nil, ambiguous(query, tree, byName)
	}

	names := tree.QualifiedNames()
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, query)
	}
	if len(matches) > 1 && matches[0].Score == matches[1].Score {
		var tied []*evaluation.Node
		for _, m := range matches {
			if m.Score != matches[0].Score {
				break
			}
			n, _ := tree.Find(m.Str)
			tied = append(tied, n)
		}
		return nil, ambiguous(query, tree, tied)
	}
	n, _ := tree.Find(matches[0].Str)
	return n, nil
}

func ambiguous(query string, tree *evaluation.Tree, nodes []*evaluation.Node) error {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = tree.QualifiedName(n)
	}
	return fmt.Errorf("%w: %q matches %s", ErrAmbiguous, query, strings.Join(names, ", "))
}

// Repository picks a prepared repository: the given index when positive,
// otherwise the session's current one, otherwise the only prepared one.
func Repository(s *session.Session, index int) (prepare.Context, error) {
	if index > 0 {
		pc, ok := s.Get(index)
		if !ok {
			return prepare.Context{}, fmt.Errorf("%w: %s (run 'studeval prepare' first)", ErrNotPrepared, prepare.Label(index))
		}
		return pc, nil
	}
	if s.Current > 0 {
		if pc, ok := s.Get(s.Current); ok {
			return pc, nil
		}
	}
	contexts := s.Contexts()
	switch len(contexts) {
	case 0:
		return prepare.Context{}, fmt.Errorf("%w: no repositories prepared (run 'studeval prepare' first)", ErrNotPrepared)
	case 1:
		return contexts[0], nil
	}
	return prepare.Context{}, fmt.Errorf("%d repositories prepared, choose one with --repo", len(contexts))
}
