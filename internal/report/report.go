// Package report renders an evaluation tree as markdown feedback.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/format"
)

// DefaultFileName is used when Export gets a blank name.
const DefaultFileName = "evaluation.md"

// Meta is the document header.
type Meta struct {
	// Context identifies the graded repository, e.g. "Repository 007".
	Context string
	// Comment is the sheet-wide comment, rendered as a block quote.
	Comment string
	Created time.Time
}

// Render returns the markdown document for tree. Pseudo categories and
// their descendants are left out, as are they from the totals.
func Render(tree *evaluation.Tree, meta Meta) string {
	var b strings.Builder
	b.WriteString("# Evaluation\n\n")
	if blockQuote(&b, "", meta.Comment) {
		b.WriteString("\n")
	}
	if strings.TrimSpace(meta.Context) != "" {
		fmt.Fprintf(&b, "**Context:** %s  \n", meta.Context)
	}
	created := meta.Created
	if created.IsZero() {
		created = time.Now()
	}
	fmt.Fprintf(&b, "**Created:** %s\n\n", created.UTC().Format(time.RFC3339))

	var roots []*evaluation.Node
	var achieved, maxPoints float64
	for _, n := range tree.Roots() {
		if n.Pseudo {
			continue
		}
		roots = append(roots, n)
		achieved += n.Points()
		maxPoints += n.Max()
	}
	ratio := 0.0
	if maxPoints != 0 {
		ratio = achieved / maxPoints
	}

	b.WriteString("| Category | Achieved | Max | % |\n")
	b.WriteString("| --- | ---: | ---: | ---: |\n")
	for _, n := range roots {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			n.Name, format.Points(n.Points()), format.Points(n.Max()), format.Percent(n.Ratio()))
	}
	fmt.Fprintf(&b, "| **Total** | %s | %s | %s |\n\n",
		format.Points(achieved), format.Points(maxPoints), format.Percent(ratio))

	for _, n := range roots {
		fmt.Fprintf(&b, "## %s (%s)\n\n", n.Name, format.Score(n.Points(), n.Max()))
		details(&b, tree, n, 0)
		b.WriteString("\n")
	}
	return b.String()
}

func details(b *strings.Builder, tree *evaluation.Tree, n *evaluation.Node, depth int) {
	if n.Pseudo {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s- %s: %s\n", indent, n.Name, format.Score(n.Points(), n.Max()))

	wroteConfig := blockQuote(b, indent+"  ", n.ConfigComment)
	wroteComment := blockQuote(b, indent+"  ", n.Comment())
	if n.IsLeaf() {
		return
	}
	if wroteConfig || wroteComment {
		b.WriteString("\n")
	}
	for _, c := range tree.Children(n) {
		details(b, tree, c, depth+1)
	}
}

// blockQuote writes text as a markdown quote, one "> " line per input
// line. Blank text writes nothing and returns false.
func blockQuote(b *strings.Builder, prefix, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString(prefix + ">\n")
			continue
		}
		b.WriteString(prefix + "> " + line + "\n")
	}
	return true
}

// Export writes the rendered report to dir/name and returns its path. A
// ".md" extension is appended when missing.
func Export(dir, name string, tree *evaluation.Tree, meta Meta) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultFileName
	}
	if !strings.HasSuffix(strings.ToLower(name), ".md") {
		name += ".md"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(Render(tree, meta)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
