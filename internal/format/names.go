package format

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSlug is used when a title has no usable characters.
const DefaultSlug = "default"

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Slug converts a title to a lower-case file name component.
func Slug(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultSlug
	}
	stripped, _, err := transform.String(stripMarks(), title)
	if err != nil {
		stripped = title
	}
	s := nonSlugChars.ReplaceAllString(strings.ToLower(stripped), "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return DefaultSlug
	}
	return s
}

// stripMarks decomposes and drops combining marks: "ä" -> "a".
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// StateFileName returns the evaluation state file name for a sheet title.
func StateFileName(title string) string {
	return Slug(title) + ".json"
}

// FeedbackFileName returns the markdown feedback file name for a sheet
// title.
func FeedbackFileName(title string) string {
	return "feedback-" + Slug(title) + ".md"
}

// SanitizeForPath replaces characters that are problematic in file paths
// Replaces: / \ : * ? " < > | with -
func SanitizeForPath(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)
	return replacer.Replace(name)
}
