// Package format handles file name generation and number rendering.
//
// # Slugs
//
// Evaluation data is grouped by the sheet title. [Slug] turns a title into
// a file system friendly name: diacritics are stripped, the result is
// lower-cased and every run of characters outside [a-z0-9_-] becomes a
// single "-". A blank result falls back to "default".
//
//	"Übung 3: Bäume"  ->  "ubung-3-baume"
//
// # File Names
//
//   - [StateFileName]: "<slug>.json", the per-repository evaluation state
//   - [FeedbackFileName]: "feedback-<slug>.md", the exported report
//   - [SanitizeForPath]: replaces characters that are invalid in paths
//
// # Numbers
//
// Points render with at most two decimals and no trailing zeros ([Points]),
// ratios as percentages in the same manner ([Percent]).
package format
