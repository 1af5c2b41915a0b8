// Package workflow ties sheets, prepared repositories and evaluation state
// together into the operations the CLI exposes.
//
// # Layout
//
// All data of a sheet lives below a base directory:
//
//	<base>/repos/<NNN>                           cloned repositories
//	<base>/evaluations/<slug>/session.json       prepared repositories
//	<base>/evaluations/<slug>/<NNN>/<slug>.json  evaluation state
//	<base>/evaluations/<slug>/<NNN>/logs/        command logs
//	<base>/repos/<NNN>/feedback-<slug>.md        exported report
//
// The slug is derived from the sheet title (see format.Slug).
//
// # Tasks
//
// A task is a leaf category with commands. Running it executes the
// commands in the repository, stores the transcript as a command log and
// grades the category: full points on success, zero otherwise.
package workflow
