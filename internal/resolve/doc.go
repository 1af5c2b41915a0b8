// Package resolve maps command-line arguments to evaluation nodes and
// prepared repositories.
//
// # Categories
//
// Commands that act on a category (run, award) accept its qualified name
// ("Tests/Unit"), its plain name when that is unique ("unit"), or any
// fuzzy abbreviation ("tstun"). Ties are reported as [ErrAmbiguous]
// listing the candidates.
//
// # Repositories
//
// The --repo flag selects a prepared repository by index. Without it the
// session's current repository is used, and when nothing was selected yet
// a lone prepared repository is picked automatically.
package resolve
