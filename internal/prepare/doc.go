// Package prepare turns a repository URL template and an index range into a
// batch of cloned, deterministically checked out repositories, each with its
// own evaluation directory.
//
// For every index, in ascending order, [Preparer.Prepare]:
//
//  1. builds the repository URL from the template
//  2. clones or updates <repositories>/<NNN>
//  3. checks out the commit picked by [checkout.Resolver]
//  4. creates <evaluations>/<NNN>, migrating a legacy flat state file
//  5. seeds the evaluation file if it does not exist yet
//  6. moves logs left in <repo>/.eval/logs to <evaluations>/<NNN>/logs
//
// Any failure in steps 1 to 5 skips the index and adds one line to
// [Result.Errors]; the batch always continues.
package prepare
