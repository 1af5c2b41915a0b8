// Package git implements the repository operations studeval needs on top of
// go-git, without shelling out to a git binary.
//
// The [Client] satisfies [checkout.Git]. Every repository is addressed by its
// working directory; remotes are always named "origin".
//
// # Clone and Update
//
//   - [Client.CloneOrUpdate]: clone with all tags, or fetch (tags, prune),
//     switch to the default branch, hard reset it to origin and pull
//
// # Snapshot Checkout
//
// Evaluations never move the student's own branches. [Client.CheckoutCommit]
// recreates the local branch [checkout.SnapshotBranch] at the target commit
// and forces the working tree to match it.
//
// # Default Branch
//
// The default branch is what refs/remotes/origin/HEAD points to. When that
// symbolic ref is missing (go-git clones never write it) main and then master
// are tried, locally and on origin, before falling back to HEAD.
//
// # Authentication
//
// SSH remotes authenticate with the first usable identity in ~/.ssh
// (id_ed25519, id_ecdsa, id_rsa, id_dsa). Without one go-git falls back to
// the SSH agent.
package git
