// Package workflow turns parsed spec sections into tag writes.
//
// A run has two phases. Planner.Plan merges sections into one desired state
// per file, reads each file's current tags in parallel and diffs them; any
// read error aborts the plan before anything is written. Committer.Commit
// then writes the files that changed, one at a time, stopping at the first
// failure. Files written before a failure stay written; CommitError lists
// them so the caller can tell the user.
//
// AcquireLock guards the commit phase so two kiln processes never write the
// same library at once.
package workflow
