// Package gitrepo reads commits and staged changes from a git repository.
//
// It shells out to git for all repository access and parses the resulting
// unified diffs into structured [FileChange] values with per-hunk added and
// removed lines, numbered in new-file and old-file coordinates respectively.
//
// [Repository] is the abstraction consumed by the analysis pipeline; [Git] is
// the production implementation. Failures are classified into
// [NotARepositoryError] and [InvalidRevisionError] so callers can map them to
// exit codes without string matching.
package gitrepo
