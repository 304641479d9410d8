// Gitguard is a CLI that checks commits before they ship: leaked
// secrets, weak commit messages, and unrelated changes bundled into one
// commit.
//
// It renders a verdict per commit (pass, warn, or block) with
// deterministic exit codes suitable for CI gating and git hooks, and
// can draft conventional commit messages for the staged changes.
//
// Usage:
//
//	gitguard check                    # check HEAD
//	gitguard check <revision>         # check a specific commit
//	gitguard check --staged           # check the staged changes
//	gitguard pr origin/main..HEAD     # check every commit in a range
//	gitguard prepare <file>           # draft a commit message (hook flow)
//	gitguard hook install             # install the git hook
//
// See https://github.com/gitguardhq/gitguard for full documentation.
package main
