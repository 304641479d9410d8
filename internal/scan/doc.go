// Package scan detects security-sensitive content in diff text.
//
// The scanner combines literal pattern rules for known credential formats
// with a Shannon-entropy heuristic for opaque secrets. Scanning only looks
// at added lines, so pure deletions never produce findings. Matched
// snippets are redacted before they leave this package.
package scan
