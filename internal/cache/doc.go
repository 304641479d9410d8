// Package cache stores per-commit verdicts on disk between runs.
package cache
