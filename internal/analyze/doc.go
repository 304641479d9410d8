// Package analyze classifies a commit along two axes: message quality
// and change cohesion.
//
// Analysis is a pure transformation and never fails. An unparseable
// commit message degrades to a warning issue with the raw text
// preserved, so callers always get a Report. Cohesion is scored from
// the spread of changed files across top-level directories and the mix
// of detected change types; a score below the configured threshold is
// the signal to ask the split advisor for a partition.
package analyze
