// Package verdict turns analysis evidence into a pass/warn/block
// decision with an ordered list of actionable issues.
//
// Aggregation is pure: the same evidence always yields the same
// verdict, and input slices are never mutated. Blocking is reserved
// for critical and high security findings; everything advisory at
// worst warns.
package verdict
