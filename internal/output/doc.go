// Package output renders verdicts for people and machines.
//
// The text writer is the terminal view: status and issues colored by
// severity, with split groups and message suggestions spelled out. The
// JSON writer emits the verdict structure verbatim for tooling. Both
// print the same data; only the audience differs.
package output
