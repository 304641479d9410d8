// Package pipeline runs the full check flow: load changes, run the
// secret scan, the message/cohesion analysis, and the split advisor as
// parallel stages, and aggregate a verdict. Range checks additionally
// fan out across commits with a bounded number in flight, keep
// per-commit failures as blocking verdicts for that commit only, and
// return results in commit order.
//
// AI suggestions are attached to non-passing verdicts when a provider
// is configured; without one the heuristic fallback still produces a
// message suggestion, so the flow works identically offline.
package pipeline
