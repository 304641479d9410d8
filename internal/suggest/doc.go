// Package suggest turns analysis results into AI commit-message
// suggestions.
//
// The orchestrator builds a provider-agnostic prompt, time-bounds the
// provider call and retries only transient failures. A timeout, a rate
// limit that survives the retry budget, or an unparseable response all
// degrade to "no suggestions"; the orchestrator never fails the
// analysis run. Every AI-origin suggestion is tagged with its
// provenance so consumers can tell it apart from heuristic output.
package suggest
