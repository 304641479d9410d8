// Package split partitions a non-cohesive change set into suggested
// atomic commits.
//
// Files become nodes in a similarity graph; edges are weighted by
// shared directory, shared change kind and token overlap between
// paths. Connected components above the similarity threshold form the
// suggested groups. The groups always partition the input exactly:
// every file lands in exactly one group and none is dropped. The
// suggestion is advisory and never enforced.
package split
