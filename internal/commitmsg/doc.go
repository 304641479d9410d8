// Package commitmsg parses commit messages into conventional-commit structure.
//
// [Parse] never fails: messages that do not follow the conventional format are
// returned with Conventional set to false and the raw text preserved, leaving
// quality judgments to the analysis layer.
package commitmsg
