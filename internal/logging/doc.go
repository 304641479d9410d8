// Package logging builds the process logger. All logs go to stderr so
// stdout stays reserved for report output.
package logging
