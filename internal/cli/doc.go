// Package cli implements the gitguard command-line interface.
package cli
