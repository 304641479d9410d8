package gitrepo

import (
	"errors"
	"fmt"
)

// NotARepositoryError indicates the given directory is not inside a git work tree.
type NotARepositoryError struct {
	Dir string
	Err error
}

func (e *NotARepositoryError) Error() string {
	return fmt.Sprintf("not a git repository: %s", e.Dir)
}

func (e *NotARepositoryError) Unwrap() error { return e.Err }

// InvalidRevisionError indicates a revision or revision range that git cannot resolve.
type InvalidRevisionError struct {
	Revision string
	Err      error
}

func (e *InvalidRevisionError) Error() string {
	return fmt.Sprintf("invalid revision: %s", e.Revision)
}

func (e *InvalidRevisionError) Unwrap() error { return e.Err }

// IsNotARepository checks if an error is a NotARepositoryError.
func IsNotARepository(err error) bool {
	var e *NotARepositoryError
	return errors.As(err, &e)
}

// IsInvalidRevision checks if an error is an InvalidRevisionError.
func IsInvalidRevision(err error) bool {
	var e *InvalidRevisionError
	return errors.As(err, &e)
}
