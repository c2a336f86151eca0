package git

import (
	"errors"
	"fmt"
)

// ErrRepositoryNotFound is returned when no Git repository exists at the
// requested path.
var ErrRepositoryNotFound = errors.New("repository not found")

// BackendAccessError reports that repository data required by the walk or
// the snapshot enumeration could not be read.
type BackendAccessError struct {
	Op  string
	Err error
}

func (e *BackendAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendAccessError) Unwrap() error {
	return e.Err
}

func backendError(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendAccessError
	if errors.As(err, &be) {
		return err
	}
	return &BackendAccessError{Op: op, Err: err}
}
