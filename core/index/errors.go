package index

import (
	"fmt"

	"github.com/ironsweet/termshash/core/util"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("index")

var (
	// A zero-length term reached the terms hash. The document is
	// marked deleted; the generation continues.
	ErrMalformedTerm = errors.New("malformed term")
	// The in-memory generation was discarded.
	ErrAborted = errors.New("indexing generation aborted")
	// The DocumentsWriter was closed.
	ErrClosed = errors.New("this DocumentsWriter is closed")
)

/*
Marks an error that leaves the in-memory generation inconsistent: the
generation must be aborted. Allocation failures and consumer write
failures are aborting; analysis failures and malformed terms are not.
*/
type abortingError struct {
	cause error
}

func newAbortingError(err error) error {
	var ae *abortingError
	if err == nil || errors.As(err, &ae) {
		return err
	}
	return &abortingError{err}
}

func (e *abortingError) Error() string { return e.cause.Error() }
func (e *abortingError) Cause() error  { return e.cause }
func (e *abortingError) Unwrap() error { return e.cause }

/* Every aborting error discards the generation. */
func (e *abortingError) Is(target error) bool { return target == ErrAborted }

func isAborting(err error) bool {
	if err == nil {
		return false
	}
	var ae *abortingError
	return errors.As(err, &ae) || errors.Is(err, util.ErrOutOfMemory)
}

func assertTrue(ok bool) {
	assert2(ok, "assert fail")
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
