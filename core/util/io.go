package util

import (
	"io"
	"strings"
)

// util/IOUtils.java

/*
CompoundError keeps the first error as the primary one, along with
any errors suppressed while closing other resources.
*/
type CompoundError struct {
	errs []error
}

func (e *CompoundError) Error() string {
	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; suppressed: ")
}

func (e *CompoundError) Cause() error  { return e.errs[0] }
func (e *CompoundError) Unwrap() error { return e.errs[0] }

/*
Closes all given io.Closers, suppressing all errors but returns
priorErr if it is not nil. Otherwise the first error while closing
is returned, with the rest attached.
*/
func CloseWhileHandlingError(priorErr error, objects ...io.Closer) error {
	err := Close(objects...)
	if priorErr != nil {
		if err != nil {
			return addSuppressed(priorErr, err)
		}
		return priorErr
	}
	return err
}

/* Closes all given io.Closers, suppressing all errors. */
func CloseWhileSuppressingError(objects ...io.Closer) {
	for _, object := range objects {
		if object != nil {
			object.Close() // ignore error
		}
	}
}

/*
Closes all given io.Closers. Some of the io.Closers may be nil; they
are ignored. After everything is closed, the first error is returned
with any later ones suppressed into it.
*/
func Close(objects ...io.Closer) error {
	var th error
	for _, object := range objects {
		if object == nil {
			continue
		}
		if t := object.Close(); t != nil {
			if th == nil {
				th = t
			} else {
				th = addSuppressed(th, t)
			}
		}
	}
	return th
}

func addSuppressed(err error, suppressed error) error {
	assert2(err != suppressed, "Self-suppression not permitted")
	if suppressed == nil {
		return err
	}
	if ce, ok := err.(*CompoundError); ok {
		ce.errs = append(ce.errs, suppressed)
		return ce
	}
	return &CompoundError{[]error{err, suppressed}}
}

type FileDeleter interface {
	DeleteFile(name string) error
}

/*
Deletes all given files, suppressing all errors.

Note that the files should not be nil.
*/
func DeleteFilesIgnoringErrors(dir FileDeleter, files ...string) {
	for _, name := range files {
		if err := dir.DeleteFile(name); err != nil {
			log.Debugf("Failed to delete %v: %v", name, err)
		}
	}
}
