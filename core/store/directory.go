package store

import (
	"fmt"
	"io"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("store")

var (
	ErrNoSuchFile = errors.New("no such file")
	ErrFileExists = errors.New("file already exists")
	ErrClosed     = errors.New("this Directory is closed")
)

// store/IOContext.java

type IOContextType int

const (
	IO_CONTEXT_TYPE_READ    = IOContextType(1)
	IO_CONTEXT_TYPE_FLUSH   = IOContextType(2)
	IO_CONTEXT_TYPE_DEFAULT = IOContextType(3)
)

var (
	IO_CONTEXT_DEFAULT  = IOContext{context: IO_CONTEXT_TYPE_DEFAULT}
	IO_CONTEXT_READ     = IOContext{context: IO_CONTEXT_TYPE_READ}
	IO_CONTEXT_READONCE = IOContext{context: IO_CONTEXT_TYPE_READ, readOnce: true}
)

/*
IOContext holds additional details on the flush/read context. It is
passed to both OpenInput() and CreateOutput() so directories can
treat flush writes differently, e.g. throttle them.
*/
type IOContext struct {
	context   IOContextType
	FlushInfo *FlushInfo
	readOnce  bool
}

func NewIOContextForFlush(flushInfo *FlushInfo) IOContext {
	assertTrue(flushInfo != nil)
	return IOContext{
		context:   IO_CONTEXT_TYPE_FLUSH,
		FlushInfo: flushInfo,
	}
}

func (ctx IOContext) Type() IOContextType { return ctx.context }

func (ctx IOContext) String() string {
	return fmt.Sprintf("IOContext [context=%v, flushInfo=%v, readOnce=%v]",
		ctx.context, ctx.FlushInfo, ctx.readOnce)
}

/* A FlushInfo provides information required for a FLUSH context. */
type FlushInfo struct {
	NumDocs              int
	EstimatedSegmentSize int64
}

func (fi *FlushInfo) String() string {
	return fmt.Sprintf("FlushInfo [numDocs=%v, estimatedSegmentSize=%v]",
		fi.NumDocs, fi.EstimatedSegmentSize)
}

// store/Directory.java

/*
A Directory is a flat list of files. Files may be written once, when
they are created. Once a file is created it may only be opened for
read, or deleted. Random access is permitted both when reading and
writing.

A file created with CreateOutput() only becomes visible to
ListAll(), FileExists() and OpenInput() once its output was closed
successfully.
*/
type Directory interface {
	io.Closer
	// Returns an array of strings, one for each published file in the
	// directory.
	ListAll() (paths []string, err error)
	// Returns true iff a file with the given name exists.
	FileExists(name string) bool
	// Removes an existing file in the directory.
	DeleteFile(name string) error
	// Returns the length of a file in the directory. This method
	// follows the following contract:
	// 	- Must return error if the file doesn't exists.
	// 	- Returns a value >=0 if the file exists, which specifies its
	// length.
	FileLength(name string) (n int64, err error)
	// Creates a new, empty file in the directory with the given name.
	// Returns a stream writing this file.
	CreateOutput(name string, ctx IOContext) (out IndexOutput, err error)
	// Ensure that any writes to these files are moved to stable
	// storage.
	Sync(names []string) error
	// Returns a stream reading an existing file.
	OpenInput(name string, ctx IOContext) (in IndexInput, err error)
}

/* Returns a stream reading an existing file, computing checksum as it reads. */
func OpenChecksumInput(d Directory, name string, ctx IOContext) (ChecksumIndexInput, error) {
	in, err := d.OpenInput(name, ctx)
	if err != nil {
		return nil, err
	}
	return newBufferedChecksumIndexInput(in), nil
}

func noSuchFile(name string) error {
	return errors.Wrapf(ErrNoSuchFile, "%v", name)
}

/* Returns true if the error, or its cause, says the file is missing. */
func IsNoSuchFile(err error) bool {
	return errors.Cause(err) == ErrNoSuchFile
}

func assertTrue(ok bool) {
	assert2(ok, "assert fail")
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
