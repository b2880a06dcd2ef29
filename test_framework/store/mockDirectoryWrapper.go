package store

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/ironsweet/termshash/core/store"
	"github.com/pkg/errors"
)

// store/MockDirectoryWrapper.java

/*
This is a Directory wrapper that adds methods intended to be used
only by unit tests. It also adds a number of features useful for
testing:

1. Failures can be injected on create, write, close and delete of
chosen files, to check that a writer cleans up after itself.
2. When a MockDirectoryWrapper is closed, it returns an error if it
has any files still open for write.
3. Writing the same file twice is refused.
*/
type MockDirectoryWrapper struct {
	*BaseDirectoryWrapper
	sync.Locker // simulate Java's synchronized keyword

	preventDoubleWrite bool
	createdFiles       map[string]bool
	openFilesForWrite  map[string]int
	failures           []Failure
}

func NewMockDirectoryWrapper(delegate store.Directory) *MockDirectoryWrapper {
	return &MockDirectoryWrapper{
		BaseDirectoryWrapper: NewBaseDirectoryWrapper(delegate),
		Locker:               &sync.Mutex{},
		preventDoubleWrite:   true,
		createdFiles:         make(map[string]bool),
		openFilesForWrite:    make(map[string]int),
	}
}

type Operation int

const (
	OP_CREATE = Operation(iota)
	OP_WRITE
	OP_CLOSE
	OP_DELETE
	OP_OPEN
)

func (op Operation) String() string {
	switch op {
	case OP_CREATE:
		return "create"
	case OP_WRITE:
		return "write"
	case OP_CLOSE:
		return "close"
	case OP_DELETE:
		return "delete"
	case OP_OPEN:
		return "open"
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

/*
A Failure is consulted before every operation on the directory. A non
nil result fails the operation with that error.
*/
type Failure func(op Operation, name string) error

// ErrInjected is the cause of every error a FailOnExtension failure returns.
var ErrInjected = errors.New("injected failure")

/* Fails the given operation on every file with the extension. */
func FailOnExtension(op Operation, ext string) Failure {
	return func(o Operation, name string) error {
		if o == op && strings.TrimPrefix(path.Ext(name), ".") == ext {
			return errors.Wrapf(ErrInjected, "%v %v", op, name)
		}
		return nil
	}
}

/* Fails the nth (from 0) write to any file, and every write after it. */
func FailAfterWrites(n int) Failure {
	var mu sync.Mutex
	count := 0
	return func(op Operation, name string) error {
		if op != OP_WRITE {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		count++
		if count > n {
			return errors.Wrapf(ErrInjected, "write #%v to %v", count, name)
		}
		return nil
	}
}

func (mdw *MockDirectoryWrapper) FailOn(f Failure) {
	mdw.Lock()
	defer mdw.Unlock()
	mdw.failures = append(mdw.failures, f)
}

func (mdw *MockDirectoryWrapper) ClearFailures() {
	mdw.Lock()
	defer mdw.Unlock()
	mdw.failures = nil
}

func (mdw *MockDirectoryWrapper) SetPreventDoubleWrite(value bool) {
	mdw.preventDoubleWrite = value
}

func (mdw *MockDirectoryWrapper) maybeFail(op Operation, name string) error {
	mdw.Lock()
	failures := mdw.failures
	mdw.Unlock()
	for _, f := range failures {
		if err := f(op, name); err != nil {
			return err
		}
	}
	return nil
}

func (mdw *MockDirectoryWrapper) CreateOutput(name string, ctx store.IOContext) (store.IndexOutput, error) {
	if err := mdw.maybeFail(OP_CREATE, name); err != nil {
		return nil, err
	}
	mdw.Lock()
	defer mdw.Unlock()
	if mdw.preventDoubleWrite && (mdw.createdFiles[name] || mdw.Directory.FileExists(name)) {
		return nil, errors.Errorf("file %q was already written to", name)
	}
	out, err := mdw.Directory.CreateOutput(name, ctx)
	if err != nil {
		return nil, err
	}
	mdw.createdFiles[name] = true
	mdw.openFilesForWrite[name]++
	return newMockIndexOutputWrapper(mdw, name, out), nil
}

func (mdw *MockDirectoryWrapper) DeleteFile(name string) error {
	if err := mdw.maybeFail(OP_DELETE, name); err != nil {
		return err
	}
	mdw.Lock()
	delete(mdw.createdFiles, name)
	mdw.Unlock()
	return mdw.Directory.DeleteFile(name)
}

func (mdw *MockDirectoryWrapper) OpenInput(name string, ctx store.IOContext) (store.IndexInput, error) {
	if err := mdw.maybeFail(OP_OPEN, name); err != nil {
		return nil, err
	}
	return mdw.Directory.OpenInput(name, ctx)
}

func (mdw *MockDirectoryWrapper) removeIndexOutput(name string) {
	mdw.Lock()
	defer mdw.Unlock()
	if mdw.openFilesForWrite[name]--; mdw.openFilesForWrite[name] <= 0 {
		delete(mdw.openFilesForWrite, name)
	}
}

/* Returns the names of the files still open for write, sorted. */
func (mdw *MockDirectoryWrapper) OpenFiles() []string {
	mdw.Lock()
	defer mdw.Unlock()
	names := make([]string, 0, len(mdw.openFilesForWrite))
	for name := range mdw.openFilesForWrite {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (mdw *MockDirectoryWrapper) Close() error {
	if open := mdw.OpenFiles(); len(open) > 0 {
		return errors.Errorf("MockDirectoryWrapper: cannot close: there are still open files: %v", open)
	}
	return mdw.BaseDirectoryWrapper.Close()
}

func (mdw *MockDirectoryWrapper) String() string {
	return fmt.Sprintf("MockDirectoryWrapper(%v)", mdw.Directory)
}

// store/MockIndexOutputWrapper.java

/* Used by MockDirectoryWrapper to inject failures and track open files. */
type MockIndexOutputWrapper struct {
	*store.IndexOutputImpl
	dir      *MockDirectoryWrapper
	name     string
	delegate store.IndexOutput
	closed   bool
}

func newMockIndexOutputWrapper(dir *MockDirectoryWrapper, name string,
	delegate store.IndexOutput) *MockIndexOutputWrapper {

	ans := &MockIndexOutputWrapper{dir: dir, name: name, delegate: delegate}
	ans.IndexOutputImpl = store.NewIndexOutput(ans)
	return ans
}

func (out *MockIndexOutputWrapper) WriteByte(b byte) error {
	if err := out.dir.maybeFail(OP_WRITE, out.name); err != nil {
		return err
	}
	return out.delegate.WriteByte(b)
}

func (out *MockIndexOutputWrapper) WriteBytes(buf []byte) error {
	if err := out.dir.maybeFail(OP_WRITE, out.name); err != nil {
		return err
	}
	return out.delegate.WriteBytes(buf)
}

func (out *MockIndexOutputWrapper) FilePointer() int64 { return out.delegate.FilePointer() }
func (out *MockIndexOutputWrapper) Checksum() int64    { return out.delegate.Checksum() }

func (out *MockIndexOutputWrapper) Close() error {
	if out.closed {
		return nil
	}
	out.closed = true
	defer out.dir.removeIndexOutput(out.name)
	if err := out.dir.maybeFail(OP_CLOSE, out.name); err != nil {
		out.delegate.Abort()
		return err
	}
	return out.delegate.Close()
}

func (out *MockIndexOutputWrapper) Abort() error {
	if out.closed {
		return nil
	}
	out.closed = true
	defer out.dir.removeIndexOutput(out.name)
	return out.delegate.Abort()
}

func (out *MockIndexOutputWrapper) String() string {
	return fmt.Sprintf("MockIndexOutputWrapper(%v)", out.delegate)
}
