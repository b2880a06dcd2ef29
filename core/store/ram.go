package store

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// store/RAMDirectory.java

/*
A memory-resident Directory implementation.

Files are buffered privately while they are written and published
into the directory when their output is closed, so readers never see
a half-written file.

Warning: This type is not intended to work with huge indexes.
Everything beyond several hundred megabytes will waste resources.
*/
type RAMDirectory struct {
	sync.RWMutex
	fileMap     map[string]*RAMFile
	sizeInBytes int64 // atomic
	isOpen      atomic.Bool
}

func NewRAMDirectory() *RAMDirectory {
	ans := &RAMDirectory{fileMap: make(map[string]*RAMFile)}
	ans.isOpen.Store(true)
	return ans
}

func (rd *RAMDirectory) ensureOpen() error {
	if !rd.isOpen.Load() {
		return ErrClosed
	}
	return nil
}

func (rd *RAMDirectory) ListAll() ([]string, error) {
	if err := rd.ensureOpen(); err != nil {
		return nil, err
	}
	rd.RLock()
	defer rd.RUnlock()
	names := make([]string, 0, len(rd.fileMap))
	for name := range rd.fileMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Returns true iff the named file exists in this directory
func (rd *RAMDirectory) FileExists(name string) bool {
	rd.RLock()
	defer rd.RUnlock()
	_, ok := rd.fileMap[name]
	return ok
}

// Returns the length in bytes of a file in the directory.
func (rd *RAMDirectory) FileLength(name string) (int64, error) {
	if err := rd.ensureOpen(); err != nil {
		return 0, err
	}
	rd.RLock()
	defer rd.RUnlock()
	file, ok := rd.fileMap[name]
	if !ok {
		return 0, noSuchFile(name)
	}
	return int64(len(file.data)), nil
}

/* Return total size in bytes of all files in this directory. */
func (rd *RAMDirectory) RamBytesUsed() int64 {
	return atomic.LoadInt64(&rd.sizeInBytes)
}

// Removes an existing file in the directory
func (rd *RAMDirectory) DeleteFile(name string) error {
	if err := rd.ensureOpen(); err != nil {
		return err
	}
	rd.Lock()
	defer rd.Unlock()
	file, ok := rd.fileMap[name]
	if !ok {
		return noSuchFile(name)
	}
	delete(rd.fileMap, name)
	atomic.AddInt64(&rd.sizeInBytes, -int64(len(file.data)))
	return nil
}

// Creates a new, empty file in the directory with the given name.
// Returns a stream writing this file; it is published on Close.
func (rd *RAMDirectory) CreateOutput(name string, ctx IOContext) (IndexOutput, error) {
	if err := rd.ensureOpen(); err != nil {
		return nil, err
	}
	return newOutputStreamIndexOutput(name, &ramPublisher{dir: rd, name: name}, DEFAULT_BUFFER_SIZE), nil
}

func (rd *RAMDirectory) publish(name string, data []byte) error {
	if err := rd.ensureOpen(); err != nil {
		return err
	}
	rd.Lock()
	defer rd.Unlock()
	if existing, ok := rd.fileMap[name]; ok {
		atomic.AddInt64(&rd.sizeInBytes, -int64(len(existing.data)))
	}
	rd.fileMap[name] = &RAMFile{data: data}
	atomic.AddInt64(&rd.sizeInBytes, int64(len(data)))
	return nil
}

func (rd *RAMDirectory) Sync(names []string) error {
	return nil
}

// Returns a stream reading an existing file.
func (rd *RAMDirectory) OpenInput(name string, ctx IOContext) (IndexInput, error) {
	if err := rd.ensureOpen(); err != nil {
		return nil, err
	}
	rd.RLock()
	defer rd.RUnlock()
	file, ok := rd.fileMap[name]
	if !ok {
		return nil, noSuchFile(name)
	}
	return NewByteArrayIndexInput(fmt.Sprintf("RAMInputStream(name=%v)", name), file.data), nil
}

// Closes the store to future operations, releasing associated memory.
func (rd *RAMDirectory) Close() error {
	rd.isOpen.Store(false)
	rd.Lock()
	defer rd.Unlock()
	rd.fileMap = make(map[string]*RAMFile)
	atomic.StoreInt64(&rd.sizeInBytes, 0)
	return nil
}

func (rd *RAMDirectory) String() string {
	return fmt.Sprintf("RAMDirectory@%p", rd)
}

// store/RAMFile.java

/* Represents a published file in RAM. Its content never changes. */
type RAMFile struct {
	data []byte
}

type ramPublisher struct {
	bytes.Buffer
	dir  *RAMDirectory
	name string
}

func (p *ramPublisher) Commit() error {
	return p.dir.publish(p.name, p.Bytes())
}

func (p *ramPublisher) Discard() error {
	p.Reset()
	return nil
}
