package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ironsweet/termshash/core/util"
)

// store/TrackingDirectoryWrapper.java

/*
A delegating Directory that records which files were written to and
deleted.
*/
type TrackingDirectoryWrapper struct {
	Directory
	sync.Locker
	createdFilenames map[string]bool // synchronized
}

func NewTrackingDirectoryWrapper(other Directory) *TrackingDirectoryWrapper {
	return &TrackingDirectoryWrapper{
		Directory:        other,
		Locker:           &sync.Mutex{},
		createdFilenames: make(map[string]bool),
	}
}

func (w *TrackingDirectoryWrapper) DeleteFile(name string) error {
	w.Lock()
	delete(w.createdFilenames, name)
	w.Unlock()
	return w.Directory.DeleteFile(name)
}

func (w *TrackingDirectoryWrapper) CreateOutput(name string, ctx IOContext) (IndexOutput, error) {
	w.Lock()
	w.createdFilenames[name] = true
	w.Unlock()
	return w.Directory.CreateOutput(name, ctx)
}

func (w *TrackingDirectoryWrapper) String() string {
	return fmt.Sprintf("TrackingDirectoryWrapper(%v)", w.Directory)
}

/* Returns the names of the files created through this wrapper, sorted. */
func (w *TrackingDirectoryWrapper) CreatedFiles() []string {
	w.Lock()
	defer w.Unlock()
	names := make([]string, 0, len(w.createdFilenames))
	for name := range w.createdFilenames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *TrackingDirectoryWrapper) ContainsFile(name string) bool {
	w.Lock()
	defer w.Unlock()
	return w.createdFilenames[name]
}

// store/FileSwitchDirectory.java

/*
Expert: A Directory instance that switches files between two other
Directory instances.

Files with the specified extensions are placed in the primary
directory; others are placed in the secondary directory. For
example, term vector files can be routed to a different device than
the postings.
*/
type FileSwitchDirectory struct {
	primaryExtensions map[string]bool
	primaryDir        Directory
	secondaryDir      Directory
	doClose           bool
}

func NewFileSwitchDirectory(primaryExtensions []string,
	primaryDir, secondaryDir Directory, doClose bool) *FileSwitchDirectory {

	exts := make(map[string]bool)
	for _, ext := range primaryExtensions {
		exts[ext] = true
	}
	return &FileSwitchDirectory{exts, primaryDir, secondaryDir, doClose}
}

func (d *FileSwitchDirectory) PrimaryDir() Directory   { return d.primaryDir }
func (d *FileSwitchDirectory) SecondaryDir() Directory { return d.secondaryDir }

func (d *FileSwitchDirectory) directory(name string) Directory {
	if d.primaryExtensions[util.FileExtension(name)] {
		return d.primaryDir
	}
	return d.secondaryDir
}

func (d *FileSwitchDirectory) Close() error {
	if !d.doClose {
		return nil
	}
	d.doClose = false
	return util.Close(d.secondaryDir, d.primaryDir)
}

/* Lists the files of both directories; a missing one is skipped. */
func (d *FileSwitchDirectory) ListAll() ([]string, error) {
	var files []string
	var exc error
	for _, dir := range []Directory{d.primaryDir, d.secondaryDir} {
		names, err := dir.ListAll()
		if err != nil {
			if exc == nil {
				exc = err
			}
			continue
		}
		files = append(files, names...)
	}
	if files == nil && exc != nil {
		return nil, exc
	}
	sort.Strings(files)
	return files, nil
}

func (d *FileSwitchDirectory) FileExists(name string) bool {
	return d.directory(name).FileExists(name)
}

func (d *FileSwitchDirectory) DeleteFile(name string) error {
	return d.directory(name).DeleteFile(name)
}

func (d *FileSwitchDirectory) FileLength(name string) (int64, error) {
	return d.directory(name).FileLength(name)
}

func (d *FileSwitchDirectory) CreateOutput(name string, ctx IOContext) (IndexOutput, error) {
	return d.directory(name).CreateOutput(name, ctx)
}

func (d *FileSwitchDirectory) Sync(names []string) error {
	var primary, secondary []string
	for _, name := range names {
		if d.primaryExtensions[util.FileExtension(name)] {
			primary = append(primary, name)
		} else {
			secondary = append(secondary, name)
		}
	}
	if err := d.primaryDir.Sync(primary); err != nil {
		return err
	}
	return d.secondaryDir.Sync(secondary)
}

func (d *FileSwitchDirectory) OpenInput(name string, ctx IOContext) (IndexInput, error) {
	return d.directory(name).OpenInput(name, ctx)
}

func (d *FileSwitchDirectory) String() string {
	return fmt.Sprintf("FileSwitchDirectory(primary=%v, secondary=%v)", d.primaryDir, d.secondaryDir)
}
