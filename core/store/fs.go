package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dchest/safefile"
	"github.com/pkg/errors"
)

// store/FSDirectory.java

/*
A Directory backed by a file system folder. Outputs are written to a
temporary file that is atomically renamed into place when the output
is closed, so a crash never leaves a partial file under its real name.
*/
type FSDirectory struct {
	path string
}

/* Opens a directory on the file system, creating it if it does not exist. */
func OpenFSDirectory(path string) (*FSDirectory, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if stat, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err = os.MkdirAll(path, 0750); err != nil {
			return nil, errors.Wrapf(err, "cannot create directory %v", path)
		}
	} else if !stat.IsDir() {
		return nil, errors.Errorf("file '%v' exists but is not a directory", path)
	}
	return &FSDirectory{path: path}, nil
}

func (d *FSDirectory) Path() string { return d.path }

func (d *FSDirectory) fileName(name string) string {
	return filepath.Join(d.path, name)
}

/* Temp files of outputs still being written are not listed. */
func (d *FSDirectory) ListAll() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, ".tmp") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *FSDirectory) FileExists(name string) bool {
	_, err := os.Stat(d.fileName(name))
	return err == nil
}

func (d *FSDirectory) FileLength(name string) (int64, error) {
	stat, err := os.Stat(d.fileName(name))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, noSuchFile(name)
		}
		return 0, err
	}
	return stat.Size(), nil
}

func (d *FSDirectory) DeleteFile(name string) error {
	if err := os.Remove(d.fileName(name)); err != nil {
		if os.IsNotExist(err) {
			return noSuchFile(name)
		}
		return errors.Wrapf(err, "cannot delete %v", name)
	}
	return nil
}

func (d *FSDirectory) CreateOutput(name string, ctx IOContext) (IndexOutput, error) {
	f, err := safefile.Create(d.fileName(name), 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create %v", name)
	}
	return newOutputStreamIndexOutput(name, &fsPublisher{f}, DEFAULT_BUFFER_SIZE), nil
}

func (d *FSDirectory) Sync(names []string) error {
	for _, name := range names {
		if err := fsync(d.fileName(name)); err != nil {
			return errors.Wrapf(err, "cannot sync %v", name)
		}
	}
	return fsync(d.path)
}

func fsync(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	err = f.Sync()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

/* Reads the whole file; index files are read back for verification only. */
func (d *FSDirectory) OpenInput(name string, ctx IOContext) (IndexInput, error) {
	data, err := os.ReadFile(d.fileName(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, noSuchFile(name)
		}
		return nil, err
	}
	return NewByteArrayIndexInput(fmt.Sprintf("FSIndexInput(path=%v)", d.fileName(name)), data), nil
}

func (d *FSDirectory) Close() error { return nil }

func (d *FSDirectory) String() string {
	return fmt.Sprintf("FSDirectory@%v", d.path)
}

type fsPublisher struct {
	*safefile.File
}

func (p *fsPublisher) Commit() error {
	return p.File.Commit()
}

func (p *fsPublisher) Discard() error {
	return p.File.Close()
}
