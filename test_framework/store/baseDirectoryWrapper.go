package store

import (
	"sync/atomic"

	"github.com/ironsweet/termshash/core/store"
)

// store/BaseDirectoryWrapper.java

/*
Calls CheckOnClose, if set, before closing the delegate. Tests use it
to open every segment left in the directory.

do NOT make any methods in this type synchronized, no randoms, no
nothing.
*/
type BaseDirectoryWrapper struct {
	store.Directory
	closed       atomic.Bool
	CheckOnClose func(dir store.Directory) error
}

func NewBaseDirectoryWrapper(delegate store.Directory) *BaseDirectoryWrapper {
	return &BaseDirectoryWrapper{Directory: delegate}
}

func (dw *BaseDirectoryWrapper) IsOpen() bool {
	return !dw.closed.Load()
}

func (dw *BaseDirectoryWrapper) Close() error {
	if dw.closed.Swap(true) {
		return nil
	}
	if dw.CheckOnClose != nil {
		if err := dw.CheckOnClose(dw.Directory); err != nil {
			return err
		}
	}
	return dw.Directory.Close()
}
