package util

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrOutOfMemory is returned when an allocation would exceed the
// configured RAM budget. It is fatal to the current flush generation.
var ErrOutOfMemory = errors.New("indexing RAM budget exhausted")

/*
MemoryBudget reserves RAM for the indexing buffers of all threads. A
nil budget, or one created with a non-positive limit, only tracks
usage and never fails. Acquire never blocks: callers decide whether
to flush or abort.
*/
type MemoryBudget struct {
	limit int64
	sem   *semaphore.Weighted // nil if unlimited
	used  atomic.Int64
}

func NewMemoryBudget(limitBytes int64) *MemoryBudget {
	b := &MemoryBudget{limit: limitBytes}
	if limitBytes > 0 {
		b.sem = semaphore.NewWeighted(limitBytes)
	}
	return b
}

func (b *MemoryBudget) Acquire(n int64) error {
	if b == nil || n <= 0 {
		return nil
	}
	if b.sem != nil && !b.sem.TryAcquire(n) {
		return ErrOutOfMemory
	}
	b.used.Add(n)
	return nil
}

func (b *MemoryBudget) Release(n int64) {
	if b == nil || n <= 0 {
		return
	}
	if b.sem != nil {
		b.sem.Release(n)
	}
	b.used.Add(-n)
}

func (b *MemoryBudget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// Returns the limit in bytes, 0 if unlimited.
func (b *MemoryBudget) Limit() int64 {
	if b == nil || b.limit < 0 {
		return 0
	}
	return b.limit
}
