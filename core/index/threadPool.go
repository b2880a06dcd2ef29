package index

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// index/DocumentsWriterPerThreadPool.java

/*
ThreadState holds the per-thread indexing chain of one goroutine. It
is used by one goroutine at a time, between getAndLock() and
release().
*/
type ThreadState struct {
	docState *docState
	consumer *DocInverterPerThread
}

/*
DocumentsWriterPerThreadPool hands out ThreadStates to indexing
goroutines. At most maxThreadStates goroutines index at once; more
wait for a state to be released. States are created lazily and kept
for the lifetime of the pool, so their pools and tables are reused
across generations.
*/
type DocumentsWriterPerThreadPool struct {
	sync.Locker
	sem          *semaphore.Weighted
	threadStates []*ThreadState
	free         []*ThreadState
	maxStates    int
	newState     func() *ThreadState
}

func NewDocumentsWriterPerThreadPool(maxThreadStates int,
	newState func() *ThreadState) *DocumentsWriterPerThreadPool {

	assert2(maxThreadStates >= 1, "maxThreadStates must be >= 1 but was: %v", maxThreadStates)
	return &DocumentsWriterPerThreadPool{
		Locker:    &sync.Mutex{},
		sem:       semaphore.NewWeighted(int64(maxThreadStates)),
		maxStates: maxThreadStates,
		newState:  newState,
	}
}

/* Blocks until a ThreadState is available or ctx is done. FIFO otherwise. */
func (tp *DocumentsWriterPerThreadPool) getAndLock(ctx context.Context) (*ThreadState, error) {
	if err := tp.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	tp.Lock()
	defer tp.Unlock()
	if n := len(tp.free); n > 0 {
		res := tp.free[0]
		tp.free = tp.free[1:]
		return res, nil
	}
	// holding a permit means fewer than maxStates are in use
	assertTrue(len(tp.threadStates) < tp.maxStates)
	res := tp.newState()
	tp.threadStates = append(tp.threadStates, res)
	return res, nil
}

/* Release the ThreadState back to the pool. */
func (tp *DocumentsWriterPerThreadPool) release(ts *ThreadState) {
	tp.Lock()
	tp.free = append(tp.free, ts)
	tp.Unlock()
	tp.sem.Release(1)
}

/*
Calls f for every ThreadState created so far. Callers must exclude
indexing, e.g. hold the exclusive lock of the DocumentsWriter.
*/
func (tp *DocumentsWriterPerThreadPool) foreach(f func(state *ThreadState)) {
	tp.Lock()
	states := append([]*ThreadState(nil), tp.threadStates...)
	tp.Unlock()
	for _, state := range states {
		f(state)
	}
}

func (tp *DocumentsWriterPerThreadPool) numThreadStates() int {
	tp.Lock()
	defer tp.Unlock()
	return len(tp.threadStates)
}
