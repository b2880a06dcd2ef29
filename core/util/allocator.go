package util

import (
	"sync/atomic"
)

// util/Counter.java

/* Simple counter used to track how much RAM the indexing structures hold. */
type Counter interface {
	AddAndGet(delta int64) int64
	Get() int64
}

func NewCounter() Counter {
	return &serialCounter{0}
}

func NewAtomicCounter() Counter {
	return &atomicCounter{0}
}

type serialCounter struct {
	count int64
}

func (sc *serialCounter) AddAndGet(delta int64) int64 {
	sc.count += delta
	return sc.count
}

func (sc *serialCounter) Get() int64 {
	return sc.count
}

type atomicCounter struct {
	count int64
}

func (ac *atomicCounter) AddAndGet(delta int64) int64 {
	return atomic.AddInt64(&ac.count, delta)
}

func (ac *atomicCounter) Get() int64 {
	return atomic.LoadInt64(&ac.count)
}

// util/ByteBlockPool.Allocator

/*
Hands out fixed size blocks to the block pools. Blocks handed back via
Recycle() may be given out again by a later Allocate(), so callers
must not keep references to recycled blocks.
*/
type ByteAllocator interface {
	BlockSize() int
	Allocate() ([]byte, error)
	Recycle(blocks [][]byte)
}

type IntAllocator interface {
	BlockSize() int
	Allocate() ([]int32, error)
	Recycle(blocks [][]int32)
}

/*
An allocator that never recycles blocks itself, but tracks how much
total RAM is in use and reserves it against an optional MemoryBudget.
Allocation fails with ErrOutOfMemory once the budget is exhausted.
*/
type DirectTrackingAllocator struct {
	blockSize int
	bytesUsed Counter
	budget    *MemoryBudget
}

func NewDirectTrackingAllocator(bytesUsed Counter, budget *MemoryBudget) *DirectTrackingAllocator {
	return NewDirectTrackingAllocatorBySize(BYTE_BLOCK_SIZE, bytesUsed, budget)
}

func NewDirectTrackingAllocatorBySize(blockSize int, bytesUsed Counter, budget *MemoryBudget) *DirectTrackingAllocator {
	assertTrue(blockSize > 0)
	return &DirectTrackingAllocator{blockSize, bytesUsed, budget}
}

func (a *DirectTrackingAllocator) BlockSize() int { return a.blockSize }

func (a *DirectTrackingAllocator) Allocate() ([]byte, error) {
	if err := a.budget.Acquire(int64(a.blockSize)); err != nil {
		return nil, err
	}
	a.bytesUsed.AddAndGet(int64(a.blockSize))
	return make([]byte, a.blockSize), nil
}

func (a *DirectTrackingAllocator) Recycle(blocks [][]byte) {
	n := int64(len(blocks) * a.blockSize)
	a.bytesUsed.AddAndGet(-n)
	a.budget.Release(n)
	for i := range blocks {
		blocks[i] = nil
	}
}

/* Int flavour of DirectTrackingAllocator. */
type IntBlockAllocator struct {
	blockSize int
	bytesUsed Counter
	budget    *MemoryBudget
}

func NewIntBlockAllocator(bytesUsed Counter, budget *MemoryBudget) *IntBlockAllocator {
	return &IntBlockAllocator{INT_BLOCK_SIZE, bytesUsed, budget}
}

func (a *IntBlockAllocator) BlockSize() int { return a.blockSize }

func (a *IntBlockAllocator) Allocate() ([]int32, error) {
	n := int64(a.blockSize * NUM_BYTES_INT32)
	if err := a.budget.Acquire(n); err != nil {
		return nil, err
	}
	a.bytesUsed.AddAndGet(n)
	return make([]int32, a.blockSize), nil
}

func (a *IntBlockAllocator) Recycle(blocks [][]int32) {
	n := int64(len(blocks) * a.blockSize * NUM_BYTES_INT32)
	a.bytesUsed.AddAndGet(-n)
	a.budget.Release(n)
	for i := range blocks {
		blocks[i] = nil
	}
}
