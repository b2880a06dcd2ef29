package util

// util/IntBlockPool.java

const (
	INT_BLOCK_SHIFT = 13
	INT_BLOCK_SIZE  = 1 << INT_BLOCK_SHIFT
	INT_BLOCK_MASK  = INT_BLOCK_SIZE - 1
)

/* A pool for int blocks similar to ByteBlockPool */
type IntBlockPool struct {
	// array of buffers currently used in the pool.
	Buffers [][]int32
	// index into the buffers array pointing to the current buffer
	// used as the head
	bufferUpto int
	// Pointer to the current position in head buffer
	IntUpto int
	// Current head buffer
	Buffer []int32
	// Current head offset
	IntOffset int

	allocator IntAllocator
}

func NewIntBlockPool(allocator IntAllocator) *IntBlockPool {
	return &IntBlockPool{
		bufferUpto: -1,
		IntUpto:    INT_BLOCK_SIZE,
		IntOffset:  -INT_BLOCK_SIZE,
		allocator:  allocator,
	}
}

/* Expert: Resets the pool to its initial state reusing the first buffer. */
func (pool *IntBlockPool) Reset(zeroFillBuffers, reuseFirst bool) {
	if pool.bufferUpto == -1 {
		return
	}
	if zeroFillBuffers {
		for i := 0; i < pool.bufferUpto; i++ {
			clear(pool.Buffers[i])
		}
		clear(pool.Buffers[pool.bufferUpto][:pool.IntUpto])
	}
	if pool.bufferUpto > 0 || !reuseFirst {
		offset := 0
		if reuseFirst {
			offset = 1
		}
		pool.allocator.Recycle(pool.Buffers[offset : 1+pool.bufferUpto])
		pool.Buffers = pool.Buffers[:offset]
	}
	if reuseFirst {
		pool.bufferUpto = 0
		pool.IntUpto = 0
		pool.IntOffset = 0
		pool.Buffer = pool.Buffers[0]
	} else {
		pool.bufferUpto = -1
		pool.IntUpto = INT_BLOCK_SIZE
		pool.IntOffset = -INT_BLOCK_SIZE
		pool.Buffer = nil
	}
}

/*
Advances the pool to its next buffer. This method should be called
once after the constructor to initialize the pool.
*/
func (pool *IntBlockPool) NextBuffer() error {
	buffer, err := pool.allocator.Allocate()
	if err != nil {
		return err
	}
	pool.Buffers = append(pool.Buffers, buffer)
	pool.bufferUpto++
	pool.Buffer = buffer
	pool.IntUpto = 0
	pool.IntOffset += INT_BLOCK_SIZE
	return nil
}
