package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBlockPoolTerms(t *testing.T) {
	bytesUsed := NewCounter()
	pool := NewByteBlockPool(NewDirectTrackingAllocator(bytesUsed, nil))

	long := bytes.Repeat([]byte("x"), 300)
	var starts []int
	terms := [][]byte{[]byte("the"), []byte(""), long, []byte("fox")}
	for _, term := range terms {
		start, err := pool.AppendTerm(term)
		require.NoError(t, err)
		starts = append(starts, start)
	}
	for i, term := range terms {
		assert.Equal(t, term, pool.Term(starts[i]))
	}
	assert.Equal(t, int64(BYTE_BLOCK_SIZE), bytesUsed.Get())

	_, err := pool.AppendTerm(make([]byte, BYTE_BLOCK_SIZE))
	assert.IsType(t, MaxBytesLengthExceededError(""), err)

	pool.Reset(false, false)
	assert.Equal(t, int64(0), bytesUsed.Get())
}

func TestByteBlockPoolSliceForwarding(t *testing.T) {
	pool := NewByteBlockPool(NewDirectTrackingAllocator(NewCounter(), nil))
	require.NoError(t, pool.NextBuffer())

	start, err := pool.NewSlice(FIRST_LEVEL_SIZE)
	require.NoError(t, err)
	assert.Equal(t, byte(16), pool.Buffer[start+FIRST_LEVEL_SIZE-1])

	// write until we hit the end marker, then grow
	upto := start
	for pool.Buffer[upto] == 0 {
		pool.Buffer[upto] = 0xAA
		upto++
	}
	next, err := pool.AllocSlice(pool.Buffer, upto)
	require.NoError(t, err)
	assert.Equal(t, start+FIRST_LEVEL_SIZE+3, next)

	// the last 3 written bytes were moved forward
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA}, pool.Buffer[next-3:next])
	// and the forwarding address points at the new slice
	addr := int(pool.Buffer[upto-3])<<24 | int(pool.Buffer[upto-2])<<16 |
		int(pool.Buffer[upto-1])<<8 | int(pool.Buffer[upto])
	assert.Equal(t, next-3, addr)
	// level 1 slice is 14 bytes and carries its level in the end marker
	assert.Equal(t, byte(16|1), pool.Buffer[next-3+LEVEL_SIZE_ARRAY[1]-1])
}

func TestByteBlockPoolBudget(t *testing.T) {
	budget := NewMemoryBudget(BYTE_BLOCK_SIZE)
	pool := NewByteBlockPool(NewDirectTrackingAllocator(NewCounter(), budget))

	require.NoError(t, pool.NextBuffer())
	assert.Equal(t, ErrOutOfMemory, pool.NextBuffer())
	assert.Equal(t, int64(BYTE_BLOCK_SIZE), budget.Used())

	pool.Reset(true, false)
	assert.Equal(t, int64(0), budget.Used())
	require.NoError(t, pool.NextBuffer())
}

func TestByteBlockPoolReuseFirst(t *testing.T) {
	pool := NewByteBlockPool(NewDirectTrackingAllocator(NewCounter(), nil))
	_, err := pool.AppendTerm([]byte("stale"))
	require.NoError(t, err)
	pool.Reset(true, true)

	assert.Equal(t, 0, pool.ByteUpto)
	assert.Equal(t, make([]byte, 16), pool.Buffer[:16])
}

func TestIntBlockPool(t *testing.T) {
	counter := NewCounter()
	pool := NewIntBlockPool(NewIntBlockAllocator(counter, nil))
	require.NoError(t, pool.NextBuffer())
	pool.Buffer[0] = 7
	pool.IntUpto = 1
	require.NoError(t, pool.NextBuffer())
	assert.Equal(t, INT_BLOCK_SIZE, pool.IntOffset)
	assert.Equal(t, int64(2*INT_BLOCK_SIZE*NUM_BYTES_INT32), counter.Get())

	pool.Reset(true, true)
	assert.Equal(t, int32(0), pool.Buffer[0])
	assert.Equal(t, int64(INT_BLOCK_SIZE*NUM_BYTES_INT32), counter.Get())
}
