package util

import (
	"fmt"
)

// util/ByteBlockPool.java

/*
Class that Posting and PostingVector use to write byte streams into
shared fixed-size []byte arrays. The idea is to allocate slices of
increasing lengths. For example, the first slice is 5 bytes, the next
slice is 14, etc. We start by writing our bytes into the first 5
bytes. When we hit the end of the slice, we allocate the next slice
and then write the address of the new slice into the last 4 bytes of
the previous slice (the "forwarding address").

Each slice is filled with 0's initially, and we mark the end with a
non-zero byte. This way the methods that are writing into the slice
don't need to record its length and instead allocate a new slice once
they hit a non-zero byte.
*/

const (
	BYTE_BLOCK_SHIFT = 15
	BYTE_BLOCK_SIZE  = 1 << BYTE_BLOCK_SHIFT
	BYTE_BLOCK_MASK  = BYTE_BLOCK_SIZE - 1
)

/*
An array holding the offset into LEVEL_SIZE_ARRAY to quickly navigate
to the next slice level.
*/
var NEXT_LEVEL_ARRAY = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 9}

/* An array holding the level sizes for byte slices. */
var LEVEL_SIZE_ARRAY = []int{5, 14, 20, 30, 40, 40, 80, 80, 120, 200}

/* The first level size for new slices */
var FIRST_LEVEL_SIZE = LEVEL_SIZE_ARRAY[0]

type MaxBytesLengthExceededError string

func (e MaxBytesLengthExceededError) Error() string {
	return string(e)
}

type ByteBlockPool struct {
	// array of buffers currently used in the pool. Buffers are
	// allocated if needed don't modify this outside of this class.
	Buffers [][]byte
	// index into the buffers array pointing to the current buffer
	// used as the head
	bufferUpto int
	// Where we are in the head buffer
	ByteUpto int
	// Current head buffer
	Buffer []byte
	// Current head offset
	ByteOffset int

	allocator ByteAllocator
}

func NewByteBlockPool(allocator ByteAllocator) *ByteBlockPool {
	assert2(allocator.BlockSize() == BYTE_BLOCK_SIZE,
		"allocator block size must be %v (got %v)", BYTE_BLOCK_SIZE, allocator.BlockSize())
	return &ByteBlockPool{
		bufferUpto: -1,
		ByteUpto:   BYTE_BLOCK_SIZE,
		ByteOffset: -BYTE_BLOCK_SIZE,
		allocator:  allocator,
	}
}

/*
Expert: Resets the pool to its initial state, recycling buffers back
to the allocator. If reuseFirst is set the first buffer is kept; it
must then be zero filled since slices rely on zeroed memory.
*/
func (p *ByteBlockPool) Reset(zeroFillBuffers, reuseFirst bool) {
	if p.bufferUpto == -1 {
		return
	}
	// We allocated at least one buffer
	if zeroFillBuffers {
		for i := 0; i < p.bufferUpto; i++ {
			// Fully zero fill buffers that we fully used
			clear(p.Buffers[i])
		}
		// Partial zero fill the final buffer
		clear(p.Buffers[p.bufferUpto][:p.ByteUpto])
	}
	assert2(!reuseFirst || zeroFillBuffers, "reused buffers must be zero filled")

	if p.bufferUpto > 0 || !reuseFirst {
		offset := 0
		if reuseFirst {
			offset = 1
		}
		// Recycle all but the first buffer
		p.allocator.Recycle(p.Buffers[offset : 1+p.bufferUpto])
		p.Buffers = p.Buffers[:offset]
	}
	if reuseFirst {
		// Re-use the first buffer
		p.bufferUpto = 0
		p.ByteUpto = 0
		p.ByteOffset = 0
		p.Buffer = p.Buffers[0]
	} else {
		p.bufferUpto = -1
		p.ByteUpto = BYTE_BLOCK_SIZE
		p.ByteOffset = -BYTE_BLOCK_SIZE
		p.Buffer = nil
	}
}

/*
Advances the pool to its next buffer. This method should be called
once after the constructor to initialize the pool. In contrast to the
constructor a Reset() call will advance the pool to its first buffer
immediately.
*/
func (p *ByteBlockPool) NextBuffer() error {
	buffer, err := p.allocator.Allocate()
	if err != nil {
		return err
	}
	p.Buffers = append(p.Buffers, buffer)
	p.bufferUpto++
	p.Buffer = buffer
	p.ByteUpto = 0
	p.ByteOffset += BYTE_BLOCK_SIZE
	return nil
}

/* Allocates a new slice with the given size. */
func (p *ByteBlockPool) NewSlice(size int) (int, error) {
	if p.ByteUpto > BYTE_BLOCK_SIZE-size {
		if err := p.NextBuffer(); err != nil {
			return 0, err
		}
	}
	upto := p.ByteUpto
	p.ByteUpto += size
	p.Buffer[p.ByteUpto-1] = 16
	return upto, nil
}

/*
Creates a new byte slice with the given starting size and returns
the slices offset in the pool.
*/
func (p *ByteBlockPool) AllocSlice(slice []byte, upto int) (int, error) {
	level := int(slice[upto] & 15)
	newLevel := NEXT_LEVEL_ARRAY[level]
	newSize := LEVEL_SIZE_ARRAY[newLevel]

	// maybe allocate another block
	if p.ByteUpto > BYTE_BLOCK_SIZE-newSize {
		if err := p.NextBuffer(); err != nil {
			return 0, err
		}
	}

	newUpto := p.ByteUpto
	offset := newUpto + p.ByteOffset
	p.ByteUpto += newSize

	// Copy forward the past 3 bytes (which we are about to overwrite
	// with the forwarding address):
	p.Buffer[newUpto] = slice[upto-3]
	p.Buffer[newUpto+1] = slice[upto-2]
	p.Buffer[newUpto+2] = slice[upto-1]

	// Write forwarding address at end of last slice:
	slice[upto-3] = byte(offset >> 24)
	slice[upto-2] = byte(offset >> 16)
	slice[upto-1] = byte(offset >> 8)
	slice[upto] = byte(offset)

	// Write new level:
	p.Buffer[p.ByteUpto-1] = byte(16 | newLevel)

	return newUpto + 3, nil
}

/*
Appends a length-prefixed term to the pool and returns its global
start offset. The length is encoded as a vint of 1 or 2 bytes, so
terms can be at most BYTE_BLOCK_SIZE-2 bytes long.
*/
func (p *ByteBlockPool) AppendTerm(term []byte) (int, error) {
	length := len(term)
	if len2 := 2 + length; len2+p.ByteUpto > BYTE_BLOCK_SIZE {
		if len2 > BYTE_BLOCK_SIZE {
			return 0, MaxBytesLengthExceededError(fmt.Sprintf(
				"bytes can be at most %v in length; got %v",
				BYTE_BLOCK_SIZE-2, length))
		}
		if err := p.NextBuffer(); err != nil {
			return 0, err
		}
	}
	buffer := p.Buffer
	upto := p.ByteUpto
	textStart := upto + p.ByteOffset
	if length < 128 {
		// 1 byte to store length
		buffer[upto] = byte(length)
		p.ByteUpto += length + 1
		copy(buffer[upto+1:], term)
	} else {
		// 2 bytes to store length
		buffer[upto] = byte(0x80 | (length & 0x7f))
		buffer[upto+1] = byte((length >> 7) & 0xff)
		p.ByteUpto += length + 2
		copy(buffer[upto+2:], term)
	}
	return textStart, nil
}

/*
Returns the term stored at textStart by AppendTerm. The returned
slice aliases pool memory and is only valid until the next Reset().
*/
func (p *ByteBlockPool) Term(textStart int) []byte {
	bytes := p.Buffers[textStart>>BYTE_BLOCK_SHIFT]
	pos := textStart & BYTE_BLOCK_MASK
	if bytes[pos]&0x80 == 0 {
		// length is 1 byte
		length := int(bytes[pos])
		return bytes[pos+1 : pos+1+length]
	}
	// length is 2 bytes
	length := int(bytes[pos]&0x7f) + (int(bytes[pos+1]) << 7)
	return bytes[pos+2 : pos+2+length]
}
