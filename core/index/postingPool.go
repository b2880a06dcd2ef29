package index

import (
	"github.com/ironsweet/termshash/core/util"
)

/*
Words of every posting record owned by the hashing layer, ahead of
the consumer payload.
*/
const (
	POSTING_TEXT_START = 0 // start of the term bytes in the term byte pool
	POSTING_INT_START  = 1 // address of the stream write pointers in the int pool
	POSTING_BYTE_START = 2 // address of the first stream slice in the byte pool
	POSTING_HEADER     = 3
)

/* Maximum number of recycled slabs a pool keeps after Reset(). */
const MAX_FREE_POSTING_SLABS = 4

/*
Arena for the raw posting records of one terms hash, for one thread
and one generation. Records have a fixed width: the header words plus
the consumer's BytesPerPosting() rounded up to whole 32-bit words.

Records are addressed by integer handles. Slabs are fixed-size and
never move, so a handle stays valid while the pool grows; it is
invalidated en masse by Reset() or Release().
*/
type PostingPool struct {
	width     int // words per record
	perSlab   int // records per slab
	allocator util.IntAllocator
	slabs     [][]int32
	free      [][]int32
	count     int
}

func NewPostingPool(bytesPerPosting int, allocator util.IntAllocator) *PostingPool {
	assert2(bytesPerPosting >= 0, "bytesPerPosting must be >= 0 (got %v)", bytesPerPosting)
	width := POSTING_HEADER + (bytesPerPosting+util.NUM_BYTES_INT32-1)/util.NUM_BYTES_INT32
	assert2(width <= allocator.BlockSize(), "posting width %v exceeds slab size %v", width, allocator.BlockSize())
	return &PostingPool{
		width:     width,
		perSlab:   allocator.BlockSize() / width,
		allocator: allocator,
	}
}

/* Words per record, header included. */
func (p *PostingPool) Width() int { return p.width }

/* Number of records allocated in this generation. */
func (p *PostingPool) Size() int { return p.count }

/*
Returns the handle of the first of count new records; the others
follow it. Fails with util.ErrOutOfMemory when the RAM budget cannot
back a new slab, in which case no record was allocated.
*/
func (p *PostingPool) Allocate(count int) (int, error) {
	assertTrue(count > 0)
	for need := p.count + count; len(p.slabs)*p.perSlab < need; {
		if err := p.grow(); err != nil {
			return 0, err
		}
	}
	start := p.count
	p.count += count
	return start, nil
}

func (p *PostingPool) grow() error {
	if n := len(p.free); n > 0 {
		slab := p.free[n-1]
		p.free = p.free[:n-1]
		// recycled slabs must not leak the previous generation
		clear(slab)
		p.slabs = append(p.slabs, slab)
		return nil
	}
	slab, err := p.allocator.Allocate()
	if err != nil {
		return err
	}
	p.slabs = append(p.slabs, slab)
	return nil
}

/* Returns the whole record, header included, aliasing pool memory. */
func (p *PostingPool) Record(handle int) []int32 {
	assert2(handle >= 0 && handle < p.count, "invalid posting handle %v (size=%v)", handle, p.count)
	slab := p.slabs[handle/p.perSlab]
	off := (handle % p.perSlab) * p.width
	return slab[off : off+p.width : off+p.width]
}

/* Returns the consumer's part of the record. */
func (p *PostingPool) Payload(handle int) []int32 {
	return p.Record(handle)[POSTING_HEADER:]
}

/*
Invalidates all records. Slabs go to the free list, from which they
are handed out again zero-filled; slabs beyond MAX_FREE_POSTING_SLABS
are returned to the allocator.
*/
func (p *PostingPool) Reset() {
	p.free = append(p.free, p.slabs...)
	for i := range p.slabs {
		p.slabs[i] = nil
	}
	p.slabs = p.slabs[:0]
	if n := len(p.free); n > MAX_FREE_POSTING_SLABS {
		p.allocator.Recycle(p.free[MAX_FREE_POSTING_SLABS:])
		p.free = p.free[:MAX_FREE_POSTING_SLABS]
	}
	p.count = 0
}

/* Invalidates all records and returns every slab to the allocator. */
func (p *PostingPool) Release() {
	p.Reset()
	p.allocator.Recycle(p.free)
	p.free = p.free[:0]
}
