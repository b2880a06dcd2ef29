package index

import (
	"bytes"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/ironsweet/termshash/core/util"
)

// util/BytesRefHash.java

const DEFAULT_POSTING_TABLE_CAPACITY = 4

/* Initializes freshly allocated posting records for one consumer. */
type PostingsCreator interface {
	CreatePostings(postings *PostingPool, start, count int)
}

/*
RawPostingTable maps the unique terms of one field, in one thread and
one generation, to posting records of a PostingPool.

The table is open-addressed with linear probing over a power-of-two
slot array and rehashes when it becomes half full. Slots hold record
handles, never records, so growing the table does not move anything a
consumer may hold on to. Entries are never removed individually;
Reset() drops them all at once.

Term bytes are stored once, length-prefixed, in the term pool. A
secondary table keys on the text start of a term in a primary table's
term pool instead of the bytes themselves (see AddByTextStart()).
*/
type RawPostingTable struct {
	termPool *util.ByteBlockPool
	postings *PostingPool
	creator  PostingsCreator
	// keys on text starts of a shared term pool
	byTextStart bool

	hash     []int32 // -1 marks an empty slot
	hashMask int
	count    int
}

func NewRawPostingTable(termPool *util.ByteBlockPool, postings *PostingPool,
	creator PostingsCreator) *RawPostingTable {

	t := &RawPostingTable{
		termPool: termPool,
		postings: postings,
		creator:  creator,
	}
	t.resize(DEFAULT_POSTING_TABLE_CAPACITY)
	return t
}

/*
Creates a table for a secondary terms hash. Its terms live in the
primary's term pool and are only ever added with AddByTextStart().
*/
func NewSecondaryRawPostingTable(termPool *util.ByteBlockPool, postings *PostingPool,
	creator PostingsCreator) *RawPostingTable {

	t := NewRawPostingTable(termPool, postings, creator)
	t.byTextStart = true
	return t
}

func (t *RawPostingTable) resize(size int) {
	t.hash = make([]int32, size)
	for i := range t.hash {
		t.hash[i] = -1
	}
	t.hashMask = size - 1
}

/* Number of unique terms in the table. */
func (t *RawPostingTable) Size() int { return t.count }

func hashTerm(term []byte) int {
	return int(xxhash.Sum64(term) >> 1)
}

func hashTextStart(textStart int) int {
	// Fibonacci hashing; textStarts are clustered
	return int((uint64(textStart) * 0x9E3779B97F4A7C15) >> 33)
}

func (t *RawPostingTable) textStart(handle int32) int {
	return int(t.postings.Record(int(handle))[POSTING_TEXT_START])
}

func (t *RawPostingTable) findTerm(term []byte) (slot int, found bool) {
	slot = hashTerm(term) & t.hashMask
	for {
		e := t.hash[slot]
		if e == -1 {
			return slot, false
		}
		if bytes.Equal(t.termPool.Term(t.textStart(e)), term) {
			return slot, true
		}
		slot = (slot + 1) & t.hashMask
	}
}

func (t *RawPostingTable) findTextStart(textStart int) (slot int, found bool) {
	slot = hashTextStart(textStart) & t.hashMask
	for {
		e := t.hash[slot]
		if e == -1 {
			return slot, false
		}
		if t.textStart(e) == textStart {
			return slot, true
		}
		slot = (slot + 1) & t.hashMask
	}
}

/* Returns the handle of the record for term, if present. */
func (t *RawPostingTable) Lookup(term []byte) (int, bool) {
	slot, found := t.findTerm(term)
	if !found {
		return -1, false
	}
	return int(t.hash[slot]), true
}

/* Like Lookup(), keyed on a text start in the shared term pool. */
func (t *RawPostingTable) LookupByTextStart(textStart int) (int, bool) {
	slot, found := t.findTextStart(textStart)
	if !found {
		return -1, false
	}
	return int(t.hash[slot]), true
}

/*
Returns the record handle for term, inserting it if it is new. New
records are stamped with the text start of the term and handed to the
consumer's CreatePostings() before insertion. An error means the
generation ran out of memory; the table is unchanged.
*/
func (t *RawPostingTable) Add(term []byte) (handle int, isNew bool, err error) {
	assert2(!t.byTextStart, "secondary tables are keyed by text start")
	slot, found := t.findTerm(term)
	if found {
		return int(t.hash[slot]), false, nil
	}
	textStart, err := t.termPool.AppendTerm(term)
	if err != nil {
		return -1, false, err
	}
	return t.insert(slot, textStart)
}

/*
Returns the record handle for the term stored at textStart of the
shared term pool, inserting it if it is new. The term bytes are not
copied again.
*/
func (t *RawPostingTable) AddByTextStart(textStart int) (handle int, isNew bool, err error) {
	assert2(t.byTextStart, "primary tables are keyed by term bytes")
	slot, found := t.findTextStart(textStart)
	if found {
		return int(t.hash[slot]), false, nil
	}
	return t.insert(slot, textStart)
}

func (t *RawPostingTable) insert(slot, textStart int) (int, bool, error) {
	handle, err := t.postings.Allocate(1)
	if err != nil {
		return -1, false, err
	}
	t.postings.Record(handle)[POSTING_TEXT_START] = int32(textStart)
	t.creator.CreatePostings(t.postings, handle, 1)

	t.hash[slot] = int32(handle)
	t.count++
	if t.count<<1 > len(t.hash) {
		t.rehash(len(t.hash) << 1)
	}
	return handle, true, nil
}

func (t *RawPostingTable) rehash(newSize int) {
	assertTrue(newSize&(newSize-1) == 0)
	old := t.hash
	t.resize(newSize)
	for _, e := range old {
		if e == -1 {
			continue
		}
		var code int
		if t.byTextStart {
			code = hashTextStart(t.textStart(e))
		} else {
			code = hashTerm(t.termPool.Term(t.textStart(e)))
		}
		slot := code & t.hashMask
		for t.hash[slot] != -1 {
			slot = (slot + 1) & t.hashMask
		}
		t.hash[slot] = e
	}
}

/* Returns the term bytes of a record. Only valid until the term pool is reset. */
func (t *RawPostingTable) Term(handle int) []byte {
	return t.termPool.Term(t.textStart(int32(handle)))
}

/*
Returns every handle of the table, sorted by term bytes in unsigned
byte order, which is also unicode code point order for UTF-8.
*/
func (t *RawPostingTable) SortedHandles() []int {
	handles := make([]int, 0, t.count)
	for _, e := range t.hash {
		if e != -1 {
			handles = append(handles, int(e))
		}
	}
	slices.SortFunc(handles, func(a, b int) int {
		return bytes.Compare(t.Term(a), t.Term(b))
	})
	return handles
}

/*
Forgets every entry. A table that grew much larger than what it last
held is shrunk back.
*/
func (t *RawPostingTable) Reset() {
	if size := len(t.hash); size > DEFAULT_POSTING_TABLE_CAPACITY && t.count<<3 < size {
		newSize := DEFAULT_POSTING_TABLE_CAPACITY
		for newSize < t.count<<1 {
			newSize <<= 1
		}
		t.resize(newSize)
	} else {
		for i := range t.hash {
			t.hash[i] = -1
		}
	}
	t.count = 0
}
