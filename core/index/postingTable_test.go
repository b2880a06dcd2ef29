package index

import (
	"fmt"
	"testing"

	"github.com/ironsweet/termshash/core/util"
	. "github.com/ironsweet/termshash/test_framework/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCreator struct {
	created int
}

func (c *countingCreator) CreatePostings(postings *PostingPool, start, count int) {
	for h := start; h < start+count; h++ {
		postings.Payload(h)[0] = 1
	}
	c.created += count
}

func newTestTable(t *testing.T) (*RawPostingTable, *PostingPool, *util.ByteBlockPool, *countingCreator) {
	counter := util.NewCounter()
	termPool := util.NewByteBlockPool(util.NewDirectTrackingAllocator(counter, nil))
	postings := NewPostingPool(4, util.NewIntBlockAllocator(counter, nil))
	creator := new(countingCreator)
	return NewRawPostingTable(termPool, postings, creator), postings, termPool, creator
}

// adds a term the way a frequency consumer would
func addFreq(t *testing.T, table *RawPostingTable, postings *PostingPool, term string) int {
	handle, isNew, err := table.Add([]byte(term))
	require.NoError(t, err)
	if !isNew {
		postings.Payload(handle)[0]++
	}
	return handle
}

func TestPostingTableDistinctTermsRegardlessOfOrder(t *testing.T) {
	r := Random()
	var tokens []string
	want := make(map[string]int32)
	for i, n := 0, AtLeast(r, 500); i < n; i++ {
		term := RandomTerm(r, 4)
		tokens = append(tokens, term)
		want[term]++
	}

	for round := 0; round < 3; round++ {
		r.Shuffle(len(tokens), func(i, j int) { tokens[i], tokens[j] = tokens[j], tokens[i] })
		table, postings, _, creator := newTestTable(t)
		for _, term := range tokens {
			addFreq(t, table, postings, term)
		}
		require.Equal(t, len(want), table.Size())
		assert.Equal(t, len(want), creator.created)
		for term, freq := range want {
			handle, ok := table.Lookup([]byte(term))
			require.True(t, ok, "term %q is missing", term)
			assert.Equal(t, freq, postings.Payload(handle)[0], "freq of %q", term)
		}
	}
}

func TestPostingTableRehashKeepsHandles(t *testing.T) {
	table, postings, _, _ := newTestTable(t)
	handles := make(map[string]int)
	for i := 0; i < 1000; i++ {
		term := fmt.Sprintf("term%04d", i)
		handles[term] = addFreq(t, table, postings, term)
		// the table is never more than half full
		assert.True(t, table.Size()<<1 <= len(table.hash))
	}
	assert.Equal(t, 1000, table.Size())
	for term, handle := range handles {
		found, ok := table.Lookup([]byte(term))
		require.True(t, ok)
		assert.Equal(t, handle, found)
		assert.Equal(t, term, string(table.Term(handle)))
		assert.Equal(t, int32(1), postings.Payload(handle)[0])
	}
	_, ok := table.Lookup([]byte("absent"))
	assert.False(t, ok)
}

func TestPostingTableSortedHandles(t *testing.T) {
	table, postings, _, _ := newTestTable(t)
	for _, term := range []string{"the", "fox", "the", "dog", "über", "Zebra", "fox"} {
		addFreq(t, table, postings, term)
	}
	var terms []string
	var freqs []int32
	for _, handle := range table.SortedHandles() {
		terms = append(terms, string(table.Term(handle)))
		freqs = append(freqs, postings.Payload(handle)[0])
	}
	assert.Equal(t, []string{"Zebra", "dog", "fox", "the", "über"}, terms)
	assert.Equal(t, []int32{1, 1, 2, 2, 1}, freqs)
}

func TestPostingTableReset(t *testing.T) {
	table, postings, termPool, _ := newTestTable(t)
	for i := 0; i < 300; i++ {
		addFreq(t, table, postings, fmt.Sprintf("t%v", i))
	}
	table.Reset()
	postings.Reset()
	termPool.Reset(false, false)
	assert.Equal(t, 0, table.Size())
	// an empty generation shrinks the table back
	table.Reset()
	assert.Equal(t, DEFAULT_POSTING_TABLE_CAPACITY, len(table.hash))

	_, ok := table.Lookup([]byte("t1"))
	assert.False(t, ok)
	handle := addFreq(t, table, postings, "t1")
	assert.Equal(t, 0, handle)
	assert.Equal(t, int32(1), postings.Payload(handle)[0])
}

func TestSecondaryPostingTable(t *testing.T) {
	primary, postings, termPool, _ := newTestTable(t)
	secondaryPostings := NewPostingPool(4, util.NewIntBlockAllocator(util.NewCounter(), nil))
	secondary := NewSecondaryRawPostingTable(termPool, secondaryPostings, new(countingCreator))

	for _, term := range []string{"a", "b", "a", "c", "b", "a"} {
		handle := addFreq(t, primary, postings, term)
		textStart := int(postings.Record(handle)[POSTING_TEXT_START])
		h2, isNew, err := secondary.AddByTextStart(textStart)
		require.NoError(t, err)
		if !isNew {
			secondaryPostings.Payload(h2)[0]++
		}
	}
	assert.Equal(t, 3, secondary.Size())
	for _, handle := range secondary.SortedHandles() {
		term := secondary.Term(handle)
		h1, ok := primary.Lookup(term)
		require.True(t, ok)
		assert.Equal(t, postings.Payload(h1)[0], secondaryPostings.Payload(handle)[0], "freq of %s", term)
	}
}
