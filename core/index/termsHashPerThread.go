package index

import (
	"fmt"

	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/util"
)

// index/TermsHashPerThread.java

/* Life cycle of the in-memory generation of one thread. */
type GenerationState int

const (
	GENERATION_EMPTY = GenerationState(iota)
	GENERATION_ACCUMULATING
	GENERATION_FLUSHING
	GENERATION_FLUSHED
	GENERATION_ABORTING
	GENERATION_ABORTED
)

func (s GenerationState) String() string {
	switch s {
	case GENERATION_EMPTY:
		return "Empty"
	case GENERATION_ACCUMULATING:
		return "Accumulating"
	case GENERATION_FLUSHING:
		return "Flushing"
	case GENERATION_FLUSHED:
		return "Flushed"
	case GENERATION_ABORTING:
		return "Aborting"
	case GENERATION_ABORTED:
		return "Aborted"
	}
	return fmt.Sprintf("GenerationState(%d)", int(s))
}

/*
The pools and per-field tables of one TermsHash for one indexing
thread. Only the goroutine holding the owning thread state touches
it, except during flush and abort, which exclude indexing.
*/
type TermsHashPerThread struct {
	termsHash *TermsHash
	consumer  TermsHashConsumerPerThread
	next      *TermsHashPerThread
	primary   bool
	docState  *docState

	intPool  *util.IntBlockPool
	bytePool *util.ByteBlockPool
	// Where term bytes live: our own bytePool for a primary, the
	// primary's bytePool for a secondary.
	termBytePool *util.ByteBlockPool
	postings     *PostingPool

	fields []*TermsHashPerField
	state  GenerationState
}

func newTermsHashPerThread(ds *docState, termsHash *TermsHash,
	primaryPerThread *TermsHashPerThread) *TermsHashPerThread {

	perThread := &TermsHashPerThread{
		termsHash: termsHash,
		primary:   termsHash.primary,
		docState:  ds,
		intPool:   util.NewIntBlockPool(termsHash.intAllocator),
		bytePool:  util.NewByteBlockPool(termsHash.byteAllocator),
		postings:  NewPostingPool(termsHash.bytesPerPosting, termsHash.intAllocator),
	}
	if termsHash.primary {
		perThread.termBytePool = perThread.bytePool
	} else {
		assertTrue(primaryPerThread != nil)
		perThread.termBytePool = primaryPerThread.bytePool
	}
	perThread.consumer = termsHash.consumer.AddThread(perThread)
	if termsHash.next != nil {
		perThread.next = termsHash.next.addThread(ds, perThread)
	}
	return perThread
}

/* Current generation state, for inspection. */
func (h *TermsHashPerThread) State() GenerationState { return h.state }

/* Pool holding the posting records of this thread. */
func (h *TermsHashPerThread) Postings() *PostingPool { return h.postings }

/* Per-document state of the owning thread. */
func (h *TermsHashPerThread) DocID() int { return h.docState.docID }

func (h *TermsHashPerThread) InfoStream() util.InfoStream { return h.docState.infoStream }

func (h *TermsHashPerThread) addField(fieldState *FieldInvertState,
	fieldInfo *model.FieldInfo) *TermsHashPerField {

	perField := newTermsHashPerField(fieldState, h, fieldInfo)
	h.fields = append(h.fields, perField)
	return perField
}

/* A flushed or aborted generation is followed by a fresh, empty one. */
func (h *TermsHashPerThread) ensureGeneration() {
	if h.state == GENERATION_FLUSHED || h.state == GENERATION_ABORTED {
		h.state = GENERATION_EMPTY
	}
}

func (h *TermsHashPerThread) startDocument() error {
	h.ensureGeneration()
	assert2(h.state == GENERATION_EMPTY || h.state == GENERATION_ACCUMULATING,
		"cannot add documents while %v", h.state)
	h.state = GENERATION_ACCUMULATING
	if err := h.consumer.StartDocument(); err != nil {
		return err
	}
	if h.next != nil {
		return h.next.startDocument()
	}
	return nil
}

func (h *TermsHashPerThread) finishDocument() error {
	if err := h.consumer.FinishDocument(); err != nil {
		return err
	}
	if h.next != nil {
		return h.next.finishDocument()
	}
	return nil
}

func (h *TermsHashPerThread) beginFlush() {
	h.ensureGeneration()
	assert2(h.state == GENERATION_EMPTY || h.state == GENERATION_ACCUMULATING,
		"cannot flush while %v", h.state)
	h.state = GENERATION_FLUSHING
}

func (h *TermsHashPerThread) endFlush() {
	if h.state != GENERATION_FLUSHING {
		// this thread had nothing to flush
		return
	}
	h.reset(false)
	h.state = GENERATION_FLUSHED
}

/* Called on hitting an aborting error. Safe to call in any state. */
func (h *TermsHashPerThread) abort() {
	h.state = GENERATION_ABORTING
	defer func() {
		h.reset(false)
		h.state = GENERATION_ABORTED
	}()
	for _, perField := range h.fields {
		perField.abort()
	}
	h.consumer.Abort()
}

/*
Clears all state. A primary drops its buffers; the next generation
allocates them again. recyclePostings keeps the first buffer of each
pool, for the per-document reset of a secondary.
*/
func (h *TermsHashPerThread) reset(recyclePostings bool) {
	for _, perField := range h.fields {
		perField.reset()
	}
	if recyclePostings {
		h.intPool.Reset(false, true)
		h.bytePool.Reset(true, true)
	} else {
		h.intPool.Reset(false, false)
		h.bytePool.Reset(false, false)
	}
	h.postings.Reset()
}

/* Resets the per-document state of a secondary. */
func (h *TermsHashPerThread) resetDocument() {
	assert2(!h.primary, "only a secondary TermsHash is reset per document")
	h.reset(true)
}

func (h *TermsHashPerThread) release() {
	h.intPool.Reset(false, false)
	h.bytePool.Reset(false, false)
	h.postings.Release()
	h.fields = nil
}
