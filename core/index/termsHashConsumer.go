package index

import (
	"github.com/ironsweet/termshash/core/index/model"
)

// index/TermsHashConsumer.java

/*
A feature that accumulates per-term data in the terms hash, e.g.
postings or term vectors. Each TermsHash drives exactly one consumer;
consumers never see each other.
*/
type TermsHashConsumer interface {
	// Initializes freshly allocated records, e.g. zeroes counters.
	PostingsCreator
	// Width in bytes of the consumer's part of a posting record. It is
	// queried once, before the first allocation.
	BytesPerPosting() int
	// Creates the state of one indexing thread.
	AddThread(perThread *TermsHashPerThread) TermsHashConsumerPerThread
	// Writes the feature's part of the segment described by state,
	// registering every file it creates in state. Called exactly once
	// per flush with every thread's state.
	Flush(threadsAndFields map[TermsHashConsumerPerThread][]TermsHashConsumerPerField,
		state *SegmentWriteState) error
	// Discards everything not yet flushed, without writing.
	Abort()
	// Closes output shared across segments (the doc store).
	CloseDocStore(state *SegmentWriteState) error
	SetFieldInfos(fieldInfos *model.FieldInfos)
}

type TermsHashConsumerPerThread interface {
	StartDocument() error
	FinishDocument() error
	AddField(perField *TermsHashPerField, fieldInfo *model.FieldInfo) TermsHashConsumerPerField
	Abort()
}

type TermsHashConsumerPerField interface {
	// Number of byte streams written per term.
	StreamCount() int
	// Called once per document with all instances of the field.
	// Returns false to skip the field for this document.
	Start(fields []model.IndexableField) (bool, error)
	// Called when a term is seen for the first time in the generation.
	NewTerm(handle int) error
	// Called for every later occurrence of the term.
	AddTerm(handle int) error
	// Called when the field of the current document is done.
	Finish() error
	Abort()
}
