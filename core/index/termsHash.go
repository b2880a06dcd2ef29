package index

import (
	"sync"

	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/util"
)

// index/TermsHash.java

/*
This class is passed each token produced by the analyzer on each
field during indexing, and it stores these tokens in a hash table,
and allocates separate byte streams per token. Consumers of this
class, eg FreqProxTermsWriter and TermVectorsTermsWriter, write their
own byte streams under each term.

A primary TermsHash may be chained to a secondary one, which sees the
same terms by their text start in the primary's term pool, so one
inversion pass feeds two consumers.
*/
type TermsHash struct {
	consumer TermsHashConsumer
	next     *TermsHash
	primary  bool

	bytesPerPosting int
	byteAllocator   util.ByteAllocator
	intAllocator    util.IntAllocator

	sync.Mutex // guards perThreads
	perThreads []*TermsHashPerThread
}

func newTermsHash(consumer TermsHashConsumer, primary bool, next *TermsHash,
	byteAllocator util.ByteAllocator, intAllocator util.IntAllocator) *TermsHash {

	assert2(next == nil || primary, "only a primary TermsHash can be chained")
	return &TermsHash{
		consumer:        consumer,
		next:            next,
		primary:         primary,
		bytesPerPosting: consumer.BytesPerPosting(),
		byteAllocator:   byteAllocator,
		intAllocator:    intAllocator,
	}
}

func (h *TermsHash) addThread(ds *docState, primaryPerThread *TermsHashPerThread) *TermsHashPerThread {
	perThread := newTermsHashPerThread(ds, h, primaryPerThread)
	h.Lock()
	h.perThreads = append(h.perThreads, perThread)
	h.Unlock()
	return perThread
}

func (h *TermsHash) setFieldInfos(fieldInfos *model.FieldInfos) {
	h.consumer.SetFieldInfos(fieldInfos)
	if h.next != nil {
		h.next.setFieldInfos(fieldInfos)
	}
}

/*
Discards the generation of every thread, then the consumer's own
state, then does the same down the chain.
*/
func (h *TermsHash) abort() {
	defer func() {
		if h.next != nil {
			h.next.abort()
		}
	}()
	h.Lock()
	perThreads := append([]*TermsHashPerThread(nil), h.perThreads...)
	h.Unlock()
	for _, perThread := range perThreads {
		perThread.abort()
	}
	h.consumer.Abort()
}

/*
Returns one flush task per consumer of the chain. threadsAndFields
holds, per thread, the fields touched in this generation; the tasks
translate it to the consumers' own per-thread and per-field states.
*/
func (h *TermsHash) flushTasks(threadsAndFields map[*TermsHashPerThread][]*TermsHashPerField,
	state *SegmentWriteState) []flushTask {

	childThreadsAndFields := make(map[TermsHashConsumerPerThread][]TermsHashConsumerPerField)
	var nextThreadsAndFields map[*TermsHashPerThread][]*TermsHashPerField
	if h.next != nil {
		nextThreadsAndFields = make(map[*TermsHashPerThread][]*TermsHashPerField)
	}

	for perThread, fields := range threadsAndFields {
		perThread.beginFlush()
		childFields := make([]TermsHashConsumerPerField, 0, len(fields))
		var nextChildFields []*TermsHashPerField
		for _, perField := range fields {
			childFields = append(childFields, perField.consumer)
			if h.next != nil {
				nextChildFields = append(nextChildFields, perField.next)
			}
		}
		childThreadsAndFields[perThread.consumer] = childFields
		if h.next != nil {
			nextThreadsAndFields[perThread.next] = nextChildFields
		}
	}

	tasks := []flushTask{{
		name: consumerName(h.consumer),
		run: func() error {
			return h.consumer.Flush(childThreadsAndFields, state)
		},
	}}
	if h.next != nil {
		tasks = append(tasks, h.next.flushTasks(nextThreadsAndFields, state)...)
	}
	return tasks
}

/* Releases the flushed generation of every thread. */
func (h *TermsHash) finishFlush() {
	h.Lock()
	perThreads := append([]*TermsHashPerThread(nil), h.perThreads...)
	h.Unlock()
	for _, perThread := range perThreads {
		perThread.endFlush()
	}
	if h.next != nil {
		h.next.finishFlush()
	}
}

func (h *TermsHash) closeDocStore(state *SegmentWriteState) error {
	err := h.consumer.CloseDocStore(state)
	if h.next != nil {
		if err2 := h.next.closeDocStore(state); err == nil {
			err = err2
		}
	}
	return err
}

/* Releases all pooled memory. The TermsHash must not be used afterwards. */
func (h *TermsHash) close() {
	h.Lock()
	perThreads := h.perThreads
	h.perThreads = nil
	h.Unlock()
	for _, perThread := range perThreads {
		perThread.release()
	}
	if h.next != nil {
		h.next.close()
	}
}
