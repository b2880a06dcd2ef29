package index

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/codec/compressing"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/DocumentsWriter.java

/*
This class accepts multiple added documents and directly writes
segment files.

Each added document is passed to the indexing chain of a ThreadState:
the DocInverter feeds the terms hash (postings, chained to term
vectors) and the norms writer. When enough RAM or documents are
buffered, the generation of every thread is flushed into one new
segment: each consumer writes its own files, then the field infos,
the deleted docs and finally the .si commit marker.

Threads:

Multiple goroutines are allowed into AddDocument at once. They share
the read side of the lock; each works on its own ThreadState, so the
per-token path takes no locks. Flush, abort and close take the write
side, which waits for all in-flight documents and keeps new ones out.

Error handling:

Errors during analysis or a zero-length term are non-aborting: the
document keeps its doc id but is marked deleted. Allocation failures
and errors that leave the buffers inconsistent are aborting: the
whole generation is discarded. A failed flush deletes every file it
registered and aborts the generation.
*/
type DocumentsWriter struct {
	sync.RWMutex

	directory  store.Directory
	config     *IndexWriterConfig
	infoStream util.InfoStream
	metrics    *Metrics

	fieldInfos  *model.FieldInfos
	consumer    *DocInverter
	termsHash   *TermsHash
	termVectors *TermVectorsTermsWriter
	norms       *NormsWriter
	threadPool  *DocumentsWriterPerThreadPool

	bytesUsed util.Counter
	budget    *util.MemoryBudget

	// doc ids of the current generation
	nextDocID atomic.Int64
	// bumped whenever a flush or abort ends the current generation
	generation int64
	// an aborting error hit the current generation; it must not be
	// flushed or take new documents
	abortPending atomic.Bool
	deletesLock sync.Mutex
	deletedDocs *roaring.Bitmap

	segmentCounter int64
	// the open doc store, "" if none
	docStoreSegment string
	docStoreOffset  int
	docStoreID      uuid.UUID
	// committed segments sharing the open doc store
	docStoreSegments []*SegmentInfo

	segments []*SegmentInfo
	closed   bool
}

/*
Creates a DocumentsWriter over dir. Segment names continue after the
committed segments found in dir. metrics may be nil.
*/
func NewDocumentsWriter(dir store.Directory, config *IndexWriterConfig,
	metrics *Metrics) (*DocumentsWriter, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}
	mode, err := compressing.ParseCompressionMode(config.TermVectorsCompression)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	existing, err := ListSegments(dir)
	if err != nil {
		return nil, errors.Wrap(err, "list segments")
	}

	if config.MaxWriteMBPerSec > 0 {
		limited := store.NewRateLimitedDirectoryWrapper(dir)
		limited.SetMaxWriteMBPerSec(config.MaxWriteMBPerSec, store.IO_CONTEXT_TYPE_FLUSH)
		dir = limited
	}

	dw := &DocumentsWriter{
		directory:   dir,
		config:      config,
		infoStream:  config.InfoStream(),
		metrics:     metrics,
		fieldInfos:  model.NewFieldInfos(),
		bytesUsed:   util.NewAtomicCounter(),
		budget:      util.NewMemoryBudget(config.ramBudgetBytes()),
		deletedDocs: roaring.New(),
	}
	for _, name := range existing {
		if n, err := parseSegmentCounter(name); err == nil && n >= dw.segmentCounter {
			dw.segmentCounter = n + 1
		}
	}

	byteAllocator := util.NewDirectTrackingAllocator(dw.bytesUsed, dw.budget)
	intAllocator := util.NewIntBlockAllocator(dw.bytesUsed, dw.budget)
	dw.termVectors = NewTermVectorsTermsWriter(mode, dw.bytesUsed)
	termVectorsHash := newTermsHash(dw.termVectors, false, nil, byteAllocator, intAllocator)
	dw.termsHash = newTermsHash(NewFreqProxTermsWriter(), true, termVectorsHash, byteAllocator, intAllocator)
	dw.norms = newNormsWriter()
	dw.consumer = newDocInverter(dw.termsHash, dw.norms)
	dw.consumer.setFieldInfos(dw.fieldInfos)

	dw.threadPool = NewDocumentsWriterPerThreadPool(config.MaxThreadStates, func() *ThreadState {
		ds := &docState{
			docWriter:     dw,
			analyzer:      config.Analyzer(),
			infoStream:    dw.infoStream,
			maxTermLength: config.MaxTermLength,
			docID:         -1,
		}
		return &ThreadState{docState: ds, consumer: dw.consumer.addThread(ds)}
	})
	return dw, nil
}

func parseSegmentCounter(name string) (int64, error) {
	if len(name) < 2 || name[0] != '_' {
		return 0, errors.Errorf("not a segment name: %v", name)
	}
	return strconv.ParseInt(name[1:], 36, 64)
}

func (dw *DocumentsWriter) ensureOpen() error {
	if dw.closed {
		return ErrClosed
	}
	return nil
}

/* The field infos shared by all segments this writer flushes. */
func (dw *DocumentsWriter) FieldInfos() *model.FieldInfos { return dw.fieldInfos }

/* Number of documents buffered in the current generation. */
func (dw *DocumentsWriter) NumDocs() int { return int(dw.nextDocID.Load()) }

/* Bytes held by the in-memory buffers of all threads. */
func (dw *DocumentsWriter) RAMBytesUsed() int64 { return dw.bytesUsed.Get() }

/* Returns the segments flushed so far, oldest first. */
func (dw *DocumentsWriter) Segments() []*SegmentInfo {
	dw.RLock()
	defer dw.RUnlock()
	return append([]*SegmentInfo(nil), dw.segments...)
}

/*
Adds a document to the current generation, waiting for a free
ThreadState if all are busy. A non-nil error for which
errors.Is(err, ErrAborted) holds means the whole generation was
discarded; any other error means only this document was marked
deleted. The document may trigger a flush.
*/
func (dw *DocumentsWriter) AddDocument(doc []model.IndexableField) error {
	return dw.AddDocumentContext(context.Background(), doc)
}

func (dw *DocumentsWriter) AddDocumentContext(ctx context.Context, doc []model.IndexableField) error {
	dw.RLock()
	for dw.abortPending.Load() {
		dw.RUnlock()
		dw.abortGeneration(dw.currentGeneration())
		dw.RLock()
	}
	if err := dw.ensureOpen(); err != nil {
		dw.RUnlock()
		return err
	}
	ts, err := dw.threadPool.getAndLock(ctx)
	if err != nil {
		dw.RUnlock()
		return err
	}

	docID := int(dw.nextDocID.Add(1) - 1)
	ts.docState.docID = docID
	err = ts.consumer.processDocument(doc)
	ts.docState.clear()
	dw.threadPool.release(ts)
	dw.metrics.DocsIndexedTotal.Inc()

	if isAborting(err) {
		gen := dw.generation
		dw.abortPending.Store(true)
		dw.RUnlock()
		log.Errorf("Aborting generation after doc %v hit: %v", docID, err)
		dw.abortGeneration(gen)
		return newAbortingError(err)
	}
	if err != nil {
		dw.markDeleted(docID, err)
	}
	flush := dw.needsFlush()
	dw.metrics.RAMBytesUsed.Set(float64(dw.bytesUsed.Get()))
	dw.RUnlock()

	if flush {
		if ferr := dw.Flush(); ferr != nil {
			return ferr
		}
	}
	return err
}

func (dw *DocumentsWriter) currentGeneration() int64 {
	dw.RLock()
	defer dw.RUnlock()
	return dw.generation
}

/*
Aborts generation gen unless a flush or another abort already ended
it; a later generation is never touched.
*/
func (dw *DocumentsWriter) abortGeneration(gen int64) {
	dw.Lock()
	defer dw.Unlock()
	if dw.generation == gen && dw.abortPending.Load() {
		dw.abort()
	}
}

func (dw *DocumentsWriter) markDeleted(docID int, cause error) {
	if dw.infoStream.IsEnabled("DW") {
		dw.infoStream.Message("DW", "marking doc %v deleted: %v", docID, cause)
	}
	dw.deletesLock.Lock()
	dw.deletedDocs.Add(uint32(docID))
	dw.deletesLock.Unlock()
	dw.metrics.DocsDeletedTotal.Inc()
}

func (dw *DocumentsWriter) needsFlush() bool {
	if n := dw.config.MaxBufferedDocs; n != DISABLE_AUTO_FLUSH && dw.NumDocs() >= n {
		return true
	}
	if mb := dw.config.RAMBufferSizeMB; mb != DISABLE_AUTO_FLUSH &&
		float64(dw.bytesUsed.Get()) >= mb*1024*1024 {
		return true
	}
	return false
}

/*
Flushes the current generation into a new segment. The doc store is
closed too unless it is shared. Returns nil and no error if nothing
was buffered.
*/
func (dw *DocumentsWriter) Flush() error {
	dw.Lock()
	defer dw.Unlock()
	if err := dw.ensureOpen(); err != nil {
		return err
	}
	_, err := dw.flush(!dw.config.ShareDocStore)
	return err
}

func (dw *DocumentsWriter) newSegmentName() string {
	name := util.SegmentName(dw.segmentCounter)
	dw.segmentCounter++
	return name
}

func (dw *DocumentsWriter) flush(closeDocStore bool) (si *SegmentInfo, err error) {
	if dw.abortPending.Load() {
		dw.abort()
		return nil, errors.Wrap(ErrAborted, "flush of a failed generation")
	}
	numDocs := dw.NumDocs()
	if numDocs == 0 {
		if closeDocStore && dw.docStoreSegment != "" {
			return nil, dw.closeDocStore()
		}
		return nil, nil
	}

	segment := dw.newSegmentName()
	if dw.docStoreSegment == "" {
		dw.docStoreSegment = segment
		dw.docStoreOffset = 0
		dw.docStoreID = uuid.New()
	}
	tracking := store.NewTrackingDirectoryWrapper(dw.directory)
	state := newSegmentWriteState(dw, dw.infoStream, tracking, segment, dw.docStoreSegment,
		numDocs, dw.docStoreOffset+numDocs, dw.config.TermIndexInterval, dw.fieldInfos, dw.docStoreID)

	start := time.Now()
	if dw.infoStream.IsEnabled("DW") {
		dw.infoStream.Message("DW", "flush postings as segment %v numDocs=%v ramBytes=%v",
			segment, numDocs, dw.bytesUsed.Get())
	}
	success := false
	defer func() {
		if !success {
			dw.metrics.FlushesTotal.WithLabelValues("error").Inc()
			log.Errorf("Flush of segment %v failed: %v", segment, err)
			dw.abort()
			// abort first: the outputs still open are discarded
			util.DeleteFilesIgnoringErrors(dw.directory, mergeNames(state.FlushedFiles(), tracking.CreatedFiles())...)
		}
	}()

	termsFields := make(map[*TermsHashPerThread][]*TermsHashPerField)
	normsFields := make(map[*NormsWriterPerThread][]*NormsWriterPerField)
	dw.threadPool.foreach(func(ts *ThreadState) {
		tf, nf := ts.consumer.flushFields()
		termsFields[ts.consumer.consumer] = tf
		normsFields[ts.consumer.endConsumer] = nf
	})
	tasks := dw.termsHash.flushTasks(termsFields, state)
	tasks = append(tasks, dw.norms.flushTask(normsFields, state))
	if err = runFlushTasks(tasks, dw.config.FlushConcurrency, state); err != nil {
		return nil, err
	}

	dw.deletesLock.Lock()
	deleted := dw.deletedDocs.Clone()
	dw.deletesLock.Unlock()

	docStoreSegment, docStoreOffset := dw.docStoreSegment, dw.docStoreOffset
	if closeDocStore {
		if err = dw.termsHash.closeDocStore(state); err != nil {
			return nil, err
		}
	}
	if err = writeFieldInfos(state); err != nil {
		return nil, err
	}
	if !deleted.IsEmpty() {
		if err = writeDeletes(state, deleted); err != nil {
			return nil, err
		}
	}
	si = &SegmentInfo{
		Name:            segment,
		DocCount:        numDocs,
		DelCount:        int(deleted.GetCardinality()),
		DocStoreSegment: docStoreSegment,
		DocStoreOffset:  docStoreOffset,
		DocStoreID:      dw.docStoreID,
		HasVectors:      dw.fieldInfos.HasVectors(),
		HasProx:         dw.fieldInfos.HasProx(),
		ID:              state.SegmentID,
		Version:         util.VERSION,
	}
	// the commit marker goes last
	if err = writeSegmentInfo(state, si); err != nil {
		return nil, err
	}
	success = true

	dw.termsHash.finishFlush()
	dw.threadPool.foreach(func(ts *ThreadState) {
		ts.consumer.endConsumer.reset()
	})
	dw.resetGeneration()
	if closeDocStore {
		dw.resetDocStore()
	} else {
		dw.docStoreOffset += numDocs
		dw.docStoreSegments = append(dw.docStoreSegments, si)
	}
	dw.segments = append(dw.segments, si)

	dw.metrics.FlushesTotal.WithLabelValues("ok").Inc()
	dw.metrics.FlushedFilesTotal.Add(float64(len(si.Files)))
	dw.metrics.FlushDuration.Observe(time.Since(start).Seconds())
	dw.metrics.RAMBytesUsed.Set(float64(dw.bytesUsed.Get()))
	if dw.infoStream.IsEnabled("DW") {
		dw.infoStream.Message("DW", "flushed segment %v: %v files in %v", si, len(si.Files), time.Since(start))
	}
	return si, nil
}

func mergeNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var names []string
	for _, name := range append(a, b...) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func (dw *DocumentsWriter) resetGeneration() {
	dw.generation++
	dw.abortPending.Store(false)
	dw.nextDocID.Store(0)
	dw.deletesLock.Lock()
	dw.deletedDocs.Clear()
	dw.deletesLock.Unlock()
}

func (dw *DocumentsWriter) resetDocStore() {
	dw.docStoreSegment = ""
	dw.docStoreOffset = 0
	dw.docStoreID = uuid.Nil
	dw.docStoreSegments = nil
}

/*
Closes the open doc store, if any. Buffered documents are flushed
first, since their vectors belong to it.
*/
func (dw *DocumentsWriter) CloseDocStore() error {
	dw.Lock()
	defer dw.Unlock()
	if err := dw.ensureOpen(); err != nil {
		return err
	}
	if dw.NumDocs() > 0 {
		_, err := dw.flush(true)
		return err
	}
	return dw.closeDocStore()
}

func (dw *DocumentsWriter) closeDocStore() (err error) {
	if dw.docStoreSegment == "" {
		return nil
	}
	state := newSegmentWriteState(dw, dw.infoStream, dw.directory, dw.docStoreSegment,
		dw.docStoreSegment, 0, dw.docStoreOffset, dw.config.TermIndexInterval, dw.fieldInfos, dw.docStoreID)
	if err = dw.termsHash.closeDocStore(state); err != nil {
		log.Errorf("Closing doc store %v failed: %v", dw.docStoreSegment, err)
		dw.abort()
		util.DeleteFilesIgnoringErrors(dw.directory, state.FlushedFiles()...)
		return err
	}
	dw.resetDocStore()
	return nil
}

/*
Discards the buffered documents of every thread. If a doc store is
open, the segments already flushed into it are deleted too, since
their term vectors would never be completed.
*/
func (dw *DocumentsWriter) Abort() error {
	dw.Lock()
	defer dw.Unlock()
	if err := dw.ensureOpen(); err != nil {
		return err
	}
	dw.abort()
	return nil
}

func (dw *DocumentsWriter) abort() {
	if dw.infoStream.IsEnabled("DW") {
		dw.infoStream.Message("DW", "abort numDocs=%v docStore=%v", dw.NumDocs(), dw.docStoreSegment)
	}
	dw.threadPool.foreach(func(ts *ThreadState) {
		ts.consumer.endConsumer.abort()
	})
	dw.termsHash.abort()
	dw.resetGeneration()

	if len(dw.docStoreSegments) > 0 {
		rolledBack := make(map[*SegmentInfo]bool)
		for _, si := range dw.docStoreSegments {
			rolledBack[si] = true
			// the commit marker goes first
			util.DeleteFilesIgnoringErrors(dw.directory, util.SegmentFileName(si.Name, "", SEGMENT_INFO_EXTENSION))
			util.DeleteFilesIgnoringErrors(dw.directory, si.Files...)
		}
		kept := dw.segments[:0]
		for _, si := range dw.segments {
			if !rolledBack[si] {
				kept = append(kept, si)
			}
		}
		dw.segments = kept
	}
	dw.resetDocStore()
	dw.metrics.AbortsTotal.Inc()
	dw.metrics.RAMBytesUsed.Set(float64(dw.bytesUsed.Get()))
}

/*
Flushes the buffered documents, closes the doc store and releases all
pooled memory. The directory is not closed.
*/
func (dw *DocumentsWriter) Close() error {
	dw.Lock()
	defer dw.Unlock()
	if dw.closed {
		return nil
	}
	// also closes the doc store
	_, err := dw.flush(true)
	dw.termsHash.close()
	dw.closed = true
	return err
}
