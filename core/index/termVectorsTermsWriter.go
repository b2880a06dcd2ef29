package index

import (
	"slices"

	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/codec/compressing"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/TermVectorsTermsWriter.java

/* Word offsets of the term vectors payload. */
const (
	TV_FREQ          = 0 // occurrences in the current document
	TV_LAST_OFFSET   = 1 // end offset of the last occurrence
	TV_LAST_POSITION = 2 // position of the last occurrence

	TV_BYTES_PER_POSTING = 3 * 4
)

/* Bits of the per-field flags byte of a vectors block. */
const (
	TV_STORE_POSITIONS = 0x1
	TV_STORE_OFFSETS   = 0x2
)

/*
The term vectors consumer. It runs on the secondary terms hash, which
is reset after every document: when a document is finished, its
vectors are encoded into one compressed block and buffered by the
thread until the next flush.

Vectors belong to the doc store, which may span several segments. The
.tvx/.tvd outputs are opened by the first flush that needs them and
are only published by CloseDocStore().

.tvx: per document of the doc store, Long tvd pointer, Int number of
fields. .tvd: VInt compression mode, then one block per document with
vectors:
	VInt numFields
	per field: VInt fieldNumber, flags byte, VInt numTerms
	per term: VInt prefixLength, VInt suffixLength, suffix bytes,
		VInt freq, [freq x VInt positionDelta],
		[freq x (VInt startOffsetDelta, VInt length)]
*/
type TermVectorsTermsWriter struct {
	fieldInfos *model.FieldInfos
	mode       compressing.CompressionModeDefaults
	compressor compressing.Compressor
	bytesUsed  util.Counter

	tvx, tvd store.IndexOutput
	// next document of the doc store to be written
	lastDocID int
}

func NewTermVectorsTermsWriter(mode compressing.CompressionModeDefaults,
	bytesUsed util.Counter) *TermVectorsTermsWriter {

	return &TermVectorsTermsWriter{
		mode:       mode,
		compressor: mode.NewCompressor(),
		bytesUsed:  bytesUsed,
	}
}

func (w *TermVectorsTermsWriter) BytesPerPosting() int { return TV_BYTES_PER_POSTING }

func (w *TermVectorsTermsWriter) CreatePostings(postings *PostingPool, start, count int) {
	for h := start; h < start+count; h++ {
		clear(postings.Payload(h))
	}
}

func (w *TermVectorsTermsWriter) AddThread(perThread *TermsHashPerThread) TermsHashConsumerPerThread {
	return &TermVectorsTermsWriterPerThread{
		termsHashPerThread: perThread,
		writer:             w,
		reader:             newByteSliceReader(),
		buffer:             util.NewGrowableByteArrayDataOutput(1024),
		blockOut:           util.NewGrowableByteArrayDataOutput(1024),
	}
}

func (w *TermVectorsTermsWriter) SetFieldInfos(fieldInfos *model.FieldInfos) {
	w.fieldInfos = fieldInfos
}

func (w *TermVectorsTermsWriter) String() string { return "TermVectorsTermsWriter" }

func (w *TermVectorsTermsWriter) initTermVectorsWriter(state *SegmentWriteState) (err error) {
	if w.tvx != nil {
		return nil
	}
	var tvx, tvd store.IndexOutput
	defer func() {
		if err != nil {
			for _, out := range []store.IndexOutput{tvx, tvd} {
				if out != nil {
					out.Abort()
				}
			}
		}
	}()
	ctx := state.Context
	if tvx, err = state.Directory.CreateOutput(state.DocStoreFileName(VECTORS_INDEX_EXTENSION), ctx); err != nil {
		return err
	}
	if tvd, err = state.Directory.CreateOutput(state.DocStoreFileName(VECTORS_DOCUMENTS_EXTENSION), ctx); err != nil {
		return err
	}
	if err = codec.WriteHeader(tvx, VECTORS_INDEX_CODEC, FORMAT_VERSION, state.DocStoreID); err != nil {
		return err
	}
	if err = codec.WriteHeader(tvd, VECTORS_DOCS_CODEC, FORMAT_VERSION, state.DocStoreID); err != nil {
		return err
	}
	if err = tvd.WriteVInt(int32(w.mode)); err != nil {
		return err
	}
	w.tvx, w.tvd = tvx, tvd
	w.lastDocID = 0
	return nil
}

/* Writes empty entries for the documents without vectors up to docID. */
func (w *TermVectorsTermsWriter) fill(docID int) error {
	for w.lastDocID < docID {
		if err := w.tvx.WriteLong(w.tvd.FilePointer()); err != nil {
			return err
		}
		if err := w.tvx.WriteInt(0); err != nil {
			return err
		}
		w.lastDocID++
	}
	return nil
}

/*
Appends the buffered documents of every thread to the doc store, in
doc id order. Files are registered with the flush when the doc store
is closed, since only then are they published.
*/
func (w *TermVectorsTermsWriter) Flush(threadsAndFields map[TermsHashConsumerPerThread][]TermsHashConsumerPerField,
	state *SegmentWriteState) error {

	var docs []*pendingVectors
	var perThreads []*TermVectorsTermsWriterPerThread
	for t := range threadsAndFields {
		perThread := t.(*TermVectorsTermsWriterPerThread)
		perThreads = append(perThreads, perThread)
		docs = append(docs, perThread.docs...)
	}
	slices.SortFunc(docs, func(a, b *pendingVectors) int { return a.docID - b.docID })

	if len(docs) > 0 || w.tvx != nil {
		if err := w.initTermVectorsWriter(state); err != nil {
			return err
		}
		docStoreOffset := state.NumDocsInStore - state.NumDocs
		for _, doc := range docs {
			if err := w.fill(docStoreOffset + doc.docID); err != nil {
				return err
			}
			if err := w.tvx.WriteLong(w.tvd.FilePointer()); err != nil {
				return err
			}
			if err := w.tvx.WriteInt(int32(doc.numFields)); err != nil {
				return err
			}
			if err := w.tvd.WriteBytes(doc.block); err != nil {
				return err
			}
			w.lastDocID++
		}
		// documents that hit a non-aborting error or had no vectors
		if err := w.fill(state.NumDocsInStore); err != nil {
			return err
		}
	}

	for _, perThread := range perThreads {
		perThread.releaseDocs()
	}
	return nil
}

func (w *TermVectorsTermsWriter) CloseDocStore(state *SegmentWriteState) (err error) {
	if w.tvx == nil {
		return nil
	}
	defer func() {
		if err != nil {
			w.Abort()
		}
		w.tvx, w.tvd = nil, nil
		w.lastDocID = 0
	}()
	if err = w.fill(state.NumDocsInStore); err != nil {
		return err
	}
	if w.lastDocID != state.NumDocsInStore {
		return errors.Errorf("term vectors hold %v documents but the doc store has %v",
			w.lastDocID, state.NumDocsInStore)
	}
	if err = codec.WriteFooter(w.tvx); err != nil {
		return err
	}
	if err = codec.WriteFooter(w.tvd); err != nil {
		return err
	}
	state.AddFlushedFile(state.DocStoreFileName(VECTORS_INDEX_EXTENSION))
	state.AddFlushedFile(state.DocStoreFileName(VECTORS_DOCUMENTS_EXTENSION))
	if err = w.tvx.Close(); err != nil {
		return err
	}
	return w.tvd.Close()
}

/* Discards the open doc store outputs. Nothing of them was published. */
func (w *TermVectorsTermsWriter) Abort() {
	for _, out := range []store.IndexOutput{w.tvx, w.tvd} {
		if out != nil {
			if err := out.Abort(); err != nil {
				log.Warningf("Failed to discard term vectors output %v: %v", out, err)
			}
		}
	}
	w.tvx, w.tvd = nil, nil
	w.lastDocID = 0
}

/* The encoded vectors of one document, waiting for the next flush. */
type pendingVectors struct {
	docID     int
	numFields int
	block     []byte
}

// index/TermVectorsTermsWriterPerThread.java

type TermVectorsTermsWriterPerThread struct {
	termsHashPerThread *TermsHashPerThread
	writer             *TermVectorsTermsWriter
	reader             *ByteSliceReader
	buffer             *util.GrowableByteArrayDataOutput
	blockOut           *util.GrowableByteArrayDataOutput

	// fields of the current document that have vectors
	pendingFields []*TermVectorsTermsWriterPerField
	docs          []*pendingVectors
	docsBytes     int64
}

func (t *TermVectorsTermsWriterPerThread) AddField(perField *TermsHashPerField,
	fieldInfo *model.FieldInfo) TermsHashConsumerPerField {

	return &TermVectorsTermsWriterPerField{
		perThread:         t,
		termsHashPerField: perField,
		fieldInfo:         fieldInfo,
		fieldState:        perField.fieldState,
		postings:          perField.postings,
	}
}

func (t *TermVectorsTermsWriterPerThread) StartDocument() error {
	t.pendingFields = t.pendingFields[:0]
	return nil
}

/* Encodes the vectors of the document, then resets the secondary hash. */
func (t *TermVectorsTermsWriterPerThread) FinishDocument() error {
	defer t.termsHashPerThread.resetDocument()
	if len(t.pendingFields) == 0 {
		return nil
	}
	slices.SortFunc(t.pendingFields, func(a, b *TermVectorsTermsWriterPerField) int {
		return int(a.fieldInfo.Number) - int(b.fieldInfo.Number)
	})

	// writes to memory never fail
	t.buffer.Reset()
	t.buffer.WriteVInt(int32(len(t.pendingFields)))
	for _, f := range t.pendingFields {
		if err := f.encode(t.buffer, t.reader); err != nil {
			return errors.Wrapf(err, "encode term vectors of field %v", f.fieldInfo.Name)
		}
	}
	t.blockOut.Reset()
	if err := t.writer.compressor(t.buffer.Bytes(), t.blockOut); err != nil {
		return err
	}
	doc := &pendingVectors{
		docID:     t.termsHashPerThread.DocID(),
		numFields: len(t.pendingFields),
		block:     slices.Clone(t.blockOut.Bytes()),
	}
	t.docs = append(t.docs, doc)
	t.docsBytes += int64(len(doc.block))
	t.writer.bytesUsed.AddAndGet(int64(len(doc.block)))
	t.pendingFields = t.pendingFields[:0]
	return nil
}

func (t *TermVectorsTermsWriterPerThread) releaseDocs() {
	t.writer.bytesUsed.AddAndGet(-t.docsBytes)
	t.docsBytes = 0
	t.docs = nil
}

func (t *TermVectorsTermsWriterPerThread) Abort() {
	t.releaseDocs()
	t.pendingFields = t.pendingFields[:0]
}

// index/TermVectorsTermsWriterPerField.java

type TermVectorsTermsWriterPerField struct {
	perThread         *TermVectorsTermsWriterPerThread
	termsHashPerField *TermsHashPerField
	fieldInfo         *model.FieldInfo
	fieldState        *FieldInvertState
	postings          *PostingPool

	doVectors         bool
	doVectorPositions bool
	doVectorOffsets   bool
}

func (f *TermVectorsTermsWriterPerField) StreamCount() int { return 2 }

func (f *TermVectorsTermsWriterPerField) Start(fields []model.IndexableField) (bool, error) {
	f.doVectors, f.doVectorPositions, f.doVectorOffsets = false, false, false
	for _, field := range fields {
		if ft := field.FieldType(); ft.Indexed() && ft.StoreTermVectors() {
			f.doVectors = true
			f.doVectorPositions = f.doVectorPositions || ft.StoreTermVectorPositions()
			f.doVectorOffsets = f.doVectorOffsets || ft.StoreTermVectorOffsets()
		}
	}
	return f.doVectors, nil
}

func (f *TermVectorsTermsWriterPerField) offsets() (start, end int32) {
	attrs := f.fieldState.attributes
	return int32(f.fieldState.offset + attrs.StartOffset()), int32(f.fieldState.offset + attrs.EndOffset())
}

func (f *TermVectorsTermsWriterPerField) NewTerm(handle int) error {
	p := f.postings.Payload(handle)
	p[TV_FREQ] = 1
	if f.doVectorOffsets {
		start, end := f.offsets()
		if err := f.termsHashPerField.WriteVInt(1, start); err != nil {
			return err
		}
		if err := f.termsHashPerField.WriteVInt(1, end-start); err != nil {
			return err
		}
		p[TV_LAST_OFFSET] = end
	}
	if f.doVectorPositions {
		if err := f.termsHashPerField.WriteVInt(0, int32(f.fieldState.position)); err != nil {
			return err
		}
		p[TV_LAST_POSITION] = int32(f.fieldState.position)
	}
	return nil
}

func (f *TermVectorsTermsWriterPerField) AddTerm(handle int) error {
	p := f.postings.Payload(handle)
	p[TV_FREQ]++
	if f.doVectorOffsets {
		start, end := f.offsets()
		if err := f.termsHashPerField.WriteVInt(1, start-p[TV_LAST_OFFSET]); err != nil {
			return err
		}
		if err := f.termsHashPerField.WriteVInt(1, end-start); err != nil {
			return err
		}
		p[TV_LAST_OFFSET] = end
	}
	if f.doVectorPositions {
		position := int32(f.fieldState.position)
		if err := f.termsHashPerField.WriteVInt(0, position-p[TV_LAST_POSITION]); err != nil {
			return err
		}
		p[TV_LAST_POSITION] = position
	}
	return nil
}

func (f *TermVectorsTermsWriterPerField) Finish() error {
	if f.doVectors && f.termsHashPerField.NumTerms() > 0 {
		f.perThread.pendingFields = append(f.perThread.pendingFields, f)
	}
	return nil
}

func (f *TermVectorsTermsWriterPerField) Abort() {}

func (f *TermVectorsTermsWriterPerField) encode(out *util.GrowableByteArrayDataOutput,
	reader *ByteSliceReader) error {

	handles := f.termsHashPerField.SortedHandles()
	var bits byte
	if f.doVectorPositions {
		bits |= TV_STORE_POSITIONS
	}
	if f.doVectorOffsets {
		bits |= TV_STORE_OFFSETS
	}
	out.WriteVInt(f.fieldInfo.Number)
	out.WriteByte(bits)
	out.WriteVInt(int32(len(handles)))

	var lastTerm []byte
	for _, handle := range handles {
		term := f.termsHashPerField.Term(handle)
		prefix := util.BytesDifference(lastTerm, term)
		out.WriteVInt(int32(prefix))
		out.WriteVInt(int32(len(term) - prefix))
		out.WriteBytes(term[prefix:])
		freq := int(f.postings.Payload(handle)[TV_FREQ])
		out.WriteVInt(int32(freq))

		if f.doVectorPositions {
			f.termsHashPerField.InitReader(reader, handle, 0)
			for i := 0; i < freq; i++ {
				delta, err := reader.ReadVInt()
				if err != nil {
					return err
				}
				out.WriteVInt(delta)
			}
		}
		if f.doVectorOffsets {
			f.termsHashPerField.InitReader(reader, handle, 1)
			for i := 0; i < 2*freq; i++ {
				v, err := reader.ReadVInt()
				if err != nil {
					return err
				}
				out.WriteVInt(v)
			}
		}
		lastTerm = term
	}
	return nil
}
