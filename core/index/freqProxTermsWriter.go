package index

import (
	"bytes"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/codec/lucene29"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/pkg/errors"
)

// index/FreqProxTermsWriter.java

/* Word offsets of the postings payload. */
const (
	FREQ_PROX_TERM_FREQ     = 0 // occurrences in the last document seen
	FREQ_PROX_LAST_DOC_ID   = 1 // last document seen
	FREQ_PROX_LAST_DOC_CODE = 2 // code of the last document, written once it is complete
	FREQ_PROX_LAST_POSITION = 3 // last position, for delta coding

	FREQ_PROX_BYTES_PER_POSTING = 4 * 4
)

/*
The postings consumer. Each term gets a doc/freq stream and a
positions stream; the entry of the most recent document stays in the
record until the next document of the term shows up, since its
frequency is not known before.

At flush the same field of every thread is merged by doc id and
written through the lucene29 postings format.
*/
type FreqProxTermsWriter struct {
	fieldInfos *model.FieldInfos
}

func NewFreqProxTermsWriter() *FreqProxTermsWriter {
	return new(FreqProxTermsWriter)
}

func (w *FreqProxTermsWriter) BytesPerPosting() int { return FREQ_PROX_BYTES_PER_POSTING }

func (w *FreqProxTermsWriter) CreatePostings(postings *PostingPool, start, count int) {
	for h := start; h < start+count; h++ {
		clear(postings.Payload(h))
	}
}

func (w *FreqProxTermsWriter) AddThread(perThread *TermsHashPerThread) TermsHashConsumerPerThread {
	return &FreqProxTermsWriterPerThread{termsHashPerThread: perThread}
}

func (w *FreqProxTermsWriter) SetFieldInfos(fieldInfos *model.FieldInfos) {
	w.fieldInfos = fieldInfos
}

/* Postings live in the terms hash pools only. */
func (w *FreqProxTermsWriter) Abort() {}

func (w *FreqProxTermsWriter) CloseDocStore(state *SegmentWriteState) error { return nil }

func (w *FreqProxTermsWriter) String() string { return "FreqProxTermsWriter" }

func (w *FreqProxTermsWriter) Flush(threadsAndFields map[TermsHashConsumerPerThread][]TermsHashConsumerPerField,
	state *SegmentWriteState) (err error) {

	// gather all fields that saw any postings
	var allFields []*FreqProxTermsWriterPerField
	for _, fields := range threadsAndFields {
		for _, f := range fields {
			perField := f.(*FreqProxTermsWriterPerField)
			if perField.termsHashPerField.NumTerms() > 0 {
				allFields = append(allFields, perField)
			}
		}
	}
	// sort by field number so the same field of all threads is adjacent
	sort.SliceStable(allFields, func(i, j int) bool {
		return allFields[i].fieldInfo.Number < allFields[j].fieldInfo.Number
	})

	consumer, err := lucene29.NewFieldsWriter(state, state.SegmentID, state.TermIndexInterval)
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			consumer.Abort()
		}
	}()

	for start := 0; start < len(allFields); {
		fieldInfo := allFields[start].fieldInfo
		end := start + 1
		for end < len(allFields) && allFields[end].fieldInfo == fieldInfo {
			end++
		}
		if err = appendPostings(allFields[start:end], consumer); err != nil {
			return errors.Wrapf(err, "flush postings of field %v", fieldInfo.Name)
		}
		start = end
	}
	if err = consumer.Close(); err != nil {
		return err
	}
	success = true
	if state.InfoStream.IsEnabled("FP") {
		state.InfoStream.Message("FP", "flushed postings of %v fields to segment %v",
			len(allFields), state.SegmentName)
	}
	return nil
}

/*
Walks the postings of one field across all threads, merging terms in
byte order and, per term, documents in doc id order.
*/
func appendPostings(fields []*FreqProxTermsWriterPerField, consumer codec.FieldsConsumer) error {
	fieldInfo := fields[0].fieldInfo
	hasFreqs := fieldInfo.IndexOptions().HasFreqs()
	hasPositions := fieldInfo.IndexOptions().HasPositions()

	termsConsumer, err := consumer.AddField(fieldInfo)
	if err != nil {
		return err
	}

	mergeStates := make([]*freqProxFieldMergeState, 0, len(fields))
	for _, f := range fields {
		st := newFreqProxFieldMergeState(f)
		ok, err := st.nextTerm()
		if err != nil {
			return err
		}
		// every field was filtered on having terms
		assertTrue(ok)
		mergeStates = append(mergeStates, st)
	}

	var sumTotalTermFreq, sumDocFreq int64
	docsSeen := roaring.New()
	termStates := make([]*freqProxFieldMergeState, 0, len(fields))

	for numFields := len(mergeStates); numFields > 0; {
		// get the next term to merge
		termStates = append(termStates[:0], mergeStates[0])
		for _, st := range mergeStates[1:numFields] {
			switch cmp := bytes.Compare(st.term, termStates[0].term); {
			case cmp < 0:
				termStates = append(termStates[:0], st)
			case cmp == 0:
				termStates = append(termStates, st)
			}
		}
		text := termStates[0].term

		postings, err := termsConsumer.StartTerm(text)
		if err != nil {
			return err
		}

		docFreq, totalTermFreq := 0, int64(0)
		for numToMerge := len(termStates); numToMerge > 0; {
			minState := termStates[0]
			for _, st := range termStates[1:numToMerge] {
				if st.docID < minState.docID {
					minState = st
				}
			}

			termDocFreq := minState.termFreq
			freqArg := -1
			if hasFreqs {
				freqArg = termDocFreq
			}
			if err = postings.StartDoc(minState.docID, freqArg); err != nil {
				return err
			}
			if hasPositions {
				position := 0
				for j := 0; j < termDocFreq; j++ {
					code, err := minState.prox.ReadVInt()
					if err != nil {
						return err
					}
					position += int(uint32(code) >> 1)
					if err = postings.AddPosition(position); err != nil {
						return err
					}
				}
			}
			if err = postings.FinishDoc(); err != nil {
				return err
			}
			docFreq++
			totalTermFreq += int64(termDocFreq)
			docsSeen.Add(uint32(minState.docID))

			ok, err := minState.nextDoc()
			if err != nil {
				return err
			}
			if ok {
				continue
			}
			// remove from termStates
			termStates = removeMergeState(termStates[:numToMerge], minState)
			numToMerge--
			// advance this state to the next term
			if ok, err = minState.nextTerm(); err != nil {
				return err
			}
			if !ok {
				// no more terms, so remove from mergeStates as well
				mergeStates = removeMergeState(mergeStates[:numFields], minState)
				numFields--
			}
		}

		if err = termsConsumer.FinishTerm(text, codec.NewTermStats(docFreq, totalTermFreq)); err != nil {
			return err
		}
		sumDocFreq += int64(docFreq)
		sumTotalTermFreq += totalTermFreq
	}

	return termsConsumer.Finish(sumTotalTermFreq, sumDocFreq, int(docsSeen.GetCardinality()))
}

func removeMergeState(states []*freqProxFieldMergeState, st *freqProxFieldMergeState) []*freqProxFieldMergeState {
	upto := 0
	for _, s := range states {
		if s != st {
			states[upto] = s
			upto++
		}
	}
	assertTrue(upto == len(states)-1)
	return states[:upto]
}

// index/FreqProxFieldMergeState.java

/* Used by FreqProxTermsWriter to walk the postings of one per-thread field. */
type freqProxFieldMergeState struct {
	field    *FreqProxTermsWriterPerField
	handles  []int
	upto     int
	handle   int
	term     []byte
	freq     *ByteSliceReader
	prox     *ByteSliceReader
	docID    int
	termFreq int
}

func newFreqProxFieldMergeState(field *FreqProxTermsWriterPerField) *freqProxFieldMergeState {
	return &freqProxFieldMergeState{
		field:   field,
		handles: field.termsHashPerField.SortedHandles(),
		upto:    -1,
		freq:    newByteSliceReader(),
		prox:    newByteSliceReader(),
	}
}

func (st *freqProxFieldMergeState) nextTerm() (bool, error) {
	st.upto++
	if st.upto == len(st.handles) {
		return false, nil
	}
	st.handle = st.handles[st.upto]
	st.docID = 0
	st.term = st.field.termsHashPerField.Term(st.handle)
	st.field.termsHashPerField.InitReader(st.freq, st.handle, 0)
	if st.field.hasProx {
		st.field.termsHashPerField.InitReader(st.prox, st.handle, 1)
	}
	ok, err := st.nextDoc()
	if err != nil {
		return false, err
	}
	// should always be true
	assertTrue(ok)
	return true, nil
}

func (st *freqProxFieldMergeState) nextDoc() (bool, error) {
	p := st.field.postings.Payload(st.handle)
	if st.freq.eof() {
		if p[FREQ_PROX_LAST_DOC_CODE] != -1 {
			// return last doc
			st.docID = int(p[FREQ_PROX_LAST_DOC_ID])
			st.termFreq = 1
			if st.field.hasFreq {
				st.termFreq = int(p[FREQ_PROX_TERM_FREQ])
			}
			p[FREQ_PROX_LAST_DOC_CODE] = -1
			return true, nil
		}
		// EOF
		return false, nil
	}

	code, err := st.freq.ReadVInt()
	if err != nil {
		return false, err
	}
	if !st.field.hasFreq {
		st.docID += int(code)
		st.termFreq = 1
	} else {
		st.docID += int(uint32(code) >> 1)
		if code&1 != 0 {
			st.termFreq = 1
		} else {
			n, err := st.freq.ReadVInt()
			if err != nil {
				return false, err
			}
			st.termFreq = int(n)
		}
	}
	assertTrue(st.docID != int(p[FREQ_PROX_LAST_DOC_ID]))
	return true, nil
}

// index/FreqProxTermsWriterPerThread.java

type FreqProxTermsWriterPerThread struct {
	termsHashPerThread *TermsHashPerThread
}

func (t *FreqProxTermsWriterPerThread) AddField(perField *TermsHashPerField,
	fieldInfo *model.FieldInfo) TermsHashConsumerPerField {
	return newFreqProxTermsWriterPerField(perField, t, fieldInfo)
}

func (t *FreqProxTermsWriterPerThread) StartDocument() error  { return nil }
func (t *FreqProxTermsWriterPerThread) FinishDocument() error { return nil }
func (t *FreqProxTermsWriterPerThread) Abort()                {}

// index/FreqProxTermsWriterPerField.java

type FreqProxTermsWriterPerField struct {
	perThread         *FreqProxTermsWriterPerThread
	termsHashPerField *TermsHashPerField
	fieldInfo         *model.FieldInfo
	docState          *docState
	fieldState        *FieldInvertState
	postings          *PostingPool

	// fixed for a generation when its first term arrives
	hasFreq bool
	hasProx bool
}

func newFreqProxTermsWriterPerField(termsHashPerField *TermsHashPerField,
	perThread *FreqProxTermsWriterPerThread, fieldInfo *model.FieldInfo) *FreqProxTermsWriterPerField {

	f := &FreqProxTermsWriterPerField{
		perThread:         perThread,
		termsHashPerField: termsHashPerField,
		fieldInfo:         fieldInfo,
		docState:          termsHashPerField.docState,
		fieldState:        termsHashPerField.fieldState,
		postings:          termsHashPerField.postings,
	}
	f.setIndexOptions()
	return f
}

func (f *FreqProxTermsWriterPerField) setIndexOptions() {
	f.hasFreq = f.fieldInfo.IndexOptions().HasFreqs()
	f.hasProx = f.fieldInfo.IndexOptions().HasPositions()
}

/* Index options only ever get downgraded, so the first value sizes the streams. */
func (f *FreqProxTermsWriterPerField) StreamCount() int {
	if !f.hasProx {
		return 1
	}
	return 2
}

func (f *FreqProxTermsWriterPerField) Start(fields []model.IndexableField) (bool, error) {
	if f.termsHashPerField.NumTerms() == 0 {
		f.setIndexOptions()
		if f.hasProx && f.termsHashPerField.streamCount < 2 {
			f.hasProx = false
		}
	}
	return true, nil
}

func (f *FreqProxTermsWriterPerField) writeProx(p []int32, proxCode int) error {
	if err := f.termsHashPerField.WriteVInt(1, int32(proxCode<<1)); err != nil {
		return err
	}
	p[FREQ_PROX_LAST_POSITION] = int32(f.fieldState.position)
	return nil
}

func (f *FreqProxTermsWriterPerField) NewTerm(handle int) error {
	// first time we're seeing this term since the last flush
	p := f.postings.Payload(handle)
	docID := int32(f.docState.docID)
	p[FREQ_PROX_LAST_DOC_ID] = docID
	if !f.hasFreq {
		p[FREQ_PROX_LAST_DOC_CODE] = docID
		return nil
	}
	p[FREQ_PROX_LAST_DOC_CODE] = docID << 1
	p[FREQ_PROX_TERM_FREQ] = 1
	if f.hasProx {
		return f.writeProx(p, f.fieldState.position)
	}
	return nil
}

func (f *FreqProxTermsWriterPerField) AddTerm(handle int) error {
	p := f.postings.Payload(handle)
	docID := int32(f.docState.docID)
	assertTrue(!f.hasFreq || p[FREQ_PROX_TERM_FREQ] > 0)

	if !f.hasFreq {
		if docID != p[FREQ_PROX_LAST_DOC_ID] {
			assertTrue(docID > p[FREQ_PROX_LAST_DOC_ID])
			if err := f.termsHashPerField.WriteVInt(0, p[FREQ_PROX_LAST_DOC_CODE]); err != nil {
				return err
			}
			p[FREQ_PROX_LAST_DOC_CODE] = docID - p[FREQ_PROX_LAST_DOC_ID]
			p[FREQ_PROX_LAST_DOC_ID] = docID
		}
		return nil
	}

	if docID != p[FREQ_PROX_LAST_DOC_ID] {
		assertTrue(docID > p[FREQ_PROX_LAST_DOC_ID])
		// Term not yet seen in the current doc but previously seen in
		// other doc(s) since the last flush. Now that we know the freq
		// of the previous doc, write it and its code.
		var err error
		if p[FREQ_PROX_TERM_FREQ] == 1 {
			err = f.termsHashPerField.WriteVInt(0, p[FREQ_PROX_LAST_DOC_CODE]|1)
		} else if err = f.termsHashPerField.WriteVInt(0, p[FREQ_PROX_LAST_DOC_CODE]); err == nil {
			err = f.termsHashPerField.WriteVInt(0, p[FREQ_PROX_TERM_FREQ])
		}
		if err != nil {
			return err
		}
		p[FREQ_PROX_TERM_FREQ] = 1
		p[FREQ_PROX_LAST_DOC_CODE] = (docID - p[FREQ_PROX_LAST_DOC_ID]) << 1
		p[FREQ_PROX_LAST_DOC_ID] = docID
		if f.hasProx {
			return f.writeProx(p, f.fieldState.position)
		}
		return nil
	}

	p[FREQ_PROX_TERM_FREQ]++
	if f.hasProx {
		return f.writeProx(p, f.fieldState.position-int(p[FREQ_PROX_LAST_POSITION]))
	}
	return nil
}

func (f *FreqProxTermsWriterPerField) Finish() error { return nil }

func (f *FreqProxTermsWriterPerField) Abort() {}
