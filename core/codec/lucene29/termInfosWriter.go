package lucene29

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/TermInfosWriter.java

/*
Writes the postings of one segment, field by field in field number
order, terms in sorted byte order.

.tis, per field:
	VInt fieldNumber+1
	per term: VInt prefixLength+1, VInt suffixLength, suffix bytes,
		VInt docFreq, [VLong totalTermFreq-docFreq,] VLong freqDelta,
		[VLong proxDelta]
	VInt 0
	VLong sumTotalTermFreq, VLong sumDocFreq, VInt docCount
followed by VInt 0 after the last field.

.tii, for every termIndexInterval-th term of a field:
	VInt fieldNumber+1, VInt termLength, term bytes,
	VLong tisPointer, VLong freqPointer, VLong proxPointer
followed by VInt 0.

.frq, per document of a term: VInt docDelta<<1 | (freq == 1), then
VInt freq if it is not 1. Fields without frequencies write the plain
doc delta.

.prx, per position of a document: VInt positionDelta.
*/
type FieldsWriter struct {
	tis, tii, frq, prx store.IndexOutput
	indexInterval      int

	tisStart, frqStart, prxStart int64

	lastFreqPointer, lastProxPointer int64
	closed                           bool
}

func NewFieldsWriter(state WriteState, segmentID uuid.UUID, termIndexInterval int) (*FieldsWriter, error) {
	assert2(termIndexInterval > 0, "termIndexInterval must be > 0 (got %v)", termIndexInterval)
	w := &FieldsWriter{indexInterval: termIndexInterval}
	success := false
	defer func() {
		if !success {
			w.Abort()
		}
	}()

	var err error
	if w.tis, err = createWithHeader(state, TERMS_EXTENSION, TERMS_CODEC, segmentID); err != nil {
		return nil, err
	}
	if w.tii, err = createWithHeader(state, TERMS_INDEX_EXTENSION, TERMS_INDEX_CODEC, segmentID); err != nil {
		return nil, err
	}
	if w.frq, err = createWithHeader(state, FREQ_EXTENSION, FREQ_CODEC, segmentID); err != nil {
		return nil, err
	}
	if w.prx, err = createWithHeader(state, PROX_EXTENSION, PROX_CODEC, segmentID); err != nil {
		return nil, err
	}
	w.tisStart = w.tis.FilePointer()
	w.frqStart = w.frq.FilePointer()
	w.prxStart = w.prx.FilePointer()
	w.lastFreqPointer, w.lastProxPointer = w.frqStart, w.prxStart
	success = true
	return w, nil
}

func createWithHeader(state WriteState, ext, codecName string, segmentID uuid.UUID) (store.IndexOutput, error) {
	out, err := state.CreateOutput(state.SegmentFileName(ext))
	if err != nil {
		return nil, err
	}
	if err = codec.WriteHeader(out, codecName, VERSION_CURRENT, segmentID); err != nil {
		out.Abort()
		return nil, err
	}
	return out, nil
}

/* Discards every file not yet published. */
func (w *FieldsWriter) Abort() {
	for _, out := range []store.IndexOutput{w.tis, w.tii, w.frq, w.prx} {
		if out != nil {
			out.Abort()
		}
	}
	w.closed = true
}

func (w *FieldsWriter) AddField(field *model.FieldInfo) (codec.TermsConsumer, error) {
	assert2(!w.closed, "FieldsWriter is closed")
	assert2(field.IsIndexed(), "field %v is not indexed", field.Name)
	if err := w.tis.WriteVInt(field.Number + 1); err != nil {
		return nil, err
	}
	return &termsWriter{
		FieldsWriter: w,
		field:        field,
		hasFreqs:     field.IndexOptions().HasFreqs(),
		hasPositions: field.IndexOptions().HasPositions(),
	}, nil
}

/*
Terminates the dictionaries and publishes all four files. On failure
every file not yet published is discarded.
*/
func (w *FieldsWriter) Close() (err error) {
	if w.closed {
		return nil
	}
	defer func() {
		if err != nil {
			w.Abort()
		}
		w.closed = true
	}()
	if err = w.tis.WriteVInt(0); err != nil {
		return err
	}
	if err = w.tii.WriteVInt(0); err != nil {
		return err
	}
	for _, out := range []store.IndexOutput{w.tis, w.tii, w.frq, w.prx} {
		if err = codec.WriteFooter(out); err != nil {
			return err
		}
	}
	for _, out := range []store.IndexOutput{w.tis, w.tii, w.frq, w.prx} {
		if err = out.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (w *FieldsWriter) String() string {
	return fmt.Sprintf("FieldsWriter(tis=%v)", w.tis)
}

type termsWriter struct {
	*FieldsWriter
	field        *model.FieldInfo
	hasFreqs     bool
	hasPositions bool

	lastTerm  []byte
	termCount int

	// current term
	postings postingsWriter
}

func (tw *termsWriter) StartTerm(text []byte) (codec.PostingsConsumer, error) {
	tw.postings = postingsWriter{
		termsWriter: tw,
		freqStart:   tw.frq.FilePointer(),
		proxStart:   tw.prx.FilePointer(),
	}
	return &tw.postings, nil
}

func (tw *termsWriter) FinishTerm(text []byte, stats *codec.TermStats) error {
	assert2(stats.DocFreq > 0, "term %q has no documents", text)
	if tw.lastTerm != nil && !util.UTF8SortedAsUnicodeLess(tw.lastTerm, text) {
		return errors.Errorf("terms out of order: %q after %q (field %v)", text, tw.lastTerm, tw.field.Name)
	}
	tisPointer := tw.tis.FilePointer()

	if tw.termCount%tw.indexInterval == 0 {
		if err := tw.writeIndexTerm(text, tisPointer); err != nil {
			return err
		}
	}

	prefix := util.BytesDifference(tw.lastTerm, text)
	out := tw.tis
	if err := out.WriteVInt(int32(prefix + 1)); err != nil {
		return err
	}
	if err := out.WriteVInt(int32(len(text) - prefix)); err != nil {
		return err
	}
	if err := out.WriteBytes(text[prefix:]); err != nil {
		return err
	}
	if err := out.WriteVInt(int32(stats.DocFreq)); err != nil {
		return err
	}
	if tw.hasFreqs {
		if err := out.WriteVLong(stats.TotalTermFreq - int64(stats.DocFreq)); err != nil {
			return err
		}
	}
	if err := out.WriteVLong(tw.postings.freqStart - tw.lastFreqPointer); err != nil {
		return err
	}
	tw.lastFreqPointer = tw.postings.freqStart
	if tw.hasPositions {
		if err := out.WriteVLong(tw.postings.proxStart - tw.lastProxPointer); err != nil {
			return err
		}
		tw.lastProxPointer = tw.postings.proxStart
	}

	tw.lastTerm = append(tw.lastTerm[:0], text...)
	tw.termCount++
	return nil
}

func (tw *termsWriter) writeIndexTerm(text []byte, tisPointer int64) error {
	out := tw.tii
	if err := out.WriteVInt(tw.field.Number + 1); err != nil {
		return err
	}
	if err := out.WriteVInt(int32(len(text))); err != nil {
		return err
	}
	if err := out.WriteBytes(text); err != nil {
		return err
	}
	if err := out.WriteVLong(tisPointer - tw.tisStart); err != nil {
		return err
	}
	if err := out.WriteVLong(tw.postings.freqStart - tw.frqStart); err != nil {
		return err
	}
	return out.WriteVLong(tw.postings.proxStart - tw.prxStart)
}

func (tw *termsWriter) Finish(sumTotalTermFreq, sumDocFreq int64, docCount int) error {
	out := tw.tis
	if err := out.WriteVInt(0); err != nil {
		return err
	}
	if err := out.WriteVLong(sumTotalTermFreq); err != nil {
		return err
	}
	if err := out.WriteVLong(sumDocFreq); err != nil {
		return err
	}
	return out.WriteVInt(int32(docCount))
}

type postingsWriter struct {
	*termsWriter
	freqStart, proxStart int64

	docCount     int
	lastDocID    int
	lastPosition int
}

func (pw *postingsWriter) StartDoc(docID, freq int) error {
	delta := docID - pw.lastDocID
	if docID < 0 || (pw.docCount > 0 && delta <= 0) {
		return errors.Errorf("docs out of order (%v <= %v) (field %v)", docID, pw.lastDocID, pw.field.Name)
	}
	var err error
	if !pw.hasFreqs {
		err = pw.frq.WriteVInt(int32(delta))
	} else if freq == 1 {
		err = pw.frq.WriteVInt(int32(delta<<1 | 1))
	} else {
		assert2(freq > 0, "freq must be > 0 (got %v)", freq)
		if err = pw.frq.WriteVInt(int32(delta << 1)); err == nil {
			err = pw.frq.WriteVInt(int32(freq))
		}
	}
	pw.lastDocID = docID
	pw.lastPosition = 0
	pw.docCount++
	return err
}

func (pw *postingsWriter) AddPosition(position int) error {
	assert2(pw.hasPositions, "field %v omits positions", pw.field.Name)
	delta := position - pw.lastPosition
	assert2(delta >= 0, "position delta is negative: %v (field %v)", delta, pw.field.Name)
	pw.lastPosition = position
	return pw.prx.WriteVInt(int32(delta))
}

func (pw *postingsWriter) FinishDoc() error { return nil }
