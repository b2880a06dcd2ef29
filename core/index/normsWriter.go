package index

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
)

// index/NormsWriter.java

/*
Writes norms. Each thread X field accumulates the norms for the
doc/fields it saw, then the flush method below merges all of these
together into a single _X.nrm file.

.nrm: header, VInt numFields, then per field with norms, in number
order: VInt fieldNumber, VInt length + serialized roaring bitmap of
the documents holding the field, then one norm byte per document of
the segment. Documents without the field get the norm of boost 1.0.
*/
type NormsWriter struct {
	fieldInfos *model.FieldInfos
}

func newNormsWriter() *NormsWriter { return new(NormsWriter) }

var defaultNorm = util.FloatToByte315(1.0)

/* Norm of a field instance: boost / sqrt(number of terms). */
func computeNorm(state *FieldInvertState) byte {
	return util.FloatToByte315(state.boost * lengthNorm(state.length))
}

func lengthNorm(numTerms int) float32 {
	return float32(1.0 / math.Sqrt(float64(numTerms)))
}

func (w *NormsWriter) setFieldInfos(fieldInfos *model.FieldInfos) {
	w.fieldInfos = fieldInfos
}

func (w *NormsWriter) addThread(ds *docState) *NormsWriterPerThread {
	return &NormsWriterPerThread{writer: w, docState: ds}
}

func (w *NormsWriter) String() string { return "NormsWriter" }

func (w *NormsWriter) flushTask(threadsAndFields map[*NormsWriterPerThread][]*NormsWriterPerField,
	state *SegmentWriteState) flushTask {

	return flushTask{
		name: w.String(),
		run:  func() error { return w.flush(threadsAndFields, state) },
	}
}

/* Merges the norms of every thread into the segment's .nrm file. */
func (w *NormsWriter) flush(threadsAndFields map[*NormsWriterPerThread][]*NormsWriterPerField,
	state *SegmentWriteState) (err error) {

	byField := make(map[*model.FieldInfo][]*NormsWriterPerField)
	for _, fields := range threadsAndFields {
		for _, f := range fields {
			if f.docIDs.GetCardinality() > 0 {
				byField[f.fieldInfo] = append(byField[f.fieldInfo], f)
			}
		}
	}

	var fieldsWithNorms []*model.FieldInfo
	for _, fi := range state.FieldInfos.Values() {
		if fi.HasNorms() {
			fieldsWithNorms = append(fieldsWithNorms, fi)
		}
	}
	if len(fieldsWithNorms) == 0 {
		return nil
	}

	out, err := state.CreateOutput(state.SegmentFileName(NORMS_EXTENSION))
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			out.Abort()
		}
	}()

	if err = codec.WriteHeader(out, NORMS_CODEC, FORMAT_VERSION, state.SegmentID); err != nil {
		return err
	}
	if err = out.WriteVInt(int32(len(fieldsWithNorms))); err != nil {
		return err
	}
	norms := make([]byte, state.NumDocs)
	for _, fi := range fieldsWithNorms {
		docs := roaring.New()
		for i := range norms {
			norms[i] = defaultNorm
		}
		for _, f := range byField[fi] {
			docs.Or(f.docIDs)
			it := f.docIDs.Iterator()
			for upto := 0; it.HasNext(); upto++ {
				norms[it.Next()] = f.norms[upto]
			}
		}
		if err = writeNormsField(out, fi, docs, norms); err != nil {
			return err
		}
	}
	if err = codec.WriteFooter(out); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	success = true
	if state.InfoStream.IsEnabled("DW") {
		state.InfoStream.Message("DW", "flushed norms of %v fields", len(fieldsWithNorms))
	}
	return nil
}

func writeNormsField(out store.IndexOutput, fi *model.FieldInfo, docs *roaring.Bitmap, norms []byte) error {
	if err := out.WriteVInt(fi.Number); err != nil {
		return err
	}
	docs.RunOptimize()
	bitmap, err := docs.ToBytes()
	if err != nil {
		return err
	}
	if err = out.WriteVInt(int32(len(bitmap))); err != nil {
		return err
	}
	if err = out.WriteBytes(bitmap); err != nil {
		return err
	}
	return out.WriteBytes(norms)
}

// index/NormsWriterPerThread.java

type NormsWriterPerThread struct {
	writer   *NormsWriter
	docState *docState
	fields   []*NormsWriterPerField
}

func (t *NormsWriterPerThread) addField(fieldState *FieldInvertState,
	fieldInfo *model.FieldInfo) *NormsWriterPerField {

	f := &NormsWriterPerField{
		perThread:  t,
		fieldInfo:  fieldInfo,
		docState:   t.docState,
		fieldState: fieldState,
		docIDs:     roaring.New(),
	}
	t.fields = append(t.fields, f)
	return f
}

func (t *NormsWriterPerThread) reset() {
	for _, f := range t.fields {
		f.reset()
	}
}

func (t *NormsWriterPerThread) abort() { t.reset() }

// index/NormsWriterPerField.java

/*
Taps into DocInverter, as an InvertedDocEndConsumer, which is called
at the end of inverting each field. We just look at the length for
the field (docState.length) and record the norm.
*/
type NormsWriterPerField struct {
	perThread  *NormsWriterPerThread
	fieldInfo  *model.FieldInfo
	docState   *docState
	fieldState *FieldInvertState

	// docs of this generation holding the field; norms is parallel to
	// the bitmap since doc ids only grow within a thread
	docIDs *roaring.Bitmap
	norms  []byte
}

func (f *NormsWriterPerField) reset() {
	f.docIDs.Clear()
	f.norms = f.norms[:0]
}

func (f *NormsWriterPerField) finish() {
	if !f.fieldInfo.HasNorms() {
		return
	}
	assert2(f.docIDs.IsEmpty() || int(f.docIDs.Maximum()) < f.docState.docID,
		"doc id %v went backwards", f.docState.docID)
	f.docIDs.Add(uint32(f.docState.docID))
	f.norms = append(f.norms, computeNorm(f.fieldState))
}
