package index

import (
	"sort"

	"github.com/ironsweet/termshash/core/analysis"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/DocumentsWriter.DocState

/* Per-thread information about the document being indexed. */
type docState struct {
	docWriter     *DocumentsWriter
	analyzer      analysis.Analyzer
	infoStream    util.InfoStream
	maxTermLength int
	docID         int
}

func (ds *docState) clear() {
	ds.docID = -1
}

// index/FieldInvertState.java

/*
Tracks the number and position / offset parameters of terms being
added to the index. The information collected in this class is also
used to calculate the normalization factor for a field
*/
type FieldInvertState struct {
	name       string
	position   int
	length     int
	numOverlap int
	offset     int
	boost      float32
	attributes *analysis.TokenAttributes
}

/* Creates FieldInvertState for the specified field name. */
func newFieldInvertState(name string) *FieldInvertState {
	return &FieldInvertState{name: name, boost: 1}
}

/* Re-initialize the state */
func (st *FieldInvertState) reset(docBoost float32) {
	st.position = 0
	st.length = 0
	st.numOverlap = 0
	st.offset = 0
	st.boost = docBoost
	st.attributes = nil
}

/* Return the field's name */
func (st *FieldInvertState) Name() string { return st.name }

/* Position of the current token, starting at 0. */
func (st *FieldInvertState) Position() int { return st.position }

/* Number of terms indexed for the field in the current document. */
func (st *FieldInvertState) Length() int { return st.length }

/* Number of tokens at the same position as their predecessor. */
func (st *FieldInvertState) NumOverlap() int { return st.numOverlap }

/* Offset base of the current field instance. */
func (st *FieldInvertState) Offset() int { return st.offset }

func (st *FieldInvertState) Boost() float32 { return st.boost }

/* Attributes of the current token. */
func (st *FieldInvertState) Attributes() *analysis.TokenAttributes { return st.attributes }

// index/DocInverter.java

/*
This is a DocConsumer that inverts each field, separately, from a
Document, and accepts an InvertedTermsConsumer to process those terms.
The terms hash sees every token; the norms writer sees the end of
every field.
*/
type DocInverter struct {
	consumer    *TermsHash
	endConsumer *NormsWriter
	fieldInfos  *model.FieldInfos
}

func newDocInverter(consumer *TermsHash, endConsumer *NormsWriter) *DocInverter {
	return &DocInverter{consumer: consumer, endConsumer: endConsumer}
}

func (inv *DocInverter) setFieldInfos(fieldInfos *model.FieldInfos) {
	inv.fieldInfos = fieldInfos
	inv.consumer.setFieldInfos(fieldInfos)
	inv.endConsumer.setFieldInfos(fieldInfos)
}

func (inv *DocInverter) addThread(ds *docState) *DocInverterPerThread {
	return &DocInverterPerThread{
		inverter:    inv,
		docState:    ds,
		consumer:    inv.consumer.addThread(ds, nil),
		endConsumer: inv.endConsumer.addThread(ds),
		fields:      make(map[*model.FieldInfo]*DocInverterPerField),
	}
}

// index/DocInverterPerThread.java

type DocInverterPerThread struct {
	inverter    *DocInverter
	docState    *docState
	consumer    *TermsHashPerThread
	endConsumer *NormsWriterPerThread
	fields      map[*model.FieldInfo]*DocInverterPerField
}

func (t *DocInverterPerThread) addField(fieldInfo *model.FieldInfo) *DocInverterPerField {
	fieldState := newFieldInvertState(fieldInfo.Name)
	f := &DocInverterPerField{
		perThread:  t,
		fieldInfo:  fieldInfo,
		docState:   t.docState,
		fieldState: fieldState,
	}
	f.consumer = t.consumer.addField(fieldState, fieldInfo)
	f.endConsumer = t.endConsumer.addField(fieldState, fieldInfo)
	t.fields[fieldInfo] = f
	return f
}

/*
Inverts all fields of the document. Instances sharing a name are
processed together, as though their text were appended; field names
are visited in sorted order.

The error of the first failing field stops the document. finish() is
still called for that field, and the consumers always see the end of
the document.
*/
func (t *DocInverterPerThread) processDocument(fields []model.IndexableField) (err error) {
	byName := make(map[string][]model.IndexableField)
	var names []string
	for _, field := range fields {
		name := field.Name()
		if _, ok := byName[name]; !ok {
			names = append(names, name)
		}
		byName[name] = append(byName[name], field)
	}
	sort.Strings(names)

	if err = t.consumer.startDocument(); err != nil {
		return err
	}
	defer func() {
		if err2 := t.consumer.finishDocument(); err2 != nil && (err == nil || !isAborting(err)) {
			// the vectors of this document may be lost
			err = newAbortingError(err2)
		}
	}()

	for _, name := range names {
		instances := byName[name]
		var fieldInfo *model.FieldInfo
		for _, field := range instances {
			fieldInfo = t.inverter.fieldInfos.AddOrUpdate(name, field.FieldType())
		}
		if !fieldInfo.IsIndexed() {
			continue
		}
		perField, ok := t.fields[fieldInfo]
		if !ok {
			perField = t.addField(fieldInfo)
		}
		if err = perField.processFields(instances); err != nil {
			return err
		}
	}
	return nil
}

func (t *DocInverterPerThread) abort() {
	defer t.endConsumer.abort()
	t.consumer.abort()
}

/* The per-field states of the terms hash and the norms writer, for flush. */
func (t *DocInverterPerThread) flushFields() ([]*TermsHashPerField, []*NormsWriterPerField) {
	termsFields := make([]*TermsHashPerField, 0, len(t.fields))
	normsFields := make([]*NormsWriterPerField, 0, len(t.fields))
	for _, f := range t.fields {
		termsFields = append(termsFields, f.consumer)
		normsFields = append(normsFields, f.endConsumer)
	}
	return termsFields, normsFields
}

// index/DocInverterPerField.java

/*
Holds state for inverting all occurrences of a single field in the
document. This class doesn't do anything itself; instead, it forwards
the tokens produced by analysis to its own consumer
(TermsHashPerField). It also interacts with an endConsumer
(NormsWriterPerField).
*/
type DocInverterPerField struct {
	perThread   *DocInverterPerThread
	fieldInfo   *model.FieldInfo
	docState    *docState
	fieldState  *FieldInvertState
	consumer    *TermsHashPerField
	endConsumer *NormsWriterPerField
}

func (f *DocInverterPerField) processFields(fields []model.IndexableField) (err error) {
	f.fieldState.reset(1)

	doInvert, err := f.consumer.start(fields)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := f.consumer.finish(); err == nil {
			err = err2
		}
		f.endConsumer.finish()
	}()

	for i, field := range fields {
		fieldType := field.FieldType()
		if !fieldType.Indexed() || !doInvert {
			continue
		}
		// if the field omits norms, the boost cannot be indexed.
		assert2(!fieldType.OmitNorms() || field.Boost() == 1.0,
			"You cannot set an index-time boost: norms are omitted for field '%v'", field.Name())

		if err = f.invert(field); err != nil {
			return err
		}
		if i < len(fields)-1 && fieldType.Tokenized() {
			// keeps the offsets of appended instances apart
			f.fieldState.offset++
		}
		f.fieldState.boost *= field.Boost()
	}
	return nil
}

func (f *DocInverterPerField) invert(field model.IndexableField) (err error) {
	stream, err := field.TokenStream(f.docState.analyzer)
	if err != nil {
		return errors.Wrapf(err, "analyze field %v", field.Name())
	}
	if stream == nil {
		return nil
	}
	success := false
	defer func() {
		if !success {
			util.CloseWhileSuppressingError(stream)
		} else {
			err = stream.Close()
		}
	}()

	// reset the TokenStream to the first token
	if err = stream.Reset(); err != nil {
		return err
	}
	attrs := stream.Attributes()
	f.fieldState.attributes = attrs

	for {
		hasMoreTokens, err := stream.IncrementToken()
		if err != nil {
			// non-aborting: the document is marked deleted but keeps its docID
			return errors.Wrapf(err, "analyze field %v", field.Name())
		}
		if !hasMoreTokens {
			break
		}

		posIncr := attrs.PositionIncrement()
		position := f.fieldState.position + posIncr
		if position > 0 {
			// mirrors the position++ below
			position--
		}
		f.fieldState.position = position
		if posIncr == 0 {
			f.fieldState.numOverlap++
		}

		if err = f.consumer.add(); err != nil {
			return err
		}
		f.fieldState.length++
		f.fieldState.position++
	}

	// trigger streams to perform end-of-stream operations
	if err = stream.End(); err != nil {
		return err
	}
	f.fieldState.offset += attrs.EndOffset()
	success = true
	return nil
}
