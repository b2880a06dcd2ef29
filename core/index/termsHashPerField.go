package index

import (
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/TermsHashPerField.java

/*
Hashes the terms of one field for one thread and gives every term a
fixed number of byte streams, which the consumer writes through
WriteByte()/WriteVInt() and reads back at flush with InitReader().

The streams of a term start as contiguous FIRST_LEVEL_SIZE slices in
the byte pool; the int pool holds the current write address of each
stream.
*/
type TermsHashPerField struct {
	consumer   TermsHashConsumerPerField
	perThread  *TermsHashPerThread
	next       *TermsHashPerField
	docState   *docState
	fieldState *FieldInvertState
	fieldInfo  *model.FieldInfo

	table       *RawPostingTable
	postings    *PostingPool
	intPool     *util.IntBlockPool
	bytePool    *util.ByteBlockPool
	streamCount int

	// write addresses of the streams of the current term
	intUptos     []int32
	intUptoStart int

	doCall     bool
	doNextCall bool
}

func newTermsHashPerField(fieldState *FieldInvertState, perThread *TermsHashPerThread,
	fieldInfo *model.FieldInfo) *TermsHashPerField {

	f := &TermsHashPerField{
		perThread:  perThread,
		docState:   perThread.docState,
		fieldState: fieldState,
		fieldInfo:  fieldInfo,
		postings:   perThread.postings,
		intPool:    perThread.intPool,
		bytePool:   perThread.bytePool,
	}
	f.consumer = perThread.consumer.AddField(f, fieldInfo)
	f.streamCount = f.consumer.StreamCount()
	if perThread.primary {
		f.table = NewRawPostingTable(perThread.termBytePool, f.postings, perThread.termsHash.consumer)
	} else {
		f.table = NewSecondaryRawPostingTable(perThread.termBytePool, f.postings, perThread.termsHash.consumer)
	}
	if perThread.next != nil {
		f.next = perThread.next.addField(fieldState, fieldInfo)
	}
	return f
}

func (f *TermsHashPerField) FieldInfo() *model.FieldInfo        { return f.fieldInfo }
func (f *TermsHashPerField) FieldState() *FieldInvertState      { return f.fieldState }
func (f *TermsHashPerField) Postings() *PostingPool             { return f.postings }
func (f *TermsHashPerField) Table() *RawPostingTable            { return f.table }
func (f *TermsHashPerField) PerThread() *TermsHashPerThread     { return f.perThread }
func (f *TermsHashPerField) Consumer() TermsHashConsumerPerField { return f.consumer }

/* Number of unique terms seen in this generation. */
func (f *TermsHashPerField) NumTerms() int { return f.table.Size() }

/* Returns the term bytes of a record. */
func (f *TermsHashPerField) Term(handle int) []byte { return f.table.Term(handle) }

/* Returns the handles of all terms, sorted by term bytes. */
func (f *TermsHashPerField) SortedHandles() []int { return f.table.SortedHandles() }

func (f *TermsHashPerField) reset() {
	f.table.Reset()
}

func (f *TermsHashPerField) abort() {
	f.reset()
	f.consumer.Abort()
}

/* Returns true if this field or the chained field wants the tokens. */
func (f *TermsHashPerField) start(fields []model.IndexableField) (bool, error) {
	var err error
	if f.doCall, err = f.consumer.Start(fields); err != nil {
		return false, err
	}
	f.doNextCall = false
	if f.next != nil {
		if f.doNextCall, err = f.next.start(fields); err != nil {
			return false, err
		}
	}
	return f.doCall || f.doNextCall, nil
}

/*
Adds the current token of the field. Empty terms are rejected with
ErrMalformedTerm before any consumer sees them. Terms longer than the
configured maximum are skipped.
*/
func (f *TermsHashPerField) add() error {
	assertTrue(f.perThread.primary)
	term := f.fieldState.attributes.TermBytes()
	if len(term) == 0 {
		return errors.Wrapf(ErrMalformedTerm, "field %v holds a zero-length term", f.fieldInfo.Name)
	}
	if len(term) > f.docState.maxTermLength {
		if f.docState.infoStream.IsEnabled("TH") {
			prefix := term[:min(30, len(term))]
			f.docState.infoStream.Message("TH",
				"WARNING: document contains at least one immense term in field=\"%v\" (whose UTF8 encoding is longer than the max length %v), all of which were skipped. The prefix of the first immense term is: '%v...'",
				f.fieldInfo.Name, f.docState.maxTermLength, string(prefix))
		}
		return nil
	}

	textStart := -1
	if f.doCall {
		handle, isNew, err := f.table.Add(term)
		if err != nil {
			return newAbortingError(err)
		}
		if err = f.addPosting(handle, isNew); err != nil {
			return err
		}
		textStart = int(f.postings.Record(handle)[POSTING_TEXT_START])
	}
	// the chained hash only sees terms this hash has stored
	if f.doNextCall && textStart != -1 {
		return f.next.addByTextStart(textStart)
	}
	return nil
}

/* Secondary-only: adds the term stored at textStart of the primary's term pool. */
func (f *TermsHashPerField) addByTextStart(textStart int) error {
	handle, isNew, err := f.table.AddByTextStart(textStart)
	if err != nil {
		return newAbortingError(err)
	}
	return f.addPosting(handle, isNew)
}

func (f *TermsHashPerField) addPosting(handle int, isNew bool) error {
	if isNew {
		if err := f.initStreams(handle); err != nil {
			return newAbortingError(err)
		}
		return f.wrapConsumerError(f.consumer.NewTerm(handle))
	}
	intStart := int(f.postings.Record(handle)[POSTING_INT_START])
	f.intUptos = f.intPool.Buffers[intStart>>util.INT_BLOCK_SHIFT]
	f.intUptoStart = intStart & util.INT_BLOCK_MASK
	return f.wrapConsumerError(f.consumer.AddTerm(handle))
}

/* Consumers only fail while writing to the pools. */
func (f *TermsHashPerField) wrapConsumerError(err error) error {
	if err == nil {
		return nil
	}
	return newAbortingError(err)
}

func (f *TermsHashPerField) initStreams(handle int) error {
	if f.streamCount+f.intPool.IntUpto > util.INT_BLOCK_SIZE {
		if err := f.intPool.NextBuffer(); err != nil {
			return err
		}
	}
	if util.BYTE_BLOCK_SIZE-f.bytePool.ByteUpto < f.streamCount*util.FIRST_LEVEL_SIZE {
		if err := f.bytePool.NextBuffer(); err != nil {
			return err
		}
	}

	f.intUptos = f.intPool.Buffer
	f.intUptoStart = f.intPool.IntUpto
	f.intPool.IntUpto += f.streamCount

	record := f.postings.Record(handle)
	record[POSTING_INT_START] = int32(f.intUptoStart + f.intPool.IntOffset)

	for i := 0; i < f.streamCount; i++ {
		// room was made above, so this neither fails nor switches buffers
		upto, err := f.bytePool.NewSlice(util.FIRST_LEVEL_SIZE)
		if err != nil {
			return err
		}
		f.intUptos[f.intUptoStart+i] = int32(upto + f.bytePool.ByteOffset)
	}
	record[POSTING_BYTE_START] = f.intUptos[f.intUptoStart]
	return nil
}

/* Appends a byte to a stream of the current term. */
func (f *TermsHashPerField) WriteByte(stream int, b byte) error {
	upto := int(f.intUptos[f.intUptoStart+stream])
	bytes := f.bytePool.Buffers[upto>>util.BYTE_BLOCK_SHIFT]
	offset := upto & util.BYTE_BLOCK_MASK
	if bytes[offset] != 0 {
		// end of slice; allocate a new one
		var err error
		if offset, err = f.bytePool.AllocSlice(bytes, offset); err != nil {
			return err
		}
		bytes = f.bytePool.Buffer
		f.intUptos[f.intUptoStart+stream] = int32(offset + f.bytePool.ByteOffset)
	}
	bytes[offset] = b
	f.intUptos[f.intUptoStart+stream]++
	return nil
}

func (f *TermsHashPerField) WriteBytes(stream int, b []byte) error {
	for _, v := range b {
		if err := f.WriteByte(stream, v); err != nil {
			return err
		}
	}
	return nil
}

func (f *TermsHashPerField) WriteVInt(stream int, i int32) error {
	v := uint32(i)
	for v&^0x7F != 0 {
		if err := f.WriteByte(stream, byte(v&0x7F)|0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return f.WriteByte(stream, byte(v))
}

/* Positions reader at the start of the given stream of a term. */
func (f *TermsHashPerField) InitReader(reader *ByteSliceReader, handle, stream int) {
	assertTrue(stream < f.streamCount)
	record := f.postings.Record(handle)
	intStart := int(record[POSTING_INT_START])
	ints := f.intPool.Buffers[intStart>>util.INT_BLOCK_SHIFT]
	upto := intStart & util.INT_BLOCK_MASK
	reader.init(f.bytePool,
		int(record[POSTING_BYTE_START])+stream*util.FIRST_LEVEL_SIZE,
		int(ints[upto+stream]))
}

func (f *TermsHashPerField) finish() error {
	var err error
	if f.doCall {
		err = f.consumer.Finish()
	}
	if f.doNextCall {
		if err2 := f.next.finish(); err == nil {
			err = err2
		}
	}
	return err
}
