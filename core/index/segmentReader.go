package index

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/codec/compressing"
	"github.com/ironsweet/termshash/core/codec/lucene29"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/SegmentReader.java

/* The vector of one term in one document. */
type TermVectorEntry struct {
	Term      string
	Freq      int
	Positions []int
	// parallel to each other, one entry per occurrence
	StartOffsets []int
	EndOffsets   []int
}

type FieldVector struct {
	Number       int32
	HasPositions bool
	HasOffsets   bool
	// sorted by term bytes
	Terms []TermVectorEntry
}

/*
SegmentReader eagerly decodes a committed segment, verifying every
file's checksum and segment id on the way. It is meant for checking
what a flush wrote, not for searching.
*/
type SegmentReader struct {
	Info       *SegmentInfo
	FieldInfos *model.FieldInfos
	Postings   *lucene29.FieldsReader

	deleted       *roaring.Bitmap
	norms         map[int32][]byte
	docsWithNorms map[int32]*roaring.Bitmap
	// per document; nil if the doc store was not closed yet
	vectors [][]FieldVector
}

func OpenSegmentReader(dir store.Directory, segment string) (r *SegmentReader, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrapf(err, "open segment %v", segment)
		}
	}()

	r = &SegmentReader{
		norms:         make(map[int32][]byte),
		docsWithNorms: make(map[int32]*roaring.Bitmap),
	}
	if r.Info, err = ReadSegmentInfo(dir, segment); err != nil {
		return nil, err
	}
	id := r.Info.ID
	if r.FieldInfos, err = readFieldInfos(dir, segment, id); err != nil {
		return nil, err
	}
	if r.Postings, err = lucene29.ReadFields(dir, segment, id, r.FieldInfos); err != nil {
		return nil, err
	}
	if r.Info.DelCount > 0 {
		if r.deleted, err = readDeletes(dir, segment, id, r.Info.DocCount); err != nil {
			return nil, err
		}
		if int(r.deleted.GetCardinality()) != r.Info.DelCount {
			return nil, errors.Wrapf(codec.ErrCorruptIndex,
				"segment info says %v deleted docs, .del holds %v", r.Info.DelCount, r.deleted.GetCardinality())
		}
	} else {
		r.deleted = roaring.New()
	}
	if r.FieldInfos.HasNorms() {
		if err = r.readNorms(dir); err != nil {
			return nil, err
		}
	}
	if r.Info.HasVectors {
		tvx := util.SegmentFileName(r.Info.DocStoreSegment, "", VECTORS_INDEX_EXTENSION)
		if dir.FileExists(tvx) {
			if err = r.readVectors(dir); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

/* Number of documents of the segment, deleted ones included. */
func (r *SegmentReader) MaxDoc() int { return r.Info.DocCount }

/* Number of live documents. */
func (r *SegmentReader) NumDocs() int { return r.Info.DocCount - r.Info.DelCount }

func (r *SegmentReader) IsDeleted(docID int) bool { return r.deleted.Contains(uint32(docID)) }

/* Returns the postings of the named field, or nil. */
func (r *SegmentReader) Terms(field string) *lucene29.FieldTerms {
	fi := r.FieldInfos.FieldInfoByName(field)
	if fi == nil {
		return nil
	}
	return r.Postings.Field(fi.Number)
}

/* Returns one norm byte per document for the named field, or nil if it has no norms. */
func (r *SegmentReader) Norms(field string) []byte {
	if fi := r.FieldInfos.FieldInfoByName(field); fi != nil {
		return r.norms[fi.Number]
	}
	return nil
}

/* Returns the documents that held the named field, or nil if it has no norms. */
func (r *SegmentReader) DocsWithNorms(field string) *roaring.Bitmap {
	if fi := r.FieldInfos.FieldInfoByName(field); fi != nil {
		return r.docsWithNorms[fi.Number]
	}
	return nil
}

/* Returns true if the term vectors of the segment could be read. */
func (r *SegmentReader) HasVectors() bool { return r.vectors != nil }

/* Returns the term vectors of a document, sorted by field number. */
func (r *SegmentReader) TermVectors(docID int) []FieldVector {
	if r.vectors == nil {
		return nil
	}
	return r.vectors[docID]
}

/* Returns the term vector of the named field of a document, or nil. */
func (r *SegmentReader) TermVector(docID int, field string) *FieldVector {
	fi := r.FieldInfos.FieldInfoByName(field)
	if fi == nil {
		return nil
	}
	vectors := r.TermVectors(docID)
	for i := range vectors {
		if vectors[i].Number == fi.Number {
			return &vectors[i]
		}
	}
	return nil
}

func (r *SegmentReader) readNorms(dir store.Directory) error {
	name := util.SegmentFileName(r.Info.Name, "", NORMS_EXTENSION)
	in, _, _, err := codec.OpenVerifiedInput(dir, name, NORMS_CODEC,
		FORMAT_VERSION_START, FORMAT_VERSION, r.Info.ID)
	if err != nil {
		return err
	}
	numFields, err := in.ReadVInt()
	if err != nil {
		return err
	}
	for i := int32(0); i < numFields; i++ {
		number, err := in.ReadVInt()
		if err != nil {
			return err
		}
		docs, err := readBitmap(in)
		if err != nil {
			return err
		}
		norms := make([]byte, r.Info.DocCount)
		if err = in.ReadBytes(norms); err != nil {
			return err
		}
		r.norms[number] = norms
		r.docsWithNorms[number] = docs
	}
	return codec.CheckEOF(in)
}

func (r *SegmentReader) readVectors(dir store.Directory) error {
	docStore := r.Info.DocStoreSegment
	tvx, _, _, err := codec.OpenVerifiedInput(dir, util.SegmentFileName(docStore, "", VECTORS_INDEX_EXTENSION),
		VECTORS_INDEX_CODEC, FORMAT_VERSION_START, FORMAT_VERSION, r.Info.DocStoreID)
	if err != nil {
		return err
	}
	tvd, _, _, err := codec.OpenVerifiedInput(dir, util.SegmentFileName(docStore, "", VECTORS_DOCUMENTS_EXTENSION),
		VECTORS_DOCS_CODEC, FORMAT_VERSION_START, FORMAT_VERSION, r.Info.DocStoreID)
	if err != nil {
		return err
	}
	mode, err := tvd.ReadVInt()
	if err != nil {
		return err
	}
	if mode < int32(compressing.COMPRESSION_MODE_NONE) || mode > int32(compressing.COMPRESSION_MODE_HIGH) {
		return errors.Wrapf(codec.ErrCorruptIndex, "unknown compression mode %v (resource: %v)", mode, tvd)
	}
	decompressor := compressing.CompressionModeDefaults(mode).NewDecompressor()

	const entryLength = 12 // Long pointer, Int numFields
	headerLength := tvx.FilePointer()
	numEntries := (tvx.Length() - headerLength) / entryLength
	if int64(r.Info.DocStoreOffset+r.Info.DocCount) > numEntries {
		return errors.Wrapf(codec.ErrCorruptIndex,
			"doc store %v holds %v documents, segment needs %v", docStore, numEntries,
			r.Info.DocStoreOffset+r.Info.DocCount)
	}

	r.vectors = make([][]FieldVector, r.Info.DocCount)
	for docID := range r.vectors {
		if err = tvx.Seek(headerLength + int64(r.Info.DocStoreOffset+docID)*entryLength); err != nil {
			return err
		}
		pointer, err := tvx.ReadLong()
		if err != nil {
			return err
		}
		numFields, err := tvx.ReadInt()
		if err != nil {
			return err
		}
		if numFields == 0 {
			continue
		}
		if err = tvd.Seek(pointer); err != nil {
			return err
		}
		block, err := decompressor(tvd)
		if err != nil {
			return err
		}
		if r.vectors[docID], err = decodeVectors(store.NewByteArrayIndexInput("tvd block", block)); err != nil {
			return errors.Wrapf(err, "decode term vectors of doc %v", docID)
		}
		if len(r.vectors[docID]) != int(numFields) {
			return errors.Wrapf(codec.ErrCorruptIndex, "doc %v: %v fields in .tvx vs %v in .tvd",
				docID, numFields, len(r.vectors[docID]))
		}
	}
	return nil
}

func decodeVectors(in *store.ByteArrayIndexInput) ([]FieldVector, error) {
	numFields, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	fields := make([]FieldVector, numFields)
	for i := range fields {
		f := &fields[i]
		if f.Number, err = in.ReadVInt(); err != nil {
			return nil, err
		}
		bits, err := in.ReadByte()
		if err != nil {
			return nil, err
		}
		f.HasPositions = bits&TV_STORE_POSITIONS != 0
		f.HasOffsets = bits&TV_STORE_OFFSETS != 0
		numTerms, err := in.ReadVInt()
		if err != nil {
			return nil, err
		}
		f.Terms = make([]TermVectorEntry, numTerms)
		var lastTerm []byte
		for j := range f.Terms {
			if lastTerm, err = decodeTermVector(in, f, &f.Terms[j], lastTerm); err != nil {
				return nil, err
			}
		}
	}
	return fields, codec.CheckEOF(in)
}

func decodeTermVector(in *store.ByteArrayIndexInput, f *FieldVector,
	tv *TermVectorEntry, lastTerm []byte) ([]byte, error) {

	prefix, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	suffix, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	if prefix < 0 || suffix < 0 || int(prefix) > len(lastTerm) {
		return nil, errors.Wrapf(codec.ErrCorruptIndex, "invalid term prefix %v/%v", prefix, suffix)
	}
	term := make([]byte, int(prefix)+int(suffix))
	copy(term, lastTerm[:prefix])
	if err = in.ReadBytes(term[prefix:]); err != nil {
		return nil, err
	}
	tv.Term = string(term)
	freq, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	tv.Freq = int(freq)
	if f.HasPositions {
		tv.Positions = make([]int, freq)
		position := 0
		for k := range tv.Positions {
			delta, err := in.ReadVInt()
			if err != nil {
				return nil, err
			}
			position += int(delta)
			tv.Positions[k] = position
		}
	}
	if f.HasOffsets {
		tv.StartOffsets = make([]int, freq)
		tv.EndOffsets = make([]int, freq)
		lastOffset := 0
		for k := range tv.StartOffsets {
			delta, err := in.ReadVInt()
			if err != nil {
				return nil, err
			}
			length, err := in.ReadVInt()
			if err != nil {
				return nil, err
			}
			tv.StartOffsets[k] = lastOffset + int(delta)
			tv.EndOffsets[k] = tv.StartOffsets[k] + int(length)
			lastOffset = tv.EndOffsets[k]
		}
	}
	return term, nil
}
