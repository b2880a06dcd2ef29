package lucene29

import (
	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/TermInfosReader.java

/* Occurrences of a term in one document. */
type Posting struct {
	DocID int
	// 1 when the field omits frequencies
	Freq      int
	Positions []int
}

type TermInfo struct {
	Term    []byte
	DocFreq int
	// -1 when the field omits frequencies
	TotalTermFreq int64
	Postings      []Posting
}

type FieldTerms struct {
	Number           int32
	Terms            []TermInfo
	SumTotalTermFreq int64
	SumDocFreq       int64
	DocCount         int
}

/* Returns the term, or nil if the field does not have it. */
func (ft *FieldTerms) Term(text string) *TermInfo {
	for i := range ft.Terms {
		if string(ft.Terms[i].Term) == text {
			return &ft.Terms[i]
		}
	}
	return nil
}

/* An entry of the sampled term index. */
type IndexTerm struct {
	Field int32
	Term  []byte
	// offsets from the end of the header of .tis, .frq and .prx
	TermsPointer int64
	FreqPointer  int64
	ProxPointer  int64
}

/*
Fully decoded postings of a segment, for verification and tests. All
four files are checked against their footer checksum and the segment
id before anything is decoded.
*/
type FieldsReader struct {
	fields map[int32]*FieldTerms
	index  []IndexTerm
}

func ReadFields(dir store.Directory, segment string, segmentID uuid.UUID,
	fieldInfos *model.FieldInfos) (*FieldsReader, error) {

	open := func(ext, codecName string) (*store.ByteArrayIndexInput, error) {
		in, _, _, err := codec.OpenVerifiedInput(dir, util.SegmentFileName(segment, "", ext),
			codecName, VERSION_START, VERSION_CURRENT, segmentID)
		return in, err
	}
	tis, err := open(TERMS_EXTENSION, TERMS_CODEC)
	if err != nil {
		return nil, err
	}
	tii, err := open(TERMS_INDEX_EXTENSION, TERMS_INDEX_CODEC)
	if err != nil {
		return nil, err
	}
	frq, err := open(FREQ_EXTENSION, FREQ_CODEC)
	if err != nil {
		return nil, err
	}
	prx, err := open(PROX_EXTENSION, PROX_CODEC)
	if err != nil {
		return nil, err
	}

	r := &FieldsReader{fields: make(map[int32]*FieldTerms)}
	if err = r.readTerms(tis, frq, prx, fieldInfos); err != nil {
		return nil, errors.Wrapf(err, "read terms of segment %v", segment)
	}
	if err = r.readIndex(tii); err != nil {
		return nil, errors.Wrapf(err, "read term index of segment %v", segment)
	}
	return r, nil
}

/* Returns the terms of the field, or nil if it has no postings. */
func (r *FieldsReader) Field(number int32) *FieldTerms { return r.fields[number] }

func (r *FieldsReader) IndexTerms() []IndexTerm { return r.index }

func (r *FieldsReader) readTerms(tis, frq, prx *store.ByteArrayIndexInput,
	fieldInfos *model.FieldInfos) error {

	freqPointer, proxPointer := frq.FilePointer(), prx.FilePointer()
	for {
		code, err := tis.ReadVInt()
		if err != nil {
			return err
		}
		if code == 0 {
			break
		}
		fi := fieldInfos.FieldInfoByNumber(int(code - 1))
		if fi == nil {
			return errors.Wrapf(codec.ErrCorruptIndex, "unknown field number %v", code-1)
		}
		hasFreqs := fi.IndexOptions().HasFreqs()
		hasPositions := fi.IndexOptions().HasPositions()
		ft := &FieldTerms{Number: fi.Number}

		var lastTerm []byte
		for {
			if code, err = tis.ReadVInt(); err != nil {
				return err
			}
			if code == 0 {
				break
			}
			prefix := int(code - 1)
			suffixLength, err := tis.ReadVInt()
			if err != nil {
				return err
			}
			if prefix > len(lastTerm) || suffixLength < 0 {
				return errors.Wrapf(codec.ErrCorruptIndex, "bad term entry in field %v", fi.Name)
			}
			term := make([]byte, prefix+int(suffixLength))
			copy(term, lastTerm[:prefix])
			if err = tis.ReadBytes(term[prefix:]); err != nil {
				return err
			}
			docFreq, err := tis.ReadVInt()
			if err != nil {
				return err
			}
			ti := TermInfo{Term: term, DocFreq: int(docFreq), TotalTermFreq: -1}
			if hasFreqs {
				extra, err := tis.ReadVLong()
				if err != nil {
					return err
				}
				ti.TotalTermFreq = int64(docFreq) + extra
			}
			delta, err := tis.ReadVLong()
			if err != nil {
				return err
			}
			freqPointer += delta
			if hasPositions {
				if delta, err = tis.ReadVLong(); err != nil {
					return err
				}
				proxPointer += delta
			}
			if err = readPostings(&ti, frq, prx, freqPointer, proxPointer, hasFreqs, hasPositions); err != nil {
				return err
			}
			ft.Terms = append(ft.Terms, ti)
			lastTerm = term
		}

		if ft.SumTotalTermFreq, err = tis.ReadVLong(); err != nil {
			return err
		}
		if ft.SumDocFreq, err = tis.ReadVLong(); err != nil {
			return err
		}
		docCount, err := tis.ReadVInt()
		if err != nil {
			return err
		}
		ft.DocCount = int(docCount)
		r.fields[ft.Number] = ft
	}
	return codec.CheckEOF(tis)
}

func readPostings(ti *TermInfo, frq, prx *store.ByteArrayIndexInput,
	freqPointer, proxPointer int64, hasFreqs, hasPositions bool) error {

	if err := frq.Seek(freqPointer); err != nil {
		return err
	}
	if hasPositions {
		if err := prx.Seek(proxPointer); err != nil {
			return err
		}
	}
	ti.Postings = make([]Posting, ti.DocFreq)
	docID := 0
	for i := range ti.Postings {
		code, err := frq.ReadVInt()
		if err != nil {
			return err
		}
		freq := 1
		if !hasFreqs {
			docID += int(code)
		} else {
			docID += int(uint32(code) >> 1)
			if code&1 == 0 {
				n, err := frq.ReadVInt()
				if err != nil {
					return err
				}
				freq = int(n)
			}
		}
		p := Posting{DocID: docID, Freq: freq}
		if hasPositions {
			p.Positions = make([]int, freq)
			position := 0
			for j := range p.Positions {
				delta, err := prx.ReadVInt()
				if err != nil {
					return err
				}
				position += int(delta)
				p.Positions[j] = position
			}
		}
		ti.Postings[i] = p
	}
	return nil
}

func (r *FieldsReader) readIndex(tii *store.ByteArrayIndexInput) error {
	for {
		code, err := tii.ReadVInt()
		if err != nil {
			return err
		}
		if code == 0 {
			return codec.CheckEOF(tii)
		}
		length, err := tii.ReadVInt()
		if err != nil {
			return err
		}
		entry := IndexTerm{Field: code - 1, Term: make([]byte, length)}
		if err = tii.ReadBytes(entry.Term); err != nil {
			return err
		}
		if entry.TermsPointer, err = tii.ReadVLong(); err != nil {
			return err
		}
		if entry.FreqPointer, err = tii.ReadVLong(); err != nil {
			return err
		}
		if entry.ProxPointer, err = tii.ReadVLong(); err != nil {
			return err
		}
		r.index = append(r.index, entry)
	}
}
