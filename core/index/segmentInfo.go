package index

import (
	"fmt"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// index/SegmentInfo.java

/*
Information about a segment such as its name, document count and the
doc store it shares its term vectors with. The .si file is written
after every other file of the segment, so a segment without one was
never completed.

.si: header, String version, Int docCount, Int delCount,
String docStoreSegment, Int docStoreOffset, 16 bytes docStoreID,
byte hasVectors, byte hasProx, StringSet files, footer.
*/
type SegmentInfo struct {
	Name     string
	DocCount int
	DelCount int
	// Where the term vectors of this segment live, starting at
	// DocStoreOffset within that doc store.
	DocStoreSegment string
	DocStoreOffset  int
	DocStoreID      uuid.UUID
	HasVectors      bool
	HasProx         bool
	// The files of the segment, including the .si file
	Files   []string
	ID      uuid.UUID
	Version string
}

func (si *SegmentInfo) String() string {
	return fmt.Sprintf("%v(%v):%v/%v docStore=%v@%v", si.Name, si.Version,
		si.DocCount, si.DelCount, si.DocStoreSegment, si.DocStoreOffset)
}

func writeSegmentInfo(state *SegmentWriteState, si *SegmentInfo) (err error) {
	name := state.SegmentFileName(SEGMENT_INFO_EXTENSION)
	si.Files = append(state.FlushedFiles(), name)
	sort.Strings(si.Files)

	out, err := state.CreateOutput(name)
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			out.Abort()
		}
	}()

	if err = codec.WriteHeader(out, SEGMENT_INFO_CODEC, FORMAT_VERSION, si.ID); err != nil {
		return err
	}
	if err = out.WriteString(si.Version); err != nil {
		return err
	}
	if err = out.WriteInt(int32(si.DocCount)); err != nil {
		return err
	}
	if err = out.WriteInt(int32(si.DelCount)); err != nil {
		return err
	}
	if err = out.WriteString(si.DocStoreSegment); err != nil {
		return err
	}
	if err = out.WriteInt(int32(si.DocStoreOffset)); err != nil {
		return err
	}
	if err = out.WriteBytes(si.DocStoreID[:]); err != nil {
		return err
	}
	if err = out.WriteByte(boolByte(si.HasVectors)); err != nil {
		return err
	}
	if err = out.WriteByte(boolByte(si.HasProx)); err != nil {
		return err
	}
	if err = out.WriteStringSet(si.Files); err != nil {
		return err
	}
	if err = codec.WriteFooter(out); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	success = true
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

/* Reads and verifies the .si file of the named segment. */
func ReadSegmentInfo(dir store.Directory, segment string) (*SegmentInfo, error) {
	name := util.SegmentFileName(segment, "", SEGMENT_INFO_EXTENSION)
	in, _, id, err := codec.OpenVerifiedInput(dir, name, SEGMENT_INFO_CODEC,
		FORMAT_VERSION_START, FORMAT_VERSION, uuid.Nil)
	if err != nil {
		return nil, err
	}
	si := &SegmentInfo{Name: segment, ID: id}
	if si.Version, err = in.ReadString(); err != nil {
		return nil, err
	}
	var n int32
	if n, err = in.ReadInt(); err != nil {
		return nil, err
	}
	si.DocCount = int(n)
	if n, err = in.ReadInt(); err != nil {
		return nil, err
	}
	si.DelCount = int(n)
	if si.DocStoreSegment, err = in.ReadString(); err != nil {
		return nil, err
	}
	if n, err = in.ReadInt(); err != nil {
		return nil, err
	}
	si.DocStoreOffset = int(n)
	if err = in.ReadBytes(si.DocStoreID[:]); err != nil {
		return nil, err
	}
	var b byte
	if b, err = in.ReadByte(); err != nil {
		return nil, err
	}
	si.HasVectors = b != 0
	if b, err = in.ReadByte(); err != nil {
		return nil, err
	}
	si.HasProx = b != 0
	if si.Files, err = in.ReadStringSet(); err != nil {
		return nil, err
	}
	if err = codec.CheckEOF(in); err != nil {
		return nil, err
	}
	if si.DocCount < 0 || si.DelCount < 0 || si.DelCount > si.DocCount {
		return nil, errors.Wrapf(codec.ErrCorruptIndex,
			"invalid document counts %v/%v (resource: %v)", si.DelCount, si.DocCount, name)
	}
	return si, nil
}

/*
Returns the names of the committed segments of the directory, i.e.
the ones whose .si file exists, in flush order.
*/
func ListSegments(dir store.Directory) ([]string, error) {
	files, err := dir.ListAll()
	if err != nil {
		return nil, err
	}
	var segments []string
	for _, file := range files {
		if util.FileExtension(file) == SEGMENT_INFO_EXTENSION {
			segments = append(segments, util.ParseSegmentName(file))
		}
	}
	slices.SortFunc(segments, compareSegmentNames)
	return segments, nil
}

/* Orders "_9" before "_a" before "_10": shorter base 36 counters first. */
func compareSegmentNames(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// codec/lucene29/FieldInfosWriter.java

/* Bits of the per-field flags byte of .fnm. */
const (
	FI_IS_INDEXED                   = 0x1
	FI_STORE_TERMVECTOR             = 0x2
	FI_STORE_POSITIONS_WITH_VECTORS = 0x4
	FI_STORE_OFFSETS_WITH_VECTORS   = 0x8
	FI_OMIT_NORMS                   = 0x10
)

/*
.fnm: header, VInt numFields, then per field in number order:
String name, VInt number, flags byte, IndexOptions byte; footer.
*/
func writeFieldInfos(state *SegmentWriteState) (err error) {
	out, err := state.CreateOutput(state.SegmentFileName(FIELD_INFOS_EXTENSION))
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			out.Abort()
		}
	}()

	if err = codec.WriteHeader(out, FIELD_INFOS_CODEC, FORMAT_VERSION, state.SegmentID); err != nil {
		return err
	}
	infos := state.FieldInfos.Values()
	if err = out.WriteVInt(int32(len(infos))); err != nil {
		return err
	}
	for _, fi := range infos {
		var bits byte
		if fi.IsIndexed() {
			bits |= FI_IS_INDEXED
		}
		if fi.HasVectors() {
			bits |= FI_STORE_TERMVECTOR
		}
		if fi.HasVectorPositions() {
			bits |= FI_STORE_POSITIONS_WITH_VECTORS
		}
		if fi.HasVectorOffsets() {
			bits |= FI_STORE_OFFSETS_WITH_VECTORS
		}
		if fi.OmitsNorms() {
			bits |= FI_OMIT_NORMS
		}
		if err = out.WriteString(fi.Name); err != nil {
			return err
		}
		if err = out.WriteVInt(fi.Number); err != nil {
			return err
		}
		if err = out.WriteByte(bits); err != nil {
			return err
		}
		if err = out.WriteByte(byte(fi.IndexOptions())); err != nil {
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
	return nil
}

func readFieldInfos(dir store.Directory, segment string, segmentID uuid.UUID) (*model.FieldInfos, error) {
	name := util.SegmentFileName(segment, "", FIELD_INFOS_EXTENSION)
	in, _, _, err := codec.OpenVerifiedInput(dir, name, FIELD_INFOS_CODEC,
		FORMAT_VERSION_START, FORMAT_VERSION, segmentID)
	if err != nil {
		return nil, err
	}
	size, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	infos := make([]*model.FieldInfo, 0, size)
	for i := int32(0); i < size; i++ {
		fieldName, err := in.ReadString()
		if err != nil {
			return nil, err
		}
		number, err := in.ReadVInt()
		if err != nil {
			return nil, err
		}
		bits, err := in.ReadByte()
		if err != nil {
			return nil, err
		}
		opts, err := in.ReadByte()
		if err != nil {
			return nil, err
		}
		indexOptions := model.IndexOptions(opts)
		if indexOptions > model.INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS {
			return nil, errors.Wrapf(codec.ErrCorruptIndex,
				"invalid index options %v for field %v (resource: %v)", opts, fieldName, name)
		}
		infos = append(infos, model.NewFieldInfo(fieldName, number,
			bits&FI_IS_INDEXED != 0,
			bits&FI_STORE_TERMVECTOR != 0,
			bits&FI_STORE_POSITIONS_WITH_VECTORS != 0,
			bits&FI_STORE_OFFSETS_WITH_VECTORS != 0,
			bits&FI_OMIT_NORMS != 0,
			indexOptions))
	}
	if err = codec.CheckEOF(in); err != nil {
		return nil, err
	}
	return model.NewFieldInfos(infos...), nil
}

// codec/lucene40/BitVector.java

/*
.del: header, VInt delCount, VInt length + serialized roaring bitmap
of the deleted doc ids; footer.
*/
func writeDeletes(state *SegmentWriteState, deleted *roaring.Bitmap) (err error) {
	out, err := state.CreateOutput(state.SegmentFileName(DELETES_EXTENSION))
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			out.Abort()
		}
	}()

	if err = codec.WriteHeader(out, DELETES_CODEC, FORMAT_VERSION, state.SegmentID); err != nil {
		return err
	}
	deleted.RunOptimize()
	bitmap, err := deleted.ToBytes()
	if err != nil {
		return err
	}
	if err = out.WriteVInt(int32(deleted.GetCardinality())); err != nil {
		return err
	}
	if err = out.WriteVInt(int32(len(bitmap))); err != nil {
		return err
	}
	if err = out.WriteBytes(bitmap); err != nil {
		return err
	}
	if err = codec.WriteFooter(out); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	success = true
	return nil
}

func readDeletes(dir store.Directory, segment string, segmentID uuid.UUID, docCount int) (*roaring.Bitmap, error) {
	name := util.SegmentFileName(segment, "", DELETES_EXTENSION)
	in, _, _, err := codec.OpenVerifiedInput(dir, name, DELETES_CODEC,
		FORMAT_VERSION_START, FORMAT_VERSION, segmentID)
	if err != nil {
		return nil, err
	}
	count, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	deleted, err := readBitmap(in)
	if err != nil {
		return nil, err
	}
	if err = codec.CheckEOF(in); err != nil {
		return nil, err
	}
	if int(deleted.GetCardinality()) != int(count) ||
		(!deleted.IsEmpty() && int(deleted.Maximum()) >= docCount) {
		return nil, errors.Wrapf(codec.ErrCorruptIndex,
			"deleted docs do not match the segment (resource: %v)", name)
	}
	return deleted, nil
}

func readBitmap(in util.DataInput) (*roaring.Bitmap, error) {
	length, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, errors.Wrapf(codec.ErrCorruptIndex, "negative bitmap length %v", length)
	}
	buf := make([]byte, length)
	if err = in.ReadBytes(buf); err != nil {
		return nil, err
	}
	bitmap := roaring.New()
	if _, err = bitmap.FromBuffer(buf); err != nil {
		return nil, errors.Wrapf(codec.ErrCorruptIndex, "invalid bitmap: %v", err)
	}
	return bitmap, nil
}
