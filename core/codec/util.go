package codec

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// codecs/CodecUtil.java

/* Constant to identify the start of a codec header. */
const CODEC_MAGIC = 0x3fd76c17

/* Constant to identify the start of a codec footer. */
const FOOTER_MAGIC = ^CODEC_MAGIC

const FOOTER_LENGTH = 16

/* Length of the segment id stored in every header. */
const ID_LENGTH = 16

var ErrCorruptIndex = errors.New("corrupt index")

type DataOutput interface {
	WriteInt(n int32) error
	WriteString(s string) error
	WriteBytes(buf []byte) error
}

/*
Writes a codec header, which records a string to identify the file,
a version number and the id of the segment the file belongs to. This
header can be parsed and validated with CheckHeader().

CodecHeader --> Magic,CodecName,Version,SegmentID
	Magic --> uint32. This identifies the start of the header. It is
	always CODEC_MAGIC.
	CodecName --> string. This is a string to identify this file.
	Version --> uint32. Records the version of the file.
	SegmentID --> 16 bytes. A random id shared by all files of one
	flushed segment, so files from different flushes can not be
	mixed up.

Note that the length of a codec header depends only upon the name of
the codec, so this length can be computed at any time with
HeaderLength().
*/
func WriteHeader(out DataOutput, codec string, version int32, id uuid.UUID) error {
	assertTrue(out != nil)
	assert2(len(codec) < 128 && isASCII(codec),
		"codec must be simple ASCII, less than 128 characters in length [got %v]", codec)
	if err := out.WriteInt(CODEC_MAGIC); err != nil {
		return err
	}
	if err := out.WriteString(codec); err != nil {
		return err
	}
	if err := out.WriteInt(version); err != nil {
		return err
	}
	return out.WriteBytes(id[:])
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

/* Computes the length of a codec header */
func HeaderLength(codec string) int {
	return 9 + len(codec) + ID_LENGTH
}

type DataInput interface {
	ReadInt() (int32, error)
	ReadString() (string, error)
	ReadBytes(buf []byte) error
}

/*
Reads and validates a header previously written with WriteHeader().
If expectedID is not uuid.Nil the segment id must match it. Returns
the actual version and segment id.
*/
func CheckHeader(in DataInput, codec string, minVersion, maxVersion int32,
	expectedID uuid.UUID) (v int32, id uuid.UUID, err error) {

	// Safety to guard against reading a bogus string:
	actualHeader, err := in.ReadInt()
	if err != nil {
		return 0, id, err
	}
	if actualHeader != CODEC_MAGIC {
		return 0, id, errors.Wrapf(ErrCorruptIndex,
			"codec header mismatch: actual header=%v vs expected header=%v (resource: %v)",
			actualHeader, CODEC_MAGIC, in)
	}
	actualCodec, err := in.ReadString()
	if err != nil {
		return 0, id, err
	}
	if actualCodec != codec {
		return 0, id, errors.Wrapf(ErrCorruptIndex,
			"codec mismatch: actual codec=%v vs expected codec=%v (resource: %v)",
			actualCodec, codec, in)
	}
	if v, err = in.ReadInt(); err != nil {
		return 0, id, err
	}
	if v < minVersion || v > maxVersion {
		return 0, id, NewIndexFormatError(in, v, minVersion, maxVersion)
	}
	if err = in.ReadBytes(id[:]); err != nil {
		return 0, id, err
	}
	if expectedID != uuid.Nil && id != expectedID {
		return 0, id, errors.Wrapf(ErrCorruptIndex,
			"file mismatch, expected segment id=%v, got=%v (resource: %v)",
			expectedID, id, in)
	}
	return v, id, nil
}

func NewIndexFormatError(in DataInput, version, minVersion, maxVersion int32) error {
	return errors.Wrapf(ErrCorruptIndex,
		"Format version is not supported (resource: %v): %v (needs to be between %v and %v)",
		in, version, minVersion, maxVersion)
}

type IndexOutput interface {
	WriteInt(n int32) error
	WriteLong(n int64) error
	Checksum() int64
}

/*
Writes a codec footer, which records both a checksum algorithm ID and
a checksum. This footer can be parsed and validated with CheckFooter().

CodecFooter --> Magic,AlgorithmID,Checksum
	- Magic --> uint32. This identifies the start of the footer. It is
		always FOOTER_MAGIC.
	- AlgorithmID --> uint32. This indicates the checksum algorithm
		used. Currently this is always 0, for zlib-crc32.
	- Checksum --> uint64. The actual checksum value for all previous
		bytes in the stream, including the bytes from Magic and AlgorithmID.
*/
func WriteFooter(out IndexOutput) (err error) {
	if err = out.WriteInt(FOOTER_MAGIC); err == nil {
		if err = out.WriteInt(0); err == nil {
			err = out.WriteLong(out.Checksum())
		}
	}
	return
}

type ChecksumIndexInput interface {
	IndexInput
	Checksum() int64
}

type IndexInput interface {
	FilePointer() int64
	Length() int64
	ReadInt() (int32, error)
	ReadLong() (int64, error)
}

/* Validates the codec footer previously written by WriteFooter(). */
func CheckFooter(in ChecksumIndexInput) (cs int64, err error) {
	if err = validateFooter(in); err != nil {
		return 0, err
	}
	cs = in.Checksum()
	cs2, err := in.ReadLong()
	if err != nil {
		return 0, err
	}
	if cs != cs2 {
		return 0, errors.Wrapf(ErrCorruptIndex,
			"checksum failed (hardware problem?): expected=%x actual=%x (resource=%v)",
			cs2, cs, in)
	}
	if err = CheckEOF(in); err != nil {
		return 0, err
	}
	return cs, nil
}

func validateFooter(in IndexInput) error {
	magic, err := in.ReadInt()
	if err != nil {
		return err
	}
	if magic != FOOTER_MAGIC {
		return errors.Wrapf(ErrCorruptIndex,
			"codec footer mismatch: actual footer=%v vs expected footer=%v (resource: %v)",
			magic, FOOTER_MAGIC, in)
	}
	algorithmId, err := in.ReadInt()
	if err != nil {
		return err
	}
	if algorithmId != 0 {
		return errors.Wrapf(ErrCorruptIndex,
			"codec footer mismatch: unknown algorithmID: %v", algorithmId)
	}
	return nil
}

/* Checks that the stream is positioned at the end, and returns error if it is not. */
func CheckEOF(in IndexInput) error {
	if in.FilePointer() != in.Length() {
		return errors.Wrapf(ErrCorruptIndex,
			"did not read all bytes from file: read %v vs size %v (resource: %v)",
			in.FilePointer(), in.Length(), in)
	}
	return nil
}

func assertTrue(ok bool) {
	assert2(ok, "assert fail")
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
