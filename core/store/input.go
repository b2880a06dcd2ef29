package store

import (
	"fmt"
	"io"

	"github.com/ironsweet/termshash/core/util"
	"github.com/pkg/errors"
)

// store/IndexInput.java

/*
Abstract base type for input from a file in a Directory. A
random-access input stream. Used for all index file reads.
*/
type IndexInput interface {
	io.Closer
	util.DataInput
	// Returns the current position in this file, where the next read
	// will occur.
	FilePointer() int64
	// Sets current position in this file, where the next read will
	// occur.
	Seek(pos int64) error
	// The number of bytes in the file.
	Length() int64
	// Returns a clone of this stream, positioned independently.
	Clone() IndexInput
}

type IndexInputImpl struct {
	*util.DataInputImpl
	desc string
}

func NewIndexInputImpl(desc string, r util.DataReader) *IndexInputImpl {
	assert2(desc != "", "resourceDescription must not be empty")
	return &IndexInputImpl{util.NewDataInput(r), desc}
}

func (in *IndexInputImpl) String() string {
	return in.desc
}

// store/ByteArrayIndexInput.java

/* An IndexInput over an immutable in-memory copy of a file. */
type ByteArrayIndexInput struct {
	*IndexInputImpl
	bytes []byte
	pos   int
}

func NewByteArrayIndexInput(desc string, bytes []byte) *ByteArrayIndexInput {
	in := &ByteArrayIndexInput{bytes: bytes}
	in.IndexInputImpl = NewIndexInputImpl(desc, in)
	return in
}

func (in *ByteArrayIndexInput) ReadByte() (byte, error) {
	if in.pos >= len(in.bytes) {
		return 0, errors.Wrapf(io.ErrUnexpectedEOF, "read past EOF: %v", in)
	}
	b := in.bytes[in.pos]
	in.pos++
	return b, nil
}

func (in *ByteArrayIndexInput) ReadBytes(buf []byte) error {
	if len(buf) > len(in.bytes)-in.pos {
		return errors.Wrapf(io.ErrUnexpectedEOF, "read past EOF: %v", in)
	}
	in.pos += copy(buf, in.bytes[in.pos:])
	return nil
}

func (in *ByteArrayIndexInput) FilePointer() int64 { return int64(in.pos) }
func (in *ByteArrayIndexInput) Length() int64      { return int64(len(in.bytes)) }
func (in *ByteArrayIndexInput) Close() error       { return nil }

func (in *ByteArrayIndexInput) Seek(pos int64) error {
	if pos < 0 || pos > int64(len(in.bytes)) {
		return errors.Wrapf(io.ErrUnexpectedEOF, "seek to %v out of bounds: %v", pos, in)
	}
	in.pos = int(pos)
	return nil
}

func (in *ByteArrayIndexInput) Clone() IndexInput {
	ans := NewByteArrayIndexInput(in.desc, in.bytes)
	ans.pos = in.pos
	return ans
}

// store/ChecksumIndexInput.java

/*
Extension of IndexInput, computing checksum as it goes.
Callers can retrieve the checksum via Checksum().
*/
type ChecksumIndexInput interface {
	IndexInput
	Checksum() int64
}

// store/BufferedChecksumIndexInput.java

/*
Simple implementation of ChecksumIndexInput that wraps another input
and delegates calls.
*/
type BufferedChecksumIndexInput struct {
	*IndexInputImpl
	main   IndexInput
	digest *crcDigest
}

func newBufferedChecksumIndexInput(main IndexInput) *BufferedChecksumIndexInput {
	ans := &BufferedChecksumIndexInput{
		main:   main,
		digest: newCRCDigest(),
	}
	ans.IndexInputImpl = NewIndexInputImpl(
		fmt.Sprintf("BufferedChecksumIndexInput(%v)", main), ans)
	return ans
}

func (in *BufferedChecksumIndexInput) ReadByte() (b byte, err error) {
	if b, err = in.main.ReadByte(); err == nil {
		in.digest.Write([]byte{b})
	}
	return
}

func (in *BufferedChecksumIndexInput) ReadBytes(p []byte) (err error) {
	if err = in.main.ReadBytes(p); err == nil {
		in.digest.Write(p)
	}
	return
}

func (in *BufferedChecksumIndexInput) Checksum() int64    { return in.digest.Value() }
func (in *BufferedChecksumIndexInput) Close() error       { return in.main.Close() }
func (in *BufferedChecksumIndexInput) FilePointer() int64 { return in.main.FilePointer() }
func (in *BufferedChecksumIndexInput) Length() int64      { return in.main.Length() }

/* Seeks forward only, by reading and checksumming the skipped bytes. */
func (in *BufferedChecksumIndexInput) Seek(pos int64) error {
	skip := pos - in.FilePointer()
	if skip < 0 {
		return errors.Errorf("%v cannot seek backwards", in)
	}
	buf := make([]byte, 1024)
	for skip > 0 {
		n := int64(len(buf))
		if skip < n {
			n = skip
		}
		if err := in.ReadBytes(buf[:n]); err != nil {
			return err
		}
		skip -= n
	}
	return nil
}

func (in *BufferedChecksumIndexInput) Clone() IndexInput {
	panic("not supported")
}
