package util

import (
	"sort"
)

// store/DataOutput.java

/*
Base type for performing write operations of the low-level data
types used by the index files.

DataOutput may only be used from one goroutine, because it keeps
internal state like the file position.
*/
type DataOutput interface {
	DataWriter
	WriteInt(i int32) error
	WriteVInt(i int32) error
	WriteLong(i int64) error
	WriteVLong(i int64) error
	WriteString(s string) error
	WriteStringStringMap(m map[string]string) error
	WriteStringSet(s []string) error
}

type DataWriter interface {
	WriteByte(b byte) error
	WriteBytes(buf []byte) error
}

type DataOutputImpl struct {
	Writer  DataWriter
	scratch [10]byte
}

func NewDataOutput(part DataWriter) *DataOutputImpl {
	assertTrue(part != nil)
	return &DataOutputImpl{Writer: part}
}

/* Writes an int as four bytes, high-order bytes first. */
func (out *DataOutputImpl) WriteInt(i int32) error {
	out.scratch[0] = byte(i >> 24)
	out.scratch[1] = byte(i >> 16)
	out.scratch[2] = byte(i >> 8)
	out.scratch[3] = byte(i)
	return out.Writer.WriteBytes(out.scratch[:4])
}

/*
Writes an int in a variable-length format. Writes between one and
five bytes. Smaller values take fewer bytes. Negative numbers are
supported, but should be avoided.

The high-order bit of each byte indicates whether more bytes remain
to be read. The low-order seven bits are appended as increasingly
more significant bits in the resulting integer value. Thus values
from zero to 127 may be stored in a single byte, values from 128 to
16,383 may be stored in two bytes, and so on.
*/
func (out *DataOutputImpl) WriteVInt(i int32) error {
	return out.writeVarint(uint64(uint32(i)))
}

/* Writes a long as eight bytes, high-order bytes first. */
func (out *DataOutputImpl) WriteLong(i int64) error {
	for n := 0; n < 8; n++ {
		out.scratch[n] = byte(i >> uint(56-8*n))
	}
	return out.Writer.WriteBytes(out.scratch[:8])
}

/*
Writes a long in a variable-length format. Writes between one and
nine bytes. Negative numbers are not supported.
*/
func (out *DataOutputImpl) WriteVLong(i int64) error {
	assert2(i >= 0, "cannot write negative vLong (got: %v)", i)
	return out.writeVarint(uint64(i))
}

func (out *DataOutputImpl) writeVarint(v uint64) error {
	n := 0
	for v >= 0x80 {
		out.scratch[n] = byte(v&0x7F) | 0x80
		v >>= 7
		n++
	}
	out.scratch[n] = byte(v)
	return out.Writer.WriteBytes(out.scratch[:n+1])
}

/*
Writes a string as UTF-8 encoded bytes. First the length, in bytes,
is written as a VInt, followed by the bytes.
*/
func (out *DataOutputImpl) WriteString(s string) error {
	if err := out.WriteVInt(int32(len(s))); err != nil {
		return err
	}
	return out.Writer.WriteBytes([]byte(s))
}

/*
Writes a string map. First the size is written as an int32, followed
by each key-value pair, in key order, as two consecutive strings.
*/
func (out *DataOutputImpl) WriteStringStringMap(m map[string]string) error {
	if err := out.WriteInt(int32(len(m))); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := out.WriteString(k); err != nil {
			return err
		}
		if err := out.WriteString(m[k]); err != nil {
			return err
		}
	}
	return nil
}

/* Writes a sorted string set: the size as an int32, then each value. */
func (out *DataOutputImpl) WriteStringSet(s []string) error {
	values := append([]string(nil), s...)
	sort.Strings(values)
	if err := out.WriteInt(int32(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := out.WriteString(v); err != nil {
			return err
		}
	}
	return nil
}

// store/GrowableByteArrayDataOutput.java

/* A DataOutput that appends to a growing byte slice. */
type GrowableByteArrayDataOutput struct {
	*DataOutputImpl
	bytes []byte
}

func NewGrowableByteArrayDataOutput(capacity int) *GrowableByteArrayDataOutput {
	out := &GrowableByteArrayDataOutput{bytes: make([]byte, 0, capacity)}
	out.DataOutputImpl = NewDataOutput(out)
	return out
}

func (out *GrowableByteArrayDataOutput) WriteByte(b byte) error {
	out.bytes = append(out.bytes, b)
	return nil
}

func (out *GrowableByteArrayDataOutput) WriteBytes(buf []byte) error {
	out.bytes = append(out.bytes, buf...)
	return nil
}

/* Returns the bytes written so far; valid until the next write or Reset(). */
func (out *GrowableByteArrayDataOutput) Bytes() []byte { return out.bytes }

func (out *GrowableByteArrayDataOutput) Length() int { return len(out.bytes) }

func (out *GrowableByteArrayDataOutput) Reset() { out.bytes = out.bytes[:0] }
