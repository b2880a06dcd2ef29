package util

import (
	"errors"
)

// store/DataInput.java

/*
Base type for performing read operations of the low-level data types
used by the index files.

DataInput may only be used from one goroutine, because it keeps
internal state like the file position.
*/
type DataInput interface {
	DataReader
	ReadInt() (n int32, err error)
	ReadVInt() (n int32, err error)
	ReadLong() (n int64, err error)
	ReadVLong() (n int64, err error)
	ReadString() (s string, err error)
	ReadStringStringMap() (m map[string]string, err error)
	ReadStringSet() (s []string, err error)
}

type DataReader interface {
	/* Reads and returns a single byte. */
	ReadByte() (b byte, err error)
	/* Reads a specified number of bytes into an array */
	ReadBytes(buf []byte) error
}

var (
	ErrInvalidVInt  = errors.New("Invalid vInt detected (too many bits)")
	ErrInvalidVLong = errors.New("Invalid vLong detected (negative values disallowed)")
)

type DataInputImpl struct {
	Reader  DataReader
	scratch [8]byte
}

func NewDataInput(spi DataReader) *DataInputImpl {
	return &DataInputImpl{Reader: spi}
}

func (in *DataInputImpl) ReadInt() (int32, error) {
	if err := in.Reader.ReadBytes(in.scratch[:4]); err != nil {
		return 0, err
	}
	b := in.scratch
	return (int32(b[0]) << 24) | (int32(b[1]) << 16) | (int32(b[2]) << 8) | int32(b[3]), nil
}

func (in *DataInputImpl) ReadVInt() (int32, error) {
	var n uint32
	for shift := uint(0); shift <= 28; shift += 7 {
		b, err := in.Reader.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift == 28 && b&0xF0 != 0 {
			return 0, ErrInvalidVInt
		}
		n |= uint32(b&0x7F) << shift
		if b < 0x80 {
			return int32(n), nil
		}
	}
	return 0, ErrInvalidVInt
}

func (in *DataInputImpl) ReadLong() (int64, error) {
	if err := in.Reader.ReadBytes(in.scratch[:8]); err != nil {
		return 0, err
	}
	var n int64
	for _, b := range in.scratch {
		n = (n << 8) | int64(b)
	}
	return n, nil
}

func (in *DataInputImpl) ReadVLong() (int64, error) {
	var n uint64
	for shift := uint(0); shift <= 56; shift += 7 {
		b, err := in.Reader.ReadByte()
		if err != nil {
			return 0, err
		}
		n |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return int64(n), nil
		}
	}
	return 0, ErrInvalidVLong
}

func (in *DataInputImpl) ReadString() (string, error) {
	length, err := in.ReadVInt()
	if err != nil {
		return "", err
	}
	bytes := make([]byte, length)
	if err = in.Reader.ReadBytes(bytes); err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (in *DataInputImpl) ReadStringStringMap() (map[string]string, error) {
	count, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	for i := int32(0); i < count; i++ {
		key, err := in.ReadString()
		if err != nil {
			return nil, err
		}
		value, err := in.ReadString()
		if err != nil {
			return nil, err
		}
		m[key] = value
	}
	return m, nil
}

func (in *DataInputImpl) ReadStringSet() ([]string, error) {
	count, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	s := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		value, err := in.ReadString()
		if err != nil {
			return nil, err
		}
		s = append(s, value)
	}
	return s, nil
}
