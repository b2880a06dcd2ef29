package store

import (
	"hash"
	"hash/crc32"
)

// store/BufferedChecksum.java

/* zlib-crc32 digest shared by checksumming inputs and outputs. */
type crcDigest struct {
	hash.Hash32
}

func newCRCDigest() *crcDigest {
	return &crcDigest{crc32.NewIEEE()}
}

func (d *crcDigest) Value() int64 {
	return int64(d.Sum32())
}
