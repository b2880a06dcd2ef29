package compressing

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// codec/compressing/CompressionMode.java

/*
A compression mode. Tells how much effort should be spent on
compression and decompression of document blocks.
*/
type CompressionMode interface {
	NewCompressor() Compressor
	NewDecompressor() Decompressor
}

const (
	/* Blocks are stored as is. */
	COMPRESSION_MODE_NONE = CompressionModeDefaults(0)
	/* LZ4 block compression: very fast, moderate ratio. */
	COMPRESSION_MODE_FAST = CompressionModeDefaults(1)
	/* zstd compression: slower, better ratio. */
	COMPRESSION_MODE_HIGH = CompressionModeDefaults(2)
)

type CompressionModeDefaults int

func (m CompressionModeDefaults) String() string {
	switch m {
	case COMPRESSION_MODE_NONE:
		return "none"
	case COMPRESSION_MODE_FAST:
		return "fast"
	case COMPRESSION_MODE_HIGH:
		return "high"
	}
	return fmt.Sprintf("CompressionMode(%d)", int(m))
}

/* Parses the config name of a compression mode; "" means FAST. */
func ParseCompressionMode(name string) (CompressionModeDefaults, error) {
	switch name {
	case "", "fast", "lz4":
		return COMPRESSION_MODE_FAST, nil
	case "high", "zstd":
		return COMPRESSION_MODE_HIGH, nil
	case "none":
		return COMPRESSION_MODE_NONE, nil
	}
	return 0, errors.Errorf("unknown compression mode: %v", name)
}

func (m CompressionModeDefaults) NewCompressor() Compressor {
	switch m {
	case COMPRESSION_MODE_NONE:
		return storeCompressor
	case COMPRESSION_MODE_FAST:
		var ht lz4.Compressor
		return func(bytes []byte, out DataOutput) error {
			return writeBlock(bytes, out, func(src []byte) ([]byte, error) {
				dst := make([]byte, lz4.CompressBlockBound(len(src)))
				n, err := ht.CompressBlock(src, dst)
				return dst[:n], err
			})
		}
	case COMPRESSION_MODE_HIGH:
		return func(bytes []byte, out DataOutput) error {
			return writeBlock(bytes, out, func(src []byte) ([]byte, error) {
				enc := getZstdEncoder()
				defer zstdEncoderPool.Put(enc)
				return enc.EncodeAll(src, nil), nil
			})
		}
	}
	panic(fmt.Sprintf("unknown compression mode: %v", int(m)))
}

func (m CompressionModeDefaults) NewDecompressor() Decompressor {
	switch m {
	case COMPRESSION_MODE_NONE:
		return func(in DataInput) ([]byte, error) {
			return readBlock(in, nil)
		}
	case COMPRESSION_MODE_FAST:
		return func(in DataInput) ([]byte, error) {
			return readBlock(in, func(src, dst []byte) ([]byte, error) {
				n, err := lz4.UncompressBlock(src, dst)
				return dst[:n], err
			})
		}
	case COMPRESSION_MODE_HIGH:
		return func(in DataInput) ([]byte, error) {
			return readBlock(in, func(src, dst []byte) ([]byte, error) {
				dec := getZstdDecoder()
				defer zstdDecoderPool.Put(dec)
				return dec.DecodeAll(src, dst[:0])
			})
		}
	}
	panic(fmt.Sprintf("unknown compression mode: %v", int(m)))
}

// codec/compressing/Compressor.java

/*
Compress bytes into out. It is the responsibility of the compressor
to add all necessary information so that a Decompressor will know
when to stop decompressing bytes from the stream.

Block layout: VInt uncompressed length, VInt compressed length (0 if
the block is stored as is), then the block bytes.
*/
type Compressor func(bytes []byte, out DataOutput) error

// codec/compressing/Decompressor.java

/* Decompress the next block written by the matching Compressor. */
type Decompressor func(in DataInput) ([]byte, error)

type DataOutput interface {
	WriteVInt(i int32) error
	WriteBytes(buf []byte) error
}

type DataInput interface {
	ReadVInt() (int32, error)
	ReadBytes(buf []byte) error
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	assert2(err == nil, "zstd encoder: %v", err)
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, err := zstd.NewReader(nil)
	assert2(err == nil, "zstd decoder: %v", err)
	return dec
}

func storeCompressor(bytes []byte, out DataOutput) error {
	return writeRaw(bytes, out)
}

func writeRaw(bytes []byte, out DataOutput) error {
	if err := out.WriteVInt(int32(len(bytes))); err != nil {
		return err
	}
	if err := out.WriteVInt(0); err != nil {
		return err
	}
	return out.WriteBytes(bytes)
}

func writeBlock(bytes []byte, out DataOutput, compress func([]byte) ([]byte, error)) error {
	if len(bytes) == 0 {
		return writeRaw(bytes, out)
	}
	compressed, err := compress(bytes)
	if err != nil {
		return errors.Wrap(err, "compress block")
	}
	// incompressible data is stored as is
	if len(compressed) == 0 || len(compressed) >= len(bytes) {
		return writeRaw(bytes, out)
	}
	if err = out.WriteVInt(int32(len(bytes))); err != nil {
		return err
	}
	if err = out.WriteVInt(int32(len(compressed))); err != nil {
		return err
	}
	return out.WriteBytes(compressed)
}

func readBlock(in DataInput, decompress func(src, dst []byte) ([]byte, error)) ([]byte, error) {
	originalLength, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	compressedLength, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	if originalLength < 0 || compressedLength < 0 {
		return nil, errors.Errorf("Corrupted: negative block lengths %v/%v", originalLength, compressedLength)
	}
	if compressedLength == 0 {
		res := make([]byte, originalLength)
		if err = in.ReadBytes(res); err != nil {
			return nil, err
		}
		return res, nil
	}
	if decompress == nil {
		return nil, errors.New("Corrupted: compressed block in uncompressed stream")
	}
	src := make([]byte, compressedLength)
	if err = in.ReadBytes(src); err != nil {
		return nil, err
	}
	res, err := decompress(src, make([]byte, originalLength))
	if err != nil {
		return nil, errors.Wrap(err, "decompress block")
	}
	if len(res) != int(originalLength) {
		return nil, errors.Errorf("Corrupted: lengths mismatch: %v != %v", len(res), originalLength)
	}
	return res, nil
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
