package compressing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type buffer struct {
	bytes.Buffer
}

func (b *buffer) WriteVInt(i int32) error {
	v := uint32(i)
	for v >= 0x80 {
		b.Buffer.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	return b.Buffer.WriteByte(byte(v))
}

func (b *buffer) WriteBytes(buf []byte) error {
	_, err := b.Write(buf)
	return err
}

func (b *buffer) ReadVInt() (int32, error) {
	var n uint32
	for shift := uint(0); ; shift += 7 {
		c, err := b.Buffer.ReadByte()
		if err != nil {
			return 0, err
		}
		n |= uint32(c&0x7F) << shift
		if c < 0x80 {
			return int32(n), nil
		}
	}
}

func (b *buffer) ReadBytes(buf []byte) error {
	_, err := b.Read(buf)
	return err
}

func TestCompressionModes(t *testing.T) {
	repetitive := bytes.Repeat([]byte("the quick brown fox "), 200)
	short := []byte("fox")

	for _, mode := range []CompressionModeDefaults{
		COMPRESSION_MODE_NONE, COMPRESSION_MODE_FAST, COMPRESSION_MODE_HIGH,
	} {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			buf := new(buffer)
			compress := mode.NewCompressor()
			require.NoError(t, compress(repetitive, buf))
			require.NoError(t, compress(short, buf))
			require.NoError(t, compress(nil, buf))
			if mode != COMPRESSION_MODE_NONE {
				assert.Less(t, buf.Len(), len(repetitive))
			}

			decompress := mode.NewDecompressor()
			for _, expected := range [][]byte{repetitive, short, {}} {
				actual, err := decompress(buf)
				require.NoError(t, err)
				assert.Equal(t, expected, actual)
			}
			assert.Equal(t, 0, buf.Len())
		})
	}
}

func TestParseCompressionMode(t *testing.T) {
	m, err := ParseCompressionMode("")
	require.NoError(t, err)
	assert.Equal(t, COMPRESSION_MODE_FAST, m)
	m, err = ParseCompressionMode("zstd")
	require.NoError(t, err)
	assert.Equal(t, COMPRESSION_MODE_HIGH, m)
	_, err = ParseCompressionMode("gzip")
	assert.Error(t, err)
}
