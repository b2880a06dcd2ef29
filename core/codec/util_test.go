package codec

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderAndFooter(t *testing.T) {
	dir := store.NewRAMDirectory()
	id := uuid.New()

	out, err := dir.CreateOutput("_0.tis", store.IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, WriteHeader(out, "TermInfos", 1, id))
	assert.Equal(t, int64(HeaderLength("TermInfos")), out.FilePointer())
	require.NoError(t, out.WriteVInt(5))
	require.NoError(t, WriteFooter(out))
	require.NoError(t, out.Close())

	in, err := store.OpenChecksumInput(dir, "_0.tis", store.IO_CONTEXT_READONCE)
	require.NoError(t, err)
	v, actual, err := CheckHeader(in, "TermInfos", 0, 1, id)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
	assert.Equal(t, id, actual)
	n, err := in.ReadVInt()
	require.NoError(t, err)
	assert.Equal(t, int32(5), n)
	_, err = CheckFooter(in)
	require.NoError(t, err)

	// wrong segment id
	in, err = store.OpenChecksumInput(dir, "_0.tis", store.IO_CONTEXT_READONCE)
	require.NoError(t, err)
	_, _, err = CheckHeader(in, "TermInfos", 0, 1, uuid.New())
	assert.Equal(t, ErrCorruptIndex, errors.Cause(err))

	// wrong codec and version
	in, err = store.OpenChecksumInput(dir, "_0.tis", store.IO_CONTEXT_READONCE)
	require.NoError(t, err)
	_, _, err = CheckHeader(in, "TermInfos", 2, 3, uuid.Nil)
	assert.Equal(t, ErrCorruptIndex, errors.Cause(err))
}

func TestCorruptedFooter(t *testing.T) {
	dir := store.NewRAMDirectory()
	out, err := dir.CreateOutput("_0.frq", store.IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, WriteHeader(out, "Freqs", 0, uuid.Nil))
	require.NoError(t, out.WriteInt(FOOTER_MAGIC))
	require.NoError(t, out.WriteInt(0))
	require.NoError(t, out.WriteLong(12345))
	require.NoError(t, out.Close())

	in, err := store.OpenChecksumInput(dir, "_0.frq", store.IO_CONTEXT_READONCE)
	require.NoError(t, err)
	_, _, err = CheckHeader(in, "Freqs", 0, 0, uuid.Nil)
	require.NoError(t, err)
	_, err = CheckFooter(in)
	assert.Equal(t, ErrCorruptIndex, errors.Cause(err))
}
