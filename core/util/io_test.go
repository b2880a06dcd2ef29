package util

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferWriter struct{ bytes.Buffer }

func (w *bufferWriter) WriteBytes(buf []byte) error {
	_, err := w.Write(buf)
	return err
}

type bufferReader struct{ *bytes.Reader }

func (r bufferReader) ReadBytes(buf []byte) error {
	_, err := r.Read(buf)
	return err
}

func TestDataRoundTrip(t *testing.T) {
	w := new(bufferWriter)
	out := NewDataOutput(w)
	require.NoError(t, out.WriteInt(-3))
	require.NoError(t, out.WriteVInt(0))
	require.NoError(t, out.WriteVInt(16384))
	require.NoError(t, out.WriteVInt(-1))
	require.NoError(t, out.WriteLong(1<<40+5))
	require.NoError(t, out.WriteVLong(1<<50))
	require.NoError(t, out.WriteString("fox"))
	require.NoError(t, out.WriteStringStringMap(map[string]string{"b": "2", "a": "1"}))
	require.NoError(t, out.WriteStringSet([]string{"_0.tis", "_0.frq"}))

	in := NewDataInput(bufferReader{bytes.NewReader(w.Bytes())})
	i, err := in.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(-3), i)
	for _, expected := range []int32{0, 16384, -1} {
		v, err := in.ReadVInt()
		require.NoError(t, err)
		assert.Equal(t, expected, v)
	}
	l, err := in.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40+5), l)
	vl, err := in.ReadVLong()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<50), vl)
	s, err := in.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "fox", s)
	m, err := in.ReadStringStringMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, m)
	set, err := in.ReadStringSet()
	require.NoError(t, err)
	assert.Equal(t, []string{"_0.frq", "_0.tis"}, set)
}

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestClose(t *testing.T) {
	a, b, c := &closer{}, &closer{err: errors.New("b")}, &closer{err: errors.New("c")}
	err := Close(a, nil, b, c)
	require.Error(t, err)
	assert.True(t, a.closed && b.closed && c.closed)
	assert.Contains(t, err.Error(), "b")
	assert.Contains(t, err.Error(), "c")

	prior := errors.New("prior")
	err = CloseWhileHandlingError(prior, &closer{})
	assert.Equal(t, prior, err)
}

func TestSmallFloat(t *testing.T) {
	assert.Equal(t, byte(0), FloatToByte315(0))
	assert.Equal(t, byte(0), FloatToByte315(-1))
	assert.Equal(t, float32(1), Byte315ToFloat(FloatToByte315(1)))
	assert.Equal(t, float32(0.5), Byte315ToFloat(FloatToByte315(0.5)))
	assert.Equal(t, float32(0), Byte315ToFloat(0))
}

type failingDeleter struct{ deleted []string }

func (d *failingDeleter) DeleteFile(name string) error {
	d.deleted = append(d.deleted, name)
	return errors.New("no such file")
}

func TestDeleteFilesIgnoringErrorsLogsFailures(t *testing.T) {
	mem := logging.NewMemoryBackend(8)
	logging.SetBackend(mem)
	defer logging.SetBackend(logging.NewLogBackend(os.Stderr, "", 0))

	d := new(failingDeleter)
	DeleteFilesIgnoringErrors(d, "_0.tis", "_0.frq")
	assert.Equal(t, []string{"_0.tis", "_0.frq"}, d.deleted)

	var messages []string
	for n := mem.Head(); n != nil; n = n.Next() {
		messages = append(messages, n.Record.Message())
	}
	assert.Equal(t, []string{
		"Failed to delete _0.tis: no such file",
		"Failed to delete _0.frq: no such file",
	}, messages)
}
