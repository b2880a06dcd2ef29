package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir Directory, name string, content string) {
	out, err := dir.CreateOutput(name, IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, out.WriteString(content))
	require.NoError(t, out.Close())
}

func readFile(t *testing.T, dir Directory, name string) string {
	in, err := dir.OpenInput(name, IO_CONTEXT_READ)
	require.NoError(t, err)
	defer in.Close()
	s, err := in.ReadString()
	require.NoError(t, err)
	return s
}

func testPublishOnClose(t *testing.T, dir Directory) {
	out, err := dir.CreateOutput("_0.tis", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, out.WriteVInt(300))
	require.NoError(t, out.WriteString("fox"))
	assert.Equal(t, int64(6), out.FilePointer())

	// not visible until closed
	assert.False(t, dir.FileExists("_0.tis"))
	names, err := dir.ListAll()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, out.Close())
	assert.True(t, dir.FileExists("_0.tis"))
	length, err := dir.FileLength("_0.tis")
	require.NoError(t, err)
	assert.Equal(t, int64(6), length)

	in, err := dir.OpenInput("_0.tis", IO_CONTEXT_READ)
	require.NoError(t, err)
	v, err := in.ReadVInt()
	require.NoError(t, err)
	assert.Equal(t, int32(300), v)
	s, err := in.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "fox", s)
	assert.Equal(t, in.Length(), in.FilePointer())
	_, err = in.ReadByte()
	assert.Error(t, err)
	require.NoError(t, in.Close())

	require.NoError(t, dir.DeleteFile("_0.tis"))
	assert.False(t, dir.FileExists("_0.tis"))
	assert.True(t, IsNoSuchFile(dir.DeleteFile("_0.tis")))
	_, err = dir.OpenInput("_0.tis", IO_CONTEXT_READ)
	assert.True(t, IsNoSuchFile(err))
}

func TestRAMDirectory(t *testing.T) {
	dir := NewRAMDirectory()
	testPublishOnClose(t, dir)

	writeFile(t, dir, "_1.frq", "dog")
	assert.Equal(t, int64(4), dir.RamBytesUsed())
	assert.Equal(t, "dog", readFile(t, dir, "_1.frq"))

	require.NoError(t, dir.Close())
	_, err := dir.ListAll()
	assert.Equal(t, ErrClosed, err)
}

func TestFSDirectory(t *testing.T) {
	dir, err := OpenFSDirectory(t.TempDir())
	require.NoError(t, err)
	testPublishOnClose(t, dir)

	writeFile(t, dir, "_1.frq", "dog")
	require.NoError(t, dir.Sync([]string{"_1.frq"}))
	assert.Equal(t, "dog", readFile(t, dir, "_1.frq"))
}

type failingPublisher struct {
	committed, discarded bool
}

func (p *failingPublisher) Write(b []byte) (int, error) { return 0, errors.New("disk full") }
func (p *failingPublisher) Commit() error               { p.committed = true; return nil }
func (p *failingPublisher) Discard() error              { p.discarded = true; return nil }

func TestOutputDiscardedAfterWriteError(t *testing.T) {
	target := new(failingPublisher)
	out := newOutputStreamIndexOutput("_0.prx", target, 16)
	// buffered write succeeds, flush on close fails
	require.NoError(t, out.WriteString("abc"))
	assert.Error(t, out.Close())
	assert.False(t, target.committed)
	assert.True(t, target.discarded)
}

func TestAbortDoesNotPublish(t *testing.T) {
	dir := NewRAMDirectory()
	out, err := dir.CreateOutput("_0.tvd", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, out.WriteString("partial"))
	require.NoError(t, out.Abort())
	require.NoError(t, out.Close())
	assert.False(t, dir.FileExists("_0.tvd"))
}

func TestChecksumInput(t *testing.T) {
	dir := NewRAMDirectory()
	out, err := dir.CreateOutput("_0.si", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, out.WriteLong(42))
	require.NoError(t, out.WriteString("seg"))
	expected := out.Checksum()
	require.NoError(t, out.Close())

	in, err := OpenChecksumInput(dir, "_0.si", IO_CONTEXT_READONCE)
	require.NoError(t, err)
	require.NoError(t, in.Seek(8))
	_, err = in.ReadString()
	require.NoError(t, err)
	assert.Equal(t, expected, in.Checksum())
	assert.Error(t, in.Seek(0))
}

func TestTrackingDirectoryWrapper(t *testing.T) {
	dir := NewTrackingDirectoryWrapper(NewRAMDirectory())
	writeFile(t, dir, "_0.tis", "a")
	writeFile(t, dir, "_0.frq", "b")
	assert.Equal(t, []string{"_0.frq", "_0.tis"}, dir.CreatedFiles())
	require.NoError(t, dir.DeleteFile("_0.tis"))
	assert.False(t, dir.ContainsFile("_0.tis"))
	assert.True(t, dir.ContainsFile("_0.frq"))
}

func TestFileSwitchDirectory(t *testing.T) {
	primary, secondary := NewRAMDirectory(), NewRAMDirectory()
	dir := NewFileSwitchDirectory([]string{"tvx", "tvd", "tvf"}, primary, secondary, true)

	writeFile(t, dir, "_0.tvx", "vectors")
	writeFile(t, dir, "_0.tis", "terms")
	assert.True(t, primary.FileExists("_0.tvx"))
	assert.False(t, primary.FileExists("_0.tis"))
	assert.True(t, secondary.FileExists("_0.tis"))

	names, err := dir.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"_0.tis", "_0.tvx"}, names)
	assert.Equal(t, "vectors", readFile(t, dir, "_0.tvx"))
	require.NoError(t, dir.Sync(names))

	require.NoError(t, dir.Close())
	_, err = primary.ListAll()
	assert.Equal(t, ErrClosed, err)
}

func TestRateLimitedDirectoryWrapper(t *testing.T) {
	dir := NewRateLimitedDirectoryWrapper(NewRAMDirectory())
	dir.SetMaxWriteMBPerSec(64, IO_CONTEXT_TYPE_FLUSH)
	assert.Equal(t, float64(64), dir.MaxWriteMBPerSec(IO_CONTEXT_TYPE_FLUSH))
	assert.Equal(t, float64(0), dir.MaxWriteMBPerSec(IO_CONTEXT_TYPE_DEFAULT))

	ctx := NewIOContextForFlush(&FlushInfo{NumDocs: 1})
	out, err := dir.CreateOutput("_0.frq", ctx)
	require.NoError(t, err)
	_, limited := out.(*RateLimitedIndexOutput)
	assert.True(t, limited)
	require.NoError(t, out.WriteBytes(make([]byte, 4096)))
	require.NoError(t, out.WriteVInt(7))
	assert.Equal(t, int64(4097), out.FilePointer())
	require.NoError(t, out.Close())
	length, err := dir.FileLength("_0.frq")
	require.NoError(t, err)
	assert.Equal(t, int64(4097), length)

	dir.SetMaxWriteMBPerSec(0, IO_CONTEXT_TYPE_FLUSH)
	out, err = dir.CreateOutput("_1.frq", ctx)
	require.NoError(t, err)
	_, limited = out.(*RateLimitedIndexOutput)
	assert.False(t, limited)
	require.NoError(t, out.Close())
}
