package index

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/codec"
	"github.com/ironsweet/termshash/core/document"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir store.Directory, names ...string) {
	for _, name := range names {
		out, err := dir.CreateOutput(name, store.IO_CONTEXT_DEFAULT)
		require.NoError(t, err)
		require.NoError(t, out.Close())
	}
}

func TestListSegmentsInFlushOrder(t *testing.T) {
	dir := store.NewRAMDirectory()
	touch(t, dir, "_10.si", "_a.si", "_0.si", "_9.si", "_b.frq", "_b.tis")

	segments, err := ListSegments(dir)
	require.NoError(t, err)
	// _b has no commit marker
	assert.Equal(t, []string{"_0", "_9", "_a", "_10"}, segments)
}

func TestSegmentInfoRoundTrip(t *testing.T) {
	dir := store.NewRAMDirectory()
	docStoreID := uuid.New()
	state := newSegmentWriteState(nil, util.NO_OUTPUT, dir, "_3", "_1", 5, 9,
		DEFAULT_TERM_INDEX_INTERVAL, model.NewFieldInfos(), docStoreID)
	state.AddFlushedFile("_3.tis")
	state.AddFlushedFile("_3.frq")

	si := &SegmentInfo{
		Name:            "_3",
		DocCount:        5,
		DelCount:        1,
		DocStoreSegment: "_1",
		DocStoreOffset:  4,
		DocStoreID:      docStoreID,
		HasVectors:      true,
		HasProx:         true,
		ID:              state.SegmentID,
		Version:         "1.0",
	}
	require.NoError(t, writeSegmentInfo(state, si))
	assert.Equal(t, []string{"_3.frq", "_3.si", "_3.tis"}, si.Files)

	got, err := ReadSegmentInfo(dir, "_3")
	require.NoError(t, err)
	assert.Equal(t, si, got)
}

func TestTruncatedSegmentInfoIsCorrupt(t *testing.T) {
	dir := store.NewRAMDirectory()
	state := newSegmentWriteState(nil, util.NO_OUTPUT, dir, "_0", "_0", 1, 1,
		DEFAULT_TERM_INDEX_INTERVAL, model.NewFieldInfos(), uuid.New())
	require.NoError(t, writeSegmentInfo(state, &SegmentInfo{Name: "_0", DocCount: 1, ID: state.SegmentID}))

	in, err := dir.OpenInput("_0.si", store.IO_CONTEXT_READ)
	require.NoError(t, err)
	data := make([]byte, in.Length()-1)
	require.NoError(t, in.ReadBytes(data))
	require.NoError(t, in.Close())

	out, err := dir.CreateOutput("_1.si", store.IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, out.WriteBytes(data))
	require.NoError(t, out.Close())

	_, err = ReadSegmentInfo(dir, "_1")
	assert.Error(t, err)
	_, err = ReadSegmentInfo(dir, "_2")
	assert.Error(t, err)
}

func TestFieldInfosRoundTrip(t *testing.T) {
	dir := store.NewRAMDirectory()
	infos := model.NewFieldInfos()
	infos.AddOrUpdate("body", document.TEXT_FIELD_TYPE_WITH_VECTORS)
	infos.AddOrUpdate("id", document.STRING_FIELD_TYPE)
	state := newSegmentWriteState(nil, util.NO_OUTPUT, dir, "_0", "_0", 1, 1,
		DEFAULT_TERM_INDEX_INTERVAL, infos, uuid.New())
	require.NoError(t, writeFieldInfos(state))
	assert.Equal(t, []string{"_0.fnm"}, state.FlushedFiles())

	got, err := readFieldInfos(dir, "_0", state.SegmentID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Size())
	for _, want := range infos.Values() {
		fi := got.FieldInfoByName(want.Name)
		require.NotNil(t, fi, want.Name)
		assert.Equal(t, want.String(), fi.String())
	}

	// the header carries the segment id
	_, err = readFieldInfos(dir, "_0", uuid.New())
	assert.ErrorIs(t, err, codec.ErrCorruptIndex)
}
