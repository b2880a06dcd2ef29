package index

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ironsweet/termshash/core/analysis"
	"github.com/ironsweet/termshash/core/codec/compressing"
	"github.com/ironsweet/termshash/core/codec/lucene29"
	"github.com/ironsweet/termshash/core/document"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/ironsweet/termshash/core/store"
	"github.com/ironsweet/termshash/core/util"
	mockanalysis "github.com/ironsweet/termshash/test_framework/analysis"
	mockstore "github.com/ironsweet/termshash/test_framework/store"
	. "github.com/ironsweet/termshash/test_framework/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestConfig() *IndexWriterConfig {
	conf := NewIndexWriterConfig(analysis.WhitespaceAnalyzer)
	if INFOSTREAM {
		conf.SetInfoStream(util.NewLoggingInfoStream())
	}
	return conf
}

func newTestWriter(t *testing.T, dir store.Directory, conf *IndexWriterConfig) *DocumentsWriter {
	dw, err := NewDocumentsWriter(dir, conf, nil)
	require.NoError(t, err)
	return dw
}

func textDoc(body string) []model.IndexableField {
	return []model.IndexableField{document.NewTextField("body", body)}
}

func vectorDoc(body string) []model.IndexableField {
	return []model.IndexableField{
		document.NewFieldFromString("body", body, document.TEXT_FIELD_TYPE_WITH_VECTORS),
	}
}

func addDocs(t *testing.T, dw *DocumentsWriter, docs ...[]model.IndexableField) {
	for _, doc := range docs {
		require.NoError(t, dw.AddDocument(doc))
	}
}

func openSegment(t *testing.T, dir store.Directory, name string) *SegmentReader {
	r, err := OpenSegmentReader(dir, name)
	require.NoError(t, err)
	return r
}

func totalTermFreqs(terms *lucene29.FieldTerms) map[string]int64 {
	ans := make(map[string]int64)
	for _, ti := range terms.Terms {
		ans[string(ti.Term)] = ti.TotalTermFreq
	}
	return ans
}

func listAll(t *testing.T, dir store.Directory) []string {
	names, err := dir.ListAll()
	require.NoError(t, err)
	return names
}

func TestFlushFoxDog(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig())
	addDocs(t, dw, textDoc("the fox the"), textDoc("the dog"), textDoc("fox"))
	assert.Equal(t, 3, dw.NumDocs())
	require.NoError(t, dw.Flush())
	assert.Equal(t, 0, dw.NumDocs())

	segments := dw.Segments()
	require.Len(t, segments, 1)
	si := segments[0]
	assert.Equal(t, "_0", si.Name)
	assert.Equal(t, 3, si.DocCount)
	assert.Equal(t, 0, si.DelCount)
	assert.True(t, si.HasProx)
	assert.False(t, si.HasVectors)
	assert.Equal(t, []string{"_0.fnm", "_0.frq", "_0.nrm", "_0.prx", "_0.si", "_0.tii", "_0.tis"}, si.Files)
	assert.ElementsMatch(t, si.Files, listAll(t, dir))

	r := openSegment(t, dir, "_0")
	assert.Equal(t, si.ID, r.Info.ID)
	body := r.Terms("body")
	require.NotNil(t, body)
	assert.Equal(t, map[string]int64{"the": 3, "fox": 2, "dog": 1}, totalTermFreqs(body))
	assert.Equal(t, 3, body.DocCount)
	assert.Equal(t, int64(6), body.SumTotalTermFreq)
	assert.Equal(t, int64(5), body.SumDocFreq)

	the := body.Term("the")
	require.NotNil(t, the)
	assert.Equal(t, 2, the.DocFreq)
	assert.Equal(t, []lucene29.Posting{
		{DocID: 0, Freq: 2, Positions: []int{0, 2}},
		{DocID: 1, Freq: 1, Positions: []int{0}},
	}, the.Postings)
	fox := body.Term("fox")
	require.NotNil(t, fox)
	assert.Equal(t, []lucene29.Posting{
		{DocID: 0, Freq: 1, Positions: []int{1}},
		{DocID: 2, Freq: 1, Positions: []int{0}},
	}, fox.Postings)
	assert.Nil(t, body.Term("cat"))
	assert.Nil(t, r.Terms("title"))
}

func TestSegmentFileNameIsStable(t *testing.T) {
	state := newSegmentWriteState(nil, util.NO_OUTPUT, store.NewRAMDirectory(), "_a", "_7",
		1, 1, DEFAULT_TERM_INDEX_INTERVAL, model.NewFieldInfos(), uuid.Nil)
	assert.Equal(t, "_a.frq", state.SegmentFileName("frq"))
	assert.Equal(t, state.SegmentFileName("frq"), state.SegmentFileName("frq"))
	assert.Equal(t, "_7.tvx", state.DocStoreFileName(VECTORS_INDEX_EXTENSION))
}

func TestTwoThreadsSumFrequencies(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig().SetMaxThreadStates(2))

	r := Random()
	n := AtLeast(r, 50)
	var g errgroup.Group
	var mu sync.Mutex
	started := 0
	barrier := sync.NewCond(&mu)
	for _, body := range []string{"alpha common", "beta common common"} {
		body := body
		g.Go(func() error {
			mu.Lock()
			started++
			barrier.Broadcast()
			for started < 2 {
				barrier.Wait()
			}
			mu.Unlock()
			for i := 0; i < n; i++ {
				if err := dw.AddDocument(textDoc(body)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.NoError(t, dw.Flush())

	seg := openSegment(t, dir, "_0")
	assert.Equal(t, 2*n, seg.MaxDoc())
	body := seg.Terms("body")
	require.NotNil(t, body)
	assert.Equal(t, map[string]int64{
		"alpha":  int64(n),
		"beta":   int64(n),
		"common": int64(3 * n),
	}, totalTermFreqs(body))

	// merged postings of both threads are in doc id order
	common := body.Term("common")
	require.NotNil(t, common)
	require.Len(t, common.Postings, 2*n)
	alphaDocs := make(map[int]bool)
	for _, p := range body.Term("alpha").Postings {
		alphaDocs[p.DocID] = true
	}
	for i, p := range common.Postings {
		assert.Equal(t, i, p.DocID)
		if alphaDocs[p.DocID] {
			assert.Equal(t, 1, p.Freq)
		} else {
			assert.Equal(t, 2, p.Freq)
		}
	}
}

// Returns the counter with the given name and, if not "", result label.
func counterValue(t *testing.T, reg *prometheus.Registry, name, result string) float64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if result == "" {
				return m.GetCounter().GetValue()
			}
			for _, label := range m.GetLabel() {
				if label.GetName() == "result" && label.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestAbortDiscardsGeneration(t *testing.T) {
	dir := mockstore.NewMockDirectoryWrapper(store.NewRAMDirectory())
	reg := prometheus.NewRegistry()
	dw, err := NewDocumentsWriter(dir, newTestConfig(), NewMetrics(reg))
	require.NoError(t, err)

	addDocs(t, dw, vectorDoc("the fox"), textDoc("the dog"))
	require.NoError(t, dw.Abort())
	assert.Equal(t, 0, dw.NumDocs())
	assert.Empty(t, listAll(t, dir))
	assert.Empty(t, dir.OpenFiles())
	assert.Equal(t, 1.0, counterValue(t, reg, "termshash_aborts_total", ""))

	// the next generation starts clean
	addDocs(t, dw, textDoc("cat"))
	require.NoError(t, dw.Flush())
	r := openSegment(t, dir, "_0")
	assert.Equal(t, 1, r.MaxDoc())
	assert.Equal(t, map[string]int64{"cat": 1}, totalTermFreqs(r.Terms("body")))
	assert.Equal(t, 1.0, counterValue(t, reg, "termshash_flushes_total", "ok"))
	assert.Equal(t, 0.0, counterValue(t, reg, "termshash_flushes_total", "error"))
	assert.Equal(t, 3.0, counterValue(t, reg, "termshash_docs_indexed_total", ""))

	require.NoError(t, dw.Close())
	require.NoError(t, dir.Close())
}

func TestFailedFlushLeavesNoFiles(t *testing.T) {
	for _, c := range []struct {
		op  mockstore.Operation
		ext string
	}{
		{mockstore.OP_CREATE, lucene29.TERMS_EXTENSION},
		{mockstore.OP_WRITE, lucene29.FREQ_EXTENSION},
		{mockstore.OP_CLOSE, lucene29.PROX_EXTENSION},
		{mockstore.OP_CREATE, NORMS_EXTENSION},
		{mockstore.OP_CREATE, VECTORS_DOCUMENTS_EXTENSION},
		{mockstore.OP_CLOSE, VECTORS_INDEX_EXTENSION},
		{mockstore.OP_CREATE, FIELD_INFOS_EXTENSION},
		{mockstore.OP_WRITE, DELETES_EXTENSION},
		{mockstore.OP_CLOSE, SEGMENT_INFO_EXTENSION},
	} {
		c := c
		t.Run(fmt.Sprintf("%v %v", c.op, c.ext), func(t *testing.T) {
			dir := mockstore.NewMockDirectoryWrapper(store.NewRAMDirectory())
			dw := newTestWriter(t, dir, newTestConfig())
			addDocs(t, dw, vectorDoc("the fox"), textDoc("the dog"))
			// a deleted document, for the .del file
			err := dw.AddDocument([]model.IndexableField{
				document.NewFieldFromTokenStream("body",
					analysis.NewCannedTokenStream(analysis.Tokens("a", "")...), document.TEXT_FIELD_TYPE),
			})
			require.ErrorIs(t, err, ErrMalformedTerm)

			dir.FailOn(mockstore.FailOnExtension(c.op, c.ext))
			err = dw.Flush()
			require.Error(t, err)
			assert.ErrorIs(t, err, mockstore.ErrInjected)
			assert.Empty(t, listAll(t, dir))
			assert.Empty(t, dir.OpenFiles())
			assert.Empty(t, dw.Segments())
			assert.Equal(t, 0, dw.NumDocs())

			// the writer is usable again
			dir.ClearFailures()
			addDocs(t, dw, vectorDoc("cat"))
			require.NoError(t, dw.Flush())
			segments := dw.Segments()
			require.Len(t, segments, 1)
			r := openSegment(t, dir, segments[0].Name)
			assert.Equal(t, map[string]int64{"cat": 1}, totalTermFreqs(r.Terms("body")))
			require.True(t, r.HasVectors())
			assert.Equal(t, "cat", r.TermVector(0, "body").Terms[0].Term)

			require.NoError(t, dw.Close())
			require.NoError(t, dir.Close())
		})
	}
}

func TestFailedFlushAfterWrites(t *testing.T) {
	r := Random()
	for i := 0; i < 10; i++ {
		dir := mockstore.NewMockDirectoryWrapper(store.NewRAMDirectory())
		dw := newTestWriter(t, dir, newTestConfig())
		for j, n := 0, NextInt(r, 1, 20); j < n; j++ {
			addDocs(t, dw, vectorDoc(RandomTerm(r, 5)+" "+RandomTerm(r, 5)))
		}
		dir.FailOn(mockstore.FailAfterWrites(r.Intn(40)))
		if err := dw.Flush(); err != nil {
			assert.ErrorIs(t, err, mockstore.ErrInjected)
			assert.Empty(t, listAll(t, dir))
			assert.Empty(t, dw.Segments())
		} else {
			// every write made it
			require.Len(t, dw.Segments(), 1)
			openSegment(t, dir, "_0")
		}
		assert.Empty(t, dir.OpenFiles())
	}
}

func TestMalformedTermMarksDocDeleted(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig())
	addDocs(t, dw, textDoc("the fox"))
	err := dw.AddDocument([]model.IndexableField{
		document.NewFieldFromTokenStream("body",
			analysis.NewCannedTokenStream(analysis.Tokens("fox", "", "dog")...), document.TEXT_FIELD_TYPE),
	})
	require.ErrorIs(t, err, ErrMalformedTerm)
	assert.NotErrorIs(t, err, ErrAborted)
	addDocs(t, dw, textDoc("the dog"))
	require.NoError(t, dw.Flush())

	r := openSegment(t, dir, "_0")
	assert.Equal(t, 3, r.MaxDoc())
	assert.Equal(t, 2, r.NumDocs())
	assert.False(t, r.IsDeleted(0))
	assert.True(t, r.IsDeleted(1))
	assert.False(t, r.IsDeleted(2))
	assert.Contains(t, r.Info.Files, "_0.del")
}

func TestAnalysisFailureMarksDocDeleted(t *testing.T) {
	dir := store.NewRAMDirectory()
	conf := NewIndexWriterConfig(mockanalysis.NewMockAnalyzer(true).FailOn("boom"))
	dw := newTestWriter(t, dir, conf)
	addDocs(t, dw, textDoc("The Fox"))
	err := dw.AddDocument(textDoc("a BOOM b"))
	require.ErrorIs(t, err, mockanalysis.ErrMockAnalysis)
	assert.NotErrorIs(t, err, ErrAborted)
	addDocs(t, dw, textDoc("fox"))
	require.NoError(t, dw.Close())

	r := openSegment(t, dir, "_0")
	assert.True(t, r.IsDeleted(1))
	assert.Equal(t, 2, r.NumDocs())
	freqs := totalTermFreqs(r.Terms("body"))
	assert.Equal(t, int64(2), freqs["fox"])
	assert.NotContains(t, freqs, "b")
}

func TestOverlongTermsAreSkipped(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig().SetMaxTermLength(5))
	addDocs(t, dw, textDoc("tiny enormous tiny"))
	require.NoError(t, dw.Flush())

	r := openSegment(t, dir, "_0")
	assert.Equal(t, 1, r.NumDocs())
	tiny := r.Terms("body").Term("tiny")
	require.NotNil(t, tiny)
	// the skipped term still takes a position
	assert.Equal(t, []int{0, 2}, tiny.Postings[0].Positions)
	assert.Nil(t, r.Terms("body").Term("enormous"))
}

func TestTermVectorsRoundTrip(t *testing.T) {
	for _, mode := range []compressing.CompressionModeDefaults{
		compressing.COMPRESSION_MODE_NONE,
		compressing.COMPRESSION_MODE_FAST,
		compressing.COMPRESSION_MODE_HIGH,
	} {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			dir := store.NewRAMDirectory()
			dw := newTestWriter(t, dir, newTestConfig().SetTermVectorsCompression(mode))
			doc := vectorDoc("the quick the")
			doc = append(doc, document.NewTextField("title", "fox"))
			addDocs(t, dw, doc, textDoc("no vectors here"), vectorDoc("dog"))
			require.NoError(t, dw.Flush())
			assert.Contains(t, listAll(t, dir), "_0.tvx")
			assert.Contains(t, listAll(t, dir), "_0.tvd")

			r := openSegment(t, dir, "_0")
			require.True(t, r.HasVectors())
			assert.Nil(t, r.TermVector(0, "title"))
			tv := r.TermVector(0, "body")
			require.NotNil(t, tv)
			assert.True(t, tv.HasPositions)
			assert.True(t, tv.HasOffsets)
			assert.Equal(t, []TermVectorEntry{
				{Term: "quick", Freq: 1, Positions: []int{1}, StartOffsets: []int{4}, EndOffsets: []int{9}},
				{Term: "the", Freq: 2, Positions: []int{0, 2}, StartOffsets: []int{0, 10}, EndOffsets: []int{3, 13}},
			}, tv.Terms)

			assert.Empty(t, r.TermVectors(1))
			tv = r.TermVector(2, "body")
			require.NotNil(t, tv)
			require.Len(t, tv.Terms, 1)
			assert.Equal(t, "dog", tv.Terms[0].Term)
		})
	}
}

func TestMultiValuedFieldOffsets(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig())
	addDocs(t, dw, []model.IndexableField{
		document.NewFieldFromString("body", "a b", document.TEXT_FIELD_TYPE_WITH_VECTORS),
		document.NewFieldFromString("body", "b", document.TEXT_FIELD_TYPE_WITH_VECTORS),
	})
	require.NoError(t, dw.Flush())

	r := openSegment(t, dir, "_0")
	tv := r.TermVector(0, "body")
	require.NotNil(t, tv)
	require.Len(t, tv.Terms, 2)
	b := tv.Terms[1]
	assert.Equal(t, "b", b.Term)
	// positions continue across instances, offsets restart after a gap of one
	assert.Equal(t, []int{1, 2}, b.Positions)
	assert.Equal(t, []int{2, 4}, b.StartOffsets)
	assert.Equal(t, []int{3, 5}, b.EndOffsets)
	assert.Equal(t, []int{1, 2}, r.Terms("body").Term("b").Postings[0].Positions)
}

func TestNorms(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig())
	boosted := document.NewTextField("body", "c")
	boosted.SetBoost(2)
	addDocs(t, dw,
		[]model.IndexableField{document.NewTextField("body", "a b a b"), document.NewStringField("id", "1")},
		[]model.IndexableField{boosted, document.NewStringField("id", "2")},
		[]model.IndexableField{document.NewStringField("id", "3")},
	)
	require.NoError(t, dw.Flush())

	r := openSegment(t, dir, "_0")
	norms := r.Norms("body")
	require.Len(t, norms, 3)
	assert.Equal(t, util.FloatToByte315(float32(1/math.Sqrt(4))), norms[0])
	assert.Equal(t, util.FloatToByte315(2), norms[1])
	assert.Equal(t, util.FloatToByte315(1), norms[2])
	assert.Equal(t, []uint32{0, 1}, r.DocsWithNorms("body").ToArray())
	// string fields omit norms
	assert.Nil(t, r.Norms("id"))
	assert.Equal(t, 3, len(r.Terms("id").Terms))
}

func TestMaxBufferedDocsTriggersFlush(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig().SetMaxBufferedDocs(2))
	for i := 0; i < 5; i++ {
		addDocs(t, dw, textDoc(fmt.Sprintf("doc%v", i)))
	}
	assert.Len(t, dw.Segments(), 2)
	assert.Equal(t, 1, dw.NumDocs())
	require.NoError(t, dw.Close())

	names, err := ListSegments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"_0", "_1", "_2"}, names)
	r := openSegment(t, dir, "_2")
	assert.Equal(t, map[string]int64{"doc4": 1}, totalTermFreqs(r.Terms("body")))

	assert.ErrorIs(t, dw.AddDocument(textDoc("late")), ErrClosed)
	assert.ErrorIs(t, dw.Flush(), ErrClosed)

	// a new writer continues the segment names
	dw2 := newTestWriter(t, dir, newTestConfig())
	addDocs(t, dw2, textDoc("again"))
	require.NoError(t, dw2.Close())
	names, err = ListSegments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"_0", "_1", "_2", "_3"}, names)
}

func TestRAMBufferTriggersFlush(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig().SetRAMBufferSizeMB(0.1))
	r := Random()
	for len(dw.Segments()) == 0 {
		require.Less(t, dw.NumDocs(), 100000, "RAM buffer never filled up")
		addDocs(t, dw, textDoc(RandomTerm(r, 10)+" "+RandomTerm(r, 10)))
	}
	assert.Equal(t, 0, dw.NumDocs())
}

func TestSharedDocStore(t *testing.T) {
	dir := store.NewRAMDirectory()
	dw := newTestWriter(t, dir, newTestConfig().SetShareDocStore(true))
	addDocs(t, dw, vectorDoc("a"), vectorDoc("b"))
	require.NoError(t, dw.Flush())
	addDocs(t, dw, textDoc("c"), vectorDoc("d"))
	require.NoError(t, dw.Flush())

	segments := dw.Segments()
	require.Len(t, segments, 2)
	assert.Equal(t, "_0", segments[1].DocStoreSegment)
	assert.Equal(t, 2, segments[1].DocStoreOffset)
	assert.Equal(t, segments[0].DocStoreID, segments[1].DocStoreID)
	// vectors are not readable until the doc store is closed
	assert.NotContains(t, listAll(t, dir), "_0.tvx")
	assert.False(t, openSegment(t, dir, "_1").HasVectors())

	require.NoError(t, dw.CloseDocStore())
	r0 := openSegment(t, dir, "_0")
	require.True(t, r0.HasVectors())
	assert.Equal(t, "a", r0.TermVector(0, "body").Terms[0].Term)
	assert.Equal(t, "b", r0.TermVector(1, "body").Terms[0].Term)
	r1 := openSegment(t, dir, "_1")
	require.True(t, r1.HasVectors())
	assert.Empty(t, r1.TermVectors(0))
	assert.Equal(t, "d", r1.TermVector(1, "body").Terms[0].Term)

	// the next flush opens a new doc store
	addDocs(t, dw, vectorDoc("e"))
	require.NoError(t, dw.Close())
	r2 := openSegment(t, dir, "_2")
	assert.Equal(t, "_2", r2.Info.DocStoreSegment)
	assert.Equal(t, "e", r2.TermVector(0, "body").Terms[0].Term)
}

func TestAbortRollsBackSharedDocStore(t *testing.T) {
	dir := mockstore.NewMockDirectoryWrapper(store.NewRAMDirectory())
	dw := newTestWriter(t, dir, newTestConfig().SetShareDocStore(true))
	addDocs(t, dw, textDoc("closed store"))
	require.NoError(t, dw.Flush())
	require.NoError(t, dw.CloseDocStore())
	committed := listAll(t, dir)

	addDocs(t, dw, vectorDoc("a"))
	require.NoError(t, dw.Flush())
	addDocs(t, dw, vectorDoc("b"))
	require.NoError(t, dw.Abort())

	// segments of the open doc store are gone, older ones are kept
	assert.ElementsMatch(t, committed, listAll(t, dir))
	segments := dw.Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "_0", segments[0].Name)
	assert.Empty(t, dir.OpenFiles())
	require.NoError(t, dw.Close())
	require.NoError(t, dir.Close())
}

func TestAddDocumentContextCancelled(t *testing.T) {
	dw := newTestWriter(t, store.NewRAMDirectory(), newTestConfig().SetMaxThreadStates(1))
	ts, err := dw.threadPool.getAndLock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = dw.AddDocumentContext(ctx, textDoc("waits"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, dw.NumDocs())

	dw.threadPool.release(ts)
	require.NoError(t, dw.AddDocumentContext(context.Background(), textDoc("goes")))
	assert.Equal(t, 1, dw.NumDocs())
}

func TestOutOfMemoryAbortsGeneration(t *testing.T) {
	dir := store.NewRAMDirectory()
	// room for the first blocks only
	dw := newTestWriter(t, dir, newTestConfig().SetRAMHardLimitMB(0.25))
	r := Random()
	var err error
	for i := 0; i < 100000 && err == nil; i++ {
		err = dw.AddDocument(vectorDoc(RandomTerm(r, 8) + " " + RandomTerm(r, 8)))
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, util.ErrOutOfMemory)
	assert.Equal(t, 0, dw.NumDocs())
	assert.Empty(t, listAll(t, dir))

	// the generation restarts within budget
	addDocs(t, dw, textDoc("small"))
	require.NoError(t, dw.Close())
	assert.Equal(t, 1, openSegment(t, dir, "_0").MaxDoc())
}

func TestPendingAbortIsNeverFlushed(t *testing.T) {
	dir := store.NewRAMDirectory()
	reg := prometheus.NewRegistry()
	dw, err := NewDocumentsWriter(dir, newTestConfig(), NewMetrics(reg))
	require.NoError(t, err)

	addDocs(t, dw, textDoc("the fox"))
	// a document hit an aborting error; its goroutine has not taken the
	// exclusive lock yet
	gen := dw.currentGeneration()
	dw.abortPending.Store(true)

	assert.ErrorIs(t, dw.Flush(), ErrAborted)
	assert.Empty(t, listAll(t, dir))
	assert.Empty(t, dw.Segments())
	assert.Equal(t, 0, dw.NumDocs())
	assert.Equal(t, 1.0, counterValue(t, reg, "termshash_aborts_total", ""))

	// the late abort leaves the next generation alone
	addDocs(t, dw, textDoc("dog"))
	dw.abortGeneration(gen)
	assert.Equal(t, 1, dw.NumDocs())
	assert.Equal(t, 1.0, counterValue(t, reg, "termshash_aborts_total", ""))

	require.NoError(t, dw.Close())
	r := openSegment(t, dir, "_0")
	assert.Equal(t, map[string]int64{"dog": 1}, totalTermFreqs(r.Terms("body")))
}

func TestAddDocumentRunsPendingAbortFirst(t *testing.T) {
	dir := store.NewRAMDirectory()
	reg := prometheus.NewRegistry()
	dw, err := NewDocumentsWriter(dir, newTestConfig(), NewMetrics(reg))
	require.NoError(t, err)

	addDocs(t, dw, textDoc("the fox"), textDoc("the dog"))
	dw.abortPending.Store(true)

	addDocs(t, dw, textDoc("cat"))
	assert.Equal(t, 1, dw.NumDocs())
	assert.False(t, dw.abortPending.Load())
	assert.Equal(t, 1.0, counterValue(t, reg, "termshash_aborts_total", ""))

	require.NoError(t, dw.Close())
	r := openSegment(t, dir, "_0")
	assert.Equal(t, 1, r.MaxDoc())
	assert.Equal(t, map[string]int64{"cat": 1}, totalTermFreqs(r.Terms("body")))
}
