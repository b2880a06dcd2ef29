package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldType struct {
	indexed, vectors, vectorPositions, omitNorms bool
	indexOptions                                 IndexOptions
}

func (ft fieldType) Indexed() bool                  { return ft.indexed }
func (ft fieldType) Tokenized() bool                { return true }
func (ft fieldType) StoreTermVectors() bool         { return ft.vectors }
func (ft fieldType) StoreTermVectorOffsets() bool   { return false }
func (ft fieldType) StoreTermVectorPositions() bool { return ft.vectorPositions }
func (ft fieldType) OmitNorms() bool                { return ft.omitNorms }
func (ft fieldType) IndexOptions() IndexOptions     { return ft.indexOptions }

func TestAddOrUpdateAssignsNumbers(t *testing.T) {
	infos := NewFieldInfos()
	body := infos.AddOrUpdate("body", fieldType{indexed: true, indexOptions: INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS})
	title := infos.AddOrUpdate("title", fieldType{indexed: true, indexOptions: INDEX_OPT_DOCS_ONLY})
	again := infos.AddOrUpdate("body", fieldType{indexed: true, indexOptions: INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS})

	assert.Equal(t, int32(0), body.Number)
	assert.Equal(t, int32(1), title.Number)
	assert.True(t, body == again)
	assert.Equal(t, 2, infos.Size())
	assert.True(t, infos.FieldInfoByNumber(1) == title)
	assert.Nil(t, infos.FieldInfoByNumber(7))
	assert.True(t, infos.FieldInfoByName("title") == title)
	assert.True(t, infos.HasProx())
	assert.False(t, infos.HasVectors())
}

func TestAddOrUpdateWidens(t *testing.T) {
	infos := NewFieldInfos()
	fi := infos.AddOrUpdate("f", fieldType{indexed: true, omitNorms: true, indexOptions: INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS})
	assert.False(t, fi.HasNorms())

	infos.AddOrUpdate("f", fieldType{indexed: true, vectors: true, vectorPositions: true, indexOptions: INDEX_OPT_DOCS_AND_FREQS})
	assert.True(t, fi.HasNorms())
	assert.True(t, fi.HasVectors())
	assert.True(t, fi.HasVectorPositions())
	assert.Equal(t, INDEX_OPT_DOCS_AND_FREQS, fi.IndexOptions())
	assert.False(t, fi.IndexOptions().HasPositions())

	// not indexed: no capability at all
	stored := infos.AddOrUpdate("stored", fieldType{})
	assert.False(t, stored.IsIndexed())
	assert.Equal(t, IndexOptions(0), stored.IndexOptions())
}

func TestFieldInfosConcurrentAdd(t *testing.T) {
	infos := NewFieldInfos()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range []string{"a", "b", "c", "d"} {
				infos.AddOrUpdate(name, fieldType{indexed: true, indexOptions: INDEX_OPT_DOCS_AND_FREQS})
			}
		}()
	}
	wg.Wait()
	values := infos.Values()
	require.Len(t, values, 4)
	for i, fi := range values {
		assert.Equal(t, int32(i), fi.Number)
	}
}

func TestNewFieldInfosRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		NewFieldInfos(
			NewFieldInfo("a", 0, true, false, false, false, false, INDEX_OPT_DOCS_ONLY),
			NewFieldInfo("b", 0, true, false, false, false, false, INDEX_OPT_DOCS_ONLY))
	})
}
