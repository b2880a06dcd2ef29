package document

import (
	"testing"

	"github.com/ironsweet/termshash/core/analysis"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terms(t *testing.T, ts analysis.TokenStream) []string {
	require.NoError(t, ts.Reset())
	var ans []string
	for {
		ok, err := ts.IncrementToken()
		require.NoError(t, err)
		if !ok {
			break
		}
		ans = append(ans, string(ts.Attributes().TermBytes()))
	}
	require.NoError(t, ts.End())
	require.NoError(t, ts.Close())
	return ans
}

func TestTextField(t *testing.T) {
	f := NewTextField("body", "The quick Fox")
	ts, err := f.TokenStream(analysis.SimpleAnalyzer)
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "quick", "fox"}, terms(t, ts))
	assert.Equal(t, model.INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS, f.FieldType().IndexOptions())
}

func TestStringFieldIsSingleToken(t *testing.T) {
	f := NewStringField("id", "AB 12")
	ts, err := f.TokenStream(analysis.SimpleAnalyzer)
	require.NoError(t, err)
	assert.Equal(t, []string{"AB 12"}, terms(t, ts))
	assert.True(t, f.FieldType().OmitNorms())
	assert.Panics(t, func() { f.SetBoost(2) })
}

func TestFrozenFieldType(t *testing.T) {
	assert.Panics(t, func() { TEXT_FIELD_TYPE.SetOmitNorms(true) })
	ft := NewFieldTypeFrom(TEXT_FIELD_TYPE)
	ft.SetOmitNorms(true)
	assert.True(t, ft.OmitNorms())
	assert.False(t, TEXT_FIELD_TYPE.OmitNorms())
}

func TestDocumentFields(t *testing.T) {
	doc := NewDocument(NewTextField("body", "a"), NewStringField("id", "1"))
	doc.Add(NewTextField("body", "b"))
	assert.Len(t, doc.Fields(), 3)
	assert.Equal(t, "id", doc.Field("id").Name())
	doc.RemoveFields("body")
	assert.Len(t, doc.Fields(), 1)
	assert.Nil(t, doc.Field("body"))
}
