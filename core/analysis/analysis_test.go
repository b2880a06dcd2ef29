package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ts TokenStream) (terms []string, offsets [][2]int, incs []int) {
	require.NoError(t, ts.Reset())
	attrs := ts.Attributes()
	for {
		ok, err := ts.IncrementToken()
		require.NoError(t, err)
		if !ok {
			break
		}
		terms = append(terms, string(attrs.TermBytes()))
		offsets = append(offsets, [2]int{attrs.StartOffset(), attrs.EndOffset()})
		incs = append(incs, attrs.PositionIncrement())
	}
	require.NoError(t, ts.End())
	require.NoError(t, ts.Close())
	return
}

func TestWhitespaceTokenizer(t *testing.T) {
	ts := WhitespaceAnalyzer.TokenStream("body", strings.NewReader("  the Fox\tthe  "))
	terms, offsets, _ := collect(t, ts)
	assert.Equal(t, []string{"the", "Fox", "the"}, terms)
	assert.Equal(t, [][2]int{{2, 5}, {6, 9}, {10, 13}}, offsets)
	assert.Equal(t, 15, ts.Attributes().EndOffset())
}

func TestLowerCaseTokenizer(t *testing.T) {
	ts := SimpleAnalyzer.TokenStream("body", strings.NewReader("The DOG, the fox"))
	terms, _, _ := collect(t, ts)
	assert.Equal(t, []string{"the", "dog", "the", "fox"}, terms)
}

func TestFilters(t *testing.T) {
	ts := NewLengthFilter(NewLowerCaseFilter(NewCannedTokenStream(Tokens("A", "Quick", "x", "Fox")...)), 2, 10)
	terms, offsets, incs := collect(t, ts)
	assert.Equal(t, []string{"quick", "fox"}, terms)
	assert.Equal(t, []int{2, 2}, incs)
	assert.Equal(t, [][2]int{{2, 7}, {10, 13}}, offsets)
}

func TestEmptyStream(t *testing.T) {
	terms, _, _ := collect(t, NewWhitespaceTokenizer(strings.NewReader("   ")))
	assert.Empty(t, terms)
}
