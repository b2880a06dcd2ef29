package analysis

import (
	"io"
	"sync/atomic"

	"github.com/ironsweet/termshash/core/analysis"
	"github.com/pkg/errors"
)

// analysis/MockAnalyzer.java

/*
Analyzer for testing

This analyzer is a replacement for Whitespace/Simple analyzers for
testing purposes, with some knobs a test can turn:

 1. lowerCase folds every term to lower case.
 2. FailOn makes the tokenizer return an error as soon as it meets
    the given term, after every earlier token was consumed.
*/
type MockAnalyzer struct {
	lowerCase bool
	failOn    string
	// number of token streams handed out
	Streams atomic.Int32
}

func NewMockAnalyzer(lowerCase bool) *MockAnalyzer {
	return &MockAnalyzer{lowerCase: lowerCase}
}

/* Makes token streams fail on the given term. */
func (a *MockAnalyzer) FailOn(term string) *MockAnalyzer {
	a.failOn = term
	return a
}

func (a *MockAnalyzer) TokenStream(fieldName string, reader io.RuneReader) analysis.TokenStream {
	a.Streams.Add(1)
	var ts analysis.TokenStream = analysis.NewWhitespaceTokenizer(reader)
	if a.lowerCase {
		ts = analysis.NewLowerCaseFilter(ts)
	}
	if a.failOn != "" {
		ts = &failingFilter{ts, a.failOn}
	}
	return ts
}

// ErrMockAnalysis is returned by a MockAnalyzer set up to FailOn a term.
var ErrMockAnalysis = errors.New("mock analysis failure")

type failingFilter struct {
	analysis.TokenStream
	term string
}

func (f *failingFilter) IncrementToken() (bool, error) {
	ok, err := f.TokenStream.IncrementToken()
	if ok && string(f.Attributes().TermBytes()) == f.term {
		return false, errors.Wrapf(ErrMockAnalysis, "term %q", f.term)
	}
	return ok, err
}
