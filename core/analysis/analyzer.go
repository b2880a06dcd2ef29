package analysis

import (
	"io"
)

// analysis/Analyzer.java

/*
An Analyzer builds TokenStreams, which analyze text. It thus
represents a policy for extracting index terms from text.
*/
type Analyzer interface {
	TokenStream(fieldName string, reader io.RuneReader) TokenStream
}

/* Wraps a function as an Analyzer. */
type AnalyzerFunc func(fieldName string, reader io.RuneReader) TokenStream

func (f AnalyzerFunc) TokenStream(fieldName string, reader io.RuneReader) TokenStream {
	return f(fieldName, reader)
}

// analysis/core/WhitespaceAnalyzer.java

/* An Analyzer that uses WhitespaceTokenizer. */
var WhitespaceAnalyzer = AnalyzerFunc(func(fieldName string, reader io.RuneReader) TokenStream {
	return NewWhitespaceTokenizer(reader)
})

// analysis/core/SimpleAnalyzer.java

/* An Analyzer that splits at non-letters and lower cases the terms. */
var SimpleAnalyzer = AnalyzerFunc(func(fieldName string, reader io.RuneReader) TokenStream {
	return NewLowerCaseTokenizer(reader)
})
