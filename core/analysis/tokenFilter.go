package analysis

import (
	"bytes"
)

// analysis/TokenFilter.java

/*
A TokenFilter is a TokenStream whose input is another TokenStream. It
shares the attributes of its input.
*/
type TokenFilter struct {
	input TokenStream
}

func (f *TokenFilter) Attributes() *TokenAttributes { return f.input.Attributes() }
func (f *TokenFilter) End() error                   { return f.input.End() }
func (f *TokenFilter) Reset() error                 { return f.input.Reset() }
func (f *TokenFilter) Close() error                 { return f.input.Close() }

// analysis/core/LowerCaseFilter.java

/* Normalizes token text to lower case. */
type LowerCaseFilter struct {
	*TokenFilter
}

func NewLowerCaseFilter(input TokenStream) *LowerCaseFilter {
	return &LowerCaseFilter{&TokenFilter{input}}
}

func (f *LowerCaseFilter) IncrementToken() (bool, error) {
	ok, err := f.input.IncrementToken()
	if !ok || err != nil {
		return ok, err
	}
	attrs := f.input.Attributes()
	attrs.SetTerm(bytes.ToLower(attrs.TermBytes()))
	return true, nil
}

// analysis/miscellaneous/LengthFilter.java

/*
Removes words that are too long or too short from the stream. Removed
tokens still count for the position of the next kept token.
*/
type LengthFilter struct {
	*TokenFilter
	min, max int
}

func NewLengthFilter(input TokenStream, min, max int) *LengthFilter {
	assert2(min >= 0 && min <= max, "minimum length must be >= 0 and <= maximum, got %v, %v", min, max)
	return &LengthFilter{&TokenFilter{input}, min, max}
}

func (f *LengthFilter) IncrementToken() (bool, error) {
	skipped := 0
	for {
		ok, err := f.input.IncrementToken()
		if !ok || err != nil {
			return ok, err
		}
		attrs := f.input.Attributes()
		if n := len(attrs.TermBytes()); n >= f.min && n <= f.max {
			attrs.SetPositionIncrement(attrs.PositionIncrement() + skipped)
			return true, nil
		}
		skipped += attrs.PositionIncrement()
	}
}
