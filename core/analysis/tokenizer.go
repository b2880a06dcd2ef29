package analysis

import (
	"io"
	"unicode"
	"unicode/utf8"
)

// analysis/util/CharTokenizer.java

/*
A simple tokenizer that splits its input into tokens at characters
for which isTokenChar returns false. Offsets are counted in bytes of
the UTF8 input.
*/
type CharTokenizer struct {
	attrs       *TokenAttributes
	input       io.RuneReader
	isTokenChar func(r rune) bool
	normalize   func(r rune) rune
	offset      int
	finalOffset int
	buf         []byte
}

func newCharTokenizer(input io.RuneReader, isTokenChar func(rune) bool, normalize func(rune) rune) *CharTokenizer {
	return &CharTokenizer{
		attrs:       NewTokenAttributes(),
		input:       input,
		isTokenChar: isTokenChar,
		normalize:   normalize,
	}
}

// analysis/core/WhitespaceTokenizer.java

/* A tokenizer that divides text at whitespace. */
func NewWhitespaceTokenizer(input io.RuneReader) *CharTokenizer {
	return newCharTokenizer(input, func(r rune) bool { return !unicode.IsSpace(r) }, nil)
}

// analysis/core/LowerCaseTokenizer.java

/* A tokenizer that divides text at non-letters and lower cases the letters. */
func NewLowerCaseTokenizer(input io.RuneReader) *CharTokenizer {
	return newCharTokenizer(input, unicode.IsLetter, unicode.ToLower)
}

func (t *CharTokenizer) Attributes() *TokenAttributes { return t.attrs }

func (t *CharTokenizer) IncrementToken() (bool, error) {
	t.attrs.Clear()
	t.buf = t.buf[:0]
	start := -1
	for {
		r, size, err := t.input.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, err
		}
		t.offset += size
		if !t.isTokenChar(r) {
			if start == -1 {
				continue
			}
			// the delimiter ends the token
			t.attrs.SetTerm(t.buf)
			t.attrs.SetOffset(start, t.offset-size)
			return true, nil
		}
		if start == -1 {
			start = t.offset - size
		}
		if t.normalize != nil {
			r = t.normalize(r)
		}
		t.buf = utf8.AppendRune(t.buf, r)
	}
	t.finalOffset = t.offset
	if start == -1 {
		return false, nil
	}
	t.attrs.SetTerm(t.buf)
	t.attrs.SetOffset(start, t.offset)
	return true, nil
}

func (t *CharTokenizer) End() error {
	// set final offset
	t.attrs.Clear()
	t.attrs.SetOffset(t.finalOffset, t.finalOffset)
	return nil
}

func (t *CharTokenizer) Reset() error {
	t.offset, t.finalOffset = 0, 0
	return nil
}

func (t *CharTokenizer) Close() error {
	if c, ok := t.input.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
