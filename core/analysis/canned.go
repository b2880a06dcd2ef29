package analysis

// analysis/CannedTokenStream.java

/* A pre-analyzed token. */
type Token struct {
	Term              string
	PositionIncrement int
	StartOffset       int
	EndOffset         int
}

/* Returns tokens at consecutive positions with offsets assuming single-space separation. */
func Tokens(terms ...string) []Token {
	tokens := make([]Token, len(terms))
	offset := 0
	for i, term := range terms {
		tokens[i] = Token{term, 1, offset, offset + len(term)}
		offset += len(term) + 1
	}
	return tokens
}

/* TokenStream from a canned list of tokens. */
type CannedTokenStream struct {
	attrs       *TokenAttributes
	tokens      []Token
	upto        int
	finalOffset int
}

func NewCannedTokenStream(tokens ...Token) *CannedTokenStream {
	ans := &CannedTokenStream{attrs: NewTokenAttributes(), tokens: tokens}
	if n := len(tokens); n > 0 {
		ans.finalOffset = tokens[n-1].EndOffset
	}
	return ans
}

func (ts *CannedTokenStream) Attributes() *TokenAttributes { return ts.attrs }

func (ts *CannedTokenStream) IncrementToken() (bool, error) {
	if ts.upto >= len(ts.tokens) {
		return false, nil
	}
	token := ts.tokens[ts.upto]
	ts.upto++
	ts.attrs.Clear()
	ts.attrs.SetTermString(token.Term)
	ts.attrs.SetPositionIncrement(token.PositionIncrement)
	ts.attrs.SetOffset(token.StartOffset, token.EndOffset)
	return true, nil
}

func (ts *CannedTokenStream) End() error {
	ts.attrs.Clear()
	ts.attrs.SetOffset(ts.finalOffset, ts.finalOffset)
	return nil
}

func (ts *CannedTokenStream) Reset() error {
	ts.upto = 0
	return nil
}

func (ts *CannedTokenStream) Close() error { return nil }
