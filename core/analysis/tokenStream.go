package analysis

import (
	"fmt"
	"io"
)

// analysis/TokenStream.java

/*
A TokenStream enumerates the sequence of tokens of a field.

The workflow is as follows:
	1. The consumer calls Reset().
	2. The consumer retrieves the attributes from the stream and keeps
	a reference to them.
	3. The consumer calls IncrementToken() until it returns false,
	consuming the attributes after each call.
	4. The consumer calls End() so that any end-of-stream operations
	can be performed.
	5. The consumer calls Close() to release any resource when
	finished using the TokenStream.

Only one attribute holder is created per stream and reused for every
token.
*/
type TokenStream interface {
	// Releases resources associated with this stream.
	io.Closer
	Attributes() *TokenAttributes
	// Consumers use this method to advance the stream to the next
	// token. The attributes are only valid until the next call.
	IncrementToken() (bool, error)
	// Called by the consumer after the last token has been consumed,
	// e.g. to set the final offset.
	End() error
	// Resets this stream to a clean state. Stateful implementations
	// must implement this method so that they can be reused.
	Reset() error
}

// analysis/tokenattributes

/*
The attributes of the current token: the term bytes, the position
increment relative to the previous token, and the offsets of the
token in the field's text.
*/
type TokenAttributes struct {
	term              []byte
	positionIncrement int
	startOffset       int
	endOffset         int
}

func NewTokenAttributes() *TokenAttributes {
	return &TokenAttributes{positionIncrement: 1}
}

/*
Returns the term of the current token as UTF8 bytes. The slice is
owned by the stream and may be overwritten by the next
IncrementToken() call.
*/
func (a *TokenAttributes) TermBytes() []byte { return a.term }

func (a *TokenAttributes) SetTerm(term []byte) {
	a.term = append(a.term[:0], term...)
}

func (a *TokenAttributes) SetTermString(term string) {
	a.term = append(a.term[:0], term...)
}

func (a *TokenAttributes) PositionIncrement() int { return a.positionIncrement }

func (a *TokenAttributes) SetPositionIncrement(inc int) {
	assert2(inc >= 0, "Increment must be zero or greater: got %v", inc)
	a.positionIncrement = inc
}

func (a *TokenAttributes) StartOffset() int { return a.startOffset }
func (a *TokenAttributes) EndOffset() int   { return a.endOffset }

func (a *TokenAttributes) SetOffset(startOffset, endOffset int) {
	assert2(startOffset >= 0 && startOffset <= endOffset,
		"startOffset must be non-negative, and endOffset must be >= startOffset, startOffset=%v,endOffset=%v",
		startOffset, endOffset)
	a.startOffset, a.endOffset = startOffset, endOffset
}

func (a *TokenAttributes) Clear() {
	a.term = a.term[:0]
	a.positionIncrement = 1
	a.startOffset, a.endOffset = 0, 0
}

func (a *TokenAttributes) String() string {
	return fmt.Sprintf("term=%v,posIncr=%v,offset=%v-%v",
		string(a.term), a.positionIncrement, a.startOffset, a.endOffset)
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
