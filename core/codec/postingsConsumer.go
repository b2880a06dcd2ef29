package codec

import (
	"github.com/ironsweet/termshash/core/index/model"
)

// codecs/FieldsConsumer.java

/*
Abstract API that consumes terms, doc, freq, prox and offset postings
for the fields of one segment. The flush of the postings consumer
drives it field by field, in field number order.
*/
type FieldsConsumer interface {
	// Add a new field
	AddField(field *model.FieldInfo) (TermsConsumer, error)
	// Called when we are done adding everything.
	Close() error
}

// codecs/TermsConsumer.java

/*
Abstract API that consumes terms for an individual field.

The lifecycle is:
	- TermsConsumer is returned for each field by
	FieldsConsumer.AddField().
	- StartTerm() is called for each term in the field, in sorted
	byte order. FinishTerm() is called after all postings of the
	term were added.
	- When the producer is done adding terms, Finish() is called.
*/
type TermsConsumer interface {
	// Starts a new term in this field; this may be called with no
	// corresponding call to finish if the term had no docs.
	StartTerm(text []byte) (PostingsConsumer, error)
	// Finishes the current term; numDocs must be > 0.
	FinishTerm(text []byte, stats *TermStats) error
	// Called when we are done adding terms to this field.
	Finish(sumTotalTermFreq, sumDocFreq int64, docCount int) error
}

/*
Abstract API that consumes postings for an individual term.

The lifecycle is:
	- PostingsConsumer is returned for each term by
	TermsConsumer.StartTerm().
	- StartDoc() is called for each document where the term occurs,
	specifying id and term frequency for that document.
	- If positions are enabled for the field, then AddPosition() will
	be called for each occurrence in the document.
	- FinishDoc() is called when the producer is done adding positions
	to the document.
*/
type PostingsConsumer interface {
	// Adds a new doc in this term. freq will be -1 when term
	// frequencies are omitted for the field.
	StartDoc(docId, freq int) error
	// Add a new position.
	AddPosition(position int) error
	// Called when we are done adding positions for each doc.
	FinishDoc() error
}
