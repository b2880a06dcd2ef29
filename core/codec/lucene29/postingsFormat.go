/*
Package lucene29 writes and reads the postings of a flushed segment:
a term dictionary (.tis) with its sampled index (.tii), document
frequencies (.frq) and positions (.prx).

Every file starts with a codec header carrying the segment id and
ends with a checksum footer. File pointers stored in the dictionary
are deltas, starting from the end of the header of the target file.
*/
package lucene29

import (
	"fmt"

	"github.com/ironsweet/termshash/core/store"
)

const (
	TERMS_EXTENSION       = "tis"
	TERMS_INDEX_EXTENSION = "tii"
	FREQ_EXTENSION        = "frq"
	PROX_EXTENSION        = "prx"

	TERMS_CODEC       = "Lucene29TermInfos"
	TERMS_INDEX_CODEC = "Lucene29TermIndex"
	FREQ_CODEC        = "Lucene29Frequencies"
	PROX_CODEC        = "Lucene29Positions"

	VERSION_START   = 0
	VERSION_CURRENT = VERSION_START
)

/* What the postings writer needs from the flush in progress. */
type WriteState interface {
	SegmentFileName(ext string) string
	// Registers the file with the flush, then creates it.
	CreateOutput(name string) (store.IndexOutput, error)
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
