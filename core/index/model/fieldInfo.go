package model

import (
	"fmt"
)

// index/FieldInfo.java

/*
Access to the Field Info file that describes document fields and
whether or not they are indexed. Each segment has a separate Field
Info file.

Name and Number never change once the FieldInfo was created. The
capability flags are only widened by FieldInfos.AddOrUpdate(), under
the lock of the owning FieldInfos.
*/
type FieldInfo struct {
	// Field's name
	Name string
	// Internal field number
	Number int32

	indexed bool

	// True if any document indexed term vectors
	storeTermVector             bool
	storePositionWithTermVector bool
	storeOffsetWithTermVector   bool

	omitNorms    bool
	indexOptions IndexOptions
}

func NewFieldInfo(name string, number int32, indexed, storeTermVector,
	storePositionWithTermVector, storeOffsetWithTermVector, omitNorms bool,
	indexOptions IndexOptions) *FieldInfo {

	fi := &FieldInfo{Name: name, Number: number, indexed: indexed}
	if indexed {
		fi.storeTermVector = storeTermVector
		fi.storePositionWithTermVector = storeTermVector && storePositionWithTermVector
		fi.storeOffsetWithTermVector = storeTermVector && storeOffsetWithTermVector
		fi.omitNorms = omitNorms
		fi.indexOptions = indexOptions
	} // for non-indexed fields, leave defaults
	assertTrue(fi.checkConsistency())
	return fi
}

func (fi *FieldInfo) checkConsistency() bool {
	if !fi.indexed {
		return !fi.storeTermVector && !fi.omitNorms && fi.indexOptions == 0
	}
	if !fi.storeTermVector {
		return !fi.storePositionWithTermVector && !fi.storeOffsetWithTermVector
	}
	return fi.indexOptions != 0
}

func (fi *FieldInfo) update(ft IndexableFieldType) {
	if fi.indexed != ft.Indexed() {
		fi.indexed = true // once indexed, always index
	}
	if !ft.Indexed() {
		return
	}
	if ft.StoreTermVectors() {
		// once vector, always vector
		fi.storeTermVector = true
		fi.storePositionWithTermVector = fi.storePositionWithTermVector || ft.StoreTermVectorPositions()
		fi.storeOffsetWithTermVector = fi.storeOffsetWithTermVector || ft.StoreTermVectorOffsets()
	}
	if fi.indexOptions == 0 {
		// first indexed occurrence of a field that was only stored so far
		fi.indexOptions = ft.IndexOptions()
		fi.omitNorms = ft.OmitNorms()
		return
	}
	if fi.omitNorms != ft.OmitNorms() {
		fi.omitNorms = false // once norms are stored, always store
	}
	if ft.IndexOptions() < fi.indexOptions {
		// downgrade: once positions or freqs are omitted, always omit
		fi.indexOptions = ft.IndexOptions()
	}
}

/* Returns IndexOptions for the field, or 0 if the field is not indexed */
func (fi *FieldInfo) IndexOptions() IndexOptions { return fi.indexOptions }

/* Returns true if norms are explicitly omitted for this field */
func (fi *FieldInfo) OmitsNorms() bool { return fi.omitNorms }

/* Returns true if this field actually has any norms. */
func (fi *FieldInfo) HasNorms() bool { return fi.indexed && !fi.omitNorms }

/* Returns true if this field is indexed. */
func (fi *FieldInfo) IsIndexed() bool { return fi.indexed }

/* Returns true if any term vectors exist for this field. */
func (fi *FieldInfo) HasVectors() bool { return fi.storeTermVector }

func (fi *FieldInfo) HasVectorPositions() bool { return fi.storePositionWithTermVector }
func (fi *FieldInfo) HasVectorOffsets() bool   { return fi.storeOffsetWithTermVector }

func (fi *FieldInfo) String() string {
	return fmt.Sprintf("%v-%v, isIndexed=%v, hasVectors=%v (pos=%v, offs=%v), omitNorms=%v, indexOptions=%v",
		fi.Number, fi.Name, fi.indexed, fi.storeTermVector, fi.storePositionWithTermVector,
		fi.storeOffsetWithTermVector, fi.omitNorms, fi.indexOptions)
}

// index/FieldInfo.IndexOptions

/*
Controls how much information is stored in the postings lists. The
options are ordered: a larger value stores everything a smaller one
does.
*/
type IndexOptions int

const (
	// Only documents are indexed: term frequencies and positions are
	// omitted.
	INDEX_OPT_DOCS_ONLY = IndexOptions(1)
	// Only documents and term frequencies are indexed: positions are
	// omitted.
	INDEX_OPT_DOCS_AND_FREQS = IndexOptions(2)
	// Indexes documents, frequencies and positions.
	INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS = IndexOptions(3)
)

func (opts IndexOptions) HasFreqs() bool     { return opts >= INDEX_OPT_DOCS_AND_FREQS }
func (opts IndexOptions) HasPositions() bool { return opts >= INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS }

func (opts IndexOptions) String() string {
	switch opts {
	case 0:
		return "NONE"
	case INDEX_OPT_DOCS_ONLY:
		return "DOCS_ONLY"
	case INDEX_OPT_DOCS_AND_FREQS:
		return "DOCS_AND_FREQS"
	case INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS:
		return "DOCS_AND_FREQS_AND_POSITIONS"
	}
	return fmt.Sprintf("IndexOptions(%d)", int(opts))
}

func assertTrue(ok bool) {
	assert2(ok, "assert fail")
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
