package document

import (
	"bytes"
	"fmt"

	"github.com/ironsweet/termshash/core/index/model"
)

// document/FieldType.java

// Describes the properties of a field.
type FieldType struct {
	indexed                  bool
	tokenized                bool
	storeTermVectors         bool
	storeTermVectorOffsets   bool
	storeTermVectorPositions bool
	omitNorms                bool
	indexOptions             model.IndexOptions
	frozen                   bool
}

// Create a new mutable FieldType with all of the properties from ref
func NewFieldTypeFrom(ref *FieldType) *FieldType {
	ft := *ref
	// Do not copy frozen!
	ft.frozen = false
	return &ft
}

// Create a new FieldType with default properties.
func NewFieldType() *FieldType {
	return &FieldType{
		tokenized:    true,
		indexOptions: model.INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS,
	}
}

func (ft *FieldType) checkIfFrozen() {
	assert2(!ft.frozen, "this FieldType is already frozen and cannot be changed")
}

/*
Prevents future changes. Note, it is recommended that this is called
once the FieldTypes's properties have been set, to prevent
unintentional state changes.
*/
func (ft *FieldType) Freeze() { ft.frozen = true }

func (ft *FieldType) Indexed() bool       { return ft.indexed }
func (ft *FieldType) SetIndexed(v bool)   { ft.checkIfFrozen(); ft.indexed = v }
func (ft *FieldType) Tokenized() bool     { return ft.tokenized }
func (ft *FieldType) SetTokenized(v bool) { ft.checkIfFrozen(); ft.tokenized = v }

func (ft *FieldType) StoreTermVectors() bool       { return ft.storeTermVectors }
func (ft *FieldType) SetStoreTermVectors(v bool)   { ft.checkIfFrozen(); ft.storeTermVectors = v }
func (ft *FieldType) StoreTermVectorOffsets() bool { return ft.storeTermVectorOffsets }
func (ft *FieldType) SetStoreTermVectorOffsets(v bool) {
	ft.checkIfFrozen()
	ft.storeTermVectorOffsets = v
}
func (ft *FieldType) StoreTermVectorPositions() bool { return ft.storeTermVectorPositions }
func (ft *FieldType) SetStoreTermVectorPositions(v bool) {
	ft.checkIfFrozen()
	ft.storeTermVectorPositions = v
}

func (ft *FieldType) OmitNorms() bool     { return ft.omitNorms }
func (ft *FieldType) SetOmitNorms(v bool) { ft.checkIfFrozen(); ft.omitNorms = v }

func (ft *FieldType) IndexOptions() model.IndexOptions { return ft.indexOptions }
func (ft *FieldType) SetIndexOptions(v model.IndexOptions) {
	ft.checkIfFrozen()
	ft.indexOptions = v
}

// Prints a Field for human consumption.
func (ft *FieldType) String() string {
	var buf bytes.Buffer
	if ft.Indexed() {
		buf.WriteString("indexed")
		if ft.Tokenized() {
			buf.WriteString(",tokenized")
		}
		if ft.StoreTermVectors() {
			buf.WriteString(",termVector")
		}
		if ft.StoreTermVectorOffsets() {
			buf.WriteString(",termVectorOffsets")
		}
		if ft.StoreTermVectorPositions() {
			buf.WriteString(",termVectorPosition")
		}
		if ft.OmitNorms() {
			buf.WriteString(",omitNorms")
		}
		if ft.IndexOptions() != model.INDEX_OPT_DOCS_AND_FREQS_AND_POSITIONS {
			fmt.Fprintf(&buf, ",indexOptions=%v", ft.IndexOptions())
		}
	}
	return buf.String()
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
