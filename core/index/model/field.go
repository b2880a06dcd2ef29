package model

import (
	"github.com/ironsweet/termshash/core/analysis"
)

// index/IndexableField.java

/*
Represents a single field for indexing. The indexer consumes
[]IndexableField as a document.
*/
type IndexableField interface {
	// Field name
	Name() string
	// IndexableFieldType describing the properties of this field.
	FieldType() IndexableFieldType
	// Returns the field's index-time boost. The boost is multiplied
	// into the length normalization factor stored as the field's norm.
	//
	// It is illegal to return a boost other than 1.0 for a field that
	// is not indexed or omits norms.
	Boost() float32
	// Creates the TokenStream used for indexing this field. If
	// appropriate, implementations should use the given Analyzer to
	// create the TokenStream.
	TokenStream(analyzer analysis.Analyzer) (analysis.TokenStream, error)
}

// index/IndexableFieldType.java

/* Describes the properties of a field. */
type IndexableFieldType interface {
	// True if this field should be indexed (inverted)
	Indexed() bool
	// True if this field's value should be analyzed by the Analyzer.
	Tokenized() bool
	// True if term vectors should be indexed
	StoreTermVectors() bool
	// True if term vector offsets should be indexed
	StoreTermVectorOffsets() bool
	// True if term vector positions should be indexed
	StoreTermVectorPositions() bool
	// True if norms should not be indexed
	OmitNorms() bool
	// IndexOptions, describing what should be recorded into the
	// inverted index
	IndexOptions() IndexOptions
}
