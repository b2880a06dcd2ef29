package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ironsweet/termshash/core/analysis"
	"github.com/ironsweet/termshash/core/index/model"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("document")

// document/Field.java

type Field struct {
	ft    *FieldType  // Field's type
	name  string      // Field's name
	data  interface{} // Field's value: string or io.RuneReader
	boost float32     // Field's boost

	// Pre-analyzed tokenStream for indexed fields; this is separate
	// from data because you are allowed to have both.
	tokenStream analysis.TokenStream
}

/* Create field with Reader value. */
func NewFieldFromReader(name string, reader io.RuneReader, ft *FieldType) *Field {
	assert2(name != "", "name cannot be empty")
	assert2(ft != nil, "type can not be nil")
	assert2(reader != nil, "reader cannot be nil")
	assert2(!ft.Indexed() || ft.Tokenized(), "non-tokenized fields must use String values")
	return &Field{ft: ft, name: name, data: reader, boost: 1}
}

// Create field with String value
func NewFieldFromString(name, value string, ft *FieldType) *Field {
	assert2(name != "", "name cannot be empty")
	assert2(ft != nil, "type can not be nil")
	assert2(ft.Indexed(), "it doesn't make sense to have a field that is not indexed")
	return &Field{ft: ft, name: name, data: value, boost: 1}
}

/* Create field with a pre-analyzed TokenStream value. */
func NewFieldFromTokenStream(name string, tokenStream analysis.TokenStream, ft *FieldType) *Field {
	assert2(name != "", "name cannot be empty")
	assert2(tokenStream != nil, "tokenStream cannot be nil")
	assert2(ft.Indexed() && ft.Tokenized(), "TokenStream fields must be indexed and tokenized")
	return &Field{ft: ft, name: name, boost: 1, tokenStream: tokenStream}
}

func (f *Field) StringValue() string {
	if v, ok := f.data.(string); ok {
		return v
	}
	return ""
}

func (f *Field) ReaderValue() io.RuneReader {
	if v, ok := f.data.(io.RuneReader); ok {
		return v
	}
	return nil
}

func (f *Field) Name() string { return f.name }

func (f *Field) Boost() float32 { return f.boost }

/*
Sets the boost factor on this field. Only indexed fields that keep
their norms may be boosted.
*/
func (f *Field) SetBoost(boost float32) {
	if boost != 1 {
		assert2(f.ft.Indexed() && !f.ft.OmitNorms(),
			"You cannot set an index-time boost on an unindexed field, or one that omits norms")
	}
	f.boost = boost
}

func (f *Field) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%v<%v:", f.ft, f.name)
	if f.data != nil {
		fmt.Fprint(&buf, f.data)
	}
	fmt.Fprint(&buf, ">")
	return buf.String()
}

func (f *Field) FieldType() model.IndexableFieldType {
	return f.ft
}

func (f *Field) TokenStream(analyzer analysis.Analyzer) (analysis.TokenStream, error) {
	if !f.ft.Indexed() {
		return nil, nil
	}

	if !f.ft.Tokenized() {
		return newStringTokenStream(f.StringValue()), nil
	}

	if f.tokenStream != nil {
		return f.tokenStream, nil
	}
	assert2(analyzer != nil, "analyzer cannot be nil for tokenized field %v", f.name)
	if r := f.ReaderValue(); r != nil {
		return analyzer.TokenStream(f.name, r), nil
	}
	if s, ok := f.data.(string); ok {
		return analyzer.TokenStream(f.name, strings.NewReader(s)), nil
	}
	log.Warningf("field %v has no value to index", f.name)
	return nil, fmt.Errorf("Field must have either TokenStream, String or Reader value; got %v", f)
}

/* A TokenStream that returns a string as single token. */
type StringTokenStream struct {
	attrs *analysis.TokenAttributes
	used  bool
	value string
}

func newStringTokenStream(value string) *StringTokenStream {
	return &StringTokenStream{attrs: analysis.NewTokenAttributes(), value: value}
}

func (ts *StringTokenStream) Attributes() *analysis.TokenAttributes { return ts.attrs }

func (ts *StringTokenStream) IncrementToken() (bool, error) {
	if ts.used {
		return false, nil
	}
	ts.attrs.Clear()
	ts.attrs.SetTermString(ts.value)
	ts.attrs.SetOffset(0, len(ts.value))
	ts.used = true
	return true, nil
}

func (ts *StringTokenStream) End() error {
	ts.attrs.Clear()
	ts.attrs.SetOffset(len(ts.value), len(ts.value))
	return nil
}

func (ts *StringTokenStream) Reset() error {
	ts.used = false
	return nil
}

func (ts *StringTokenStream) Close() error { return nil }

// document/StringField.java

/* Indexed, not tokenized, omits norms, indexes DOCS_ONLY. */
var STRING_FIELD_TYPE = func() *FieldType {
	ft := NewFieldType()
	ft.indexed = true
	ft.omitNorms = true
	ft.indexOptions = model.INDEX_OPT_DOCS_ONLY
	ft.tokenized = false
	ft.frozen = true
	return ft
}()

/*
Creates a new field that is indexed but not tokenized: the entire
String value is indexed as a single token. For example, this might be
used for a 'country' field or an 'id' field.
*/
func NewStringField(name, value string) *Field {
	return NewFieldFromString(name, value, STRING_FIELD_TYPE)
}

// document/TextField.java

/* indexed, tokenized. */
var TEXT_FIELD_TYPE = func() *FieldType {
	ft := NewFieldType()
	ft.indexed = true
	ft.tokenized = true
	ft.frozen = true
	return ft
}()

/* indexed, tokenized, with term vectors including positions and offsets. */
var TEXT_FIELD_TYPE_WITH_VECTORS = func() *FieldType {
	ft := NewFieldTypeFrom(TEXT_FIELD_TYPE)
	ft.storeTermVectors = true
	ft.storeTermVectorPositions = true
	ft.storeTermVectorOffsets = true
	ft.frozen = true
	return ft
}()

/*
A field that is indexed and tokenized, without term vectors. For
example, this would be used on a 'body' field, that contains the bulk
of a document's text.
*/
func NewTextField(name, value string) *Field {
	return NewFieldFromString(name, value, TEXT_FIELD_TYPE)
}

/* Creates a new TextField with Reader value */
func NewTextFieldFromReader(name string, reader io.RuneReader) *Field {
	return NewFieldFromReader(name, reader, TEXT_FIELD_TYPE)
}
