package document

import (
	"github.com/ironsweet/termshash/core/index/model"
)

// document/Document.java

/*
Documents are the unit of indexing. A Document is a set of fields.
Several fields may share a name; if they are indexed their text is
treated as though appended.
*/
type Document struct {
	fields []model.IndexableField
}

/* Constructs a new document with no fields. */
func NewDocument(fields ...model.IndexableField) *Document {
	return &Document{fields}
}

func (doc *Document) Fields() []model.IndexableField {
	return doc.fields
}

func (doc *Document) Add(field model.IndexableField) {
	doc.fields = append(doc.fields, field)
}

/* Removes all fields with the given name. */
func (doc *Document) RemoveFields(name string) {
	kept := doc.fields[:0]
	for _, f := range doc.fields {
		if f.Name() != name {
			kept = append(kept, f)
		}
	}
	doc.fields = kept
}

/* Returns the first field with the given name, or nil. */
func (doc *Document) Field(name string) model.IndexableField {
	for _, f := range doc.fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}
