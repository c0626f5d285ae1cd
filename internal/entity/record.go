// Package entity turns a JIRA backup dump (entities.xml) into an in-memory
// relational store: one ordered collection of flat string records per entity
// type, plus keyed and filtered lookups over them.
package entity

// Record is one entity parsed from a single XML element. Every value is a
// string exactly as it appeared in the dump; type coercion is the consumer's
// job. Fields holds both XML attributes and the text content of single-text
// sub-elements (JIRA moves long values like descriptions into child elements).
type Record struct {
	Tag    string
	Fields map[string]string
}

// Field returns the named field, or "" if absent.
func (r *Record) Field(name string) string {
	return r.Fields[name]
}

// Has reports whether the named field is present, even if empty.
func (r *Record) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// ID returns the record's "id" field. Most JIRA entity types carry one;
// association tables do not.
func (r *Record) ID() string {
	return r.Fields["id"]
}
