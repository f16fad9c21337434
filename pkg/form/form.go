// Package form models the surrounding edit form: an ordered set of named
// text fields, some of them marked as carrying structured data. Editors
// bind to one field each and use it as write-through storage.
package form

import (
	"net/url"
	"sort"
	"strings"
)

// BoundField is the serialization target of an editor.
type BoundField interface {
	Name() string
	Value() string
	SetValue(string)
}

// Field is a single named text value.
type Field struct {
	name       string
	value      string
	structured bool
}

var _ BoundField = (*Field)(nil)

func (f *Field) Name() string {
	return f.name
}

func (f *Field) Value() string {
	return f.value
}

func (f *Field) SetValue(value string) {
	f.value = value
}

// Structured reports whether the field holds structured data and should be
// run through the formatter.
func (f *Field) Structured() bool {
	return f.structured
}

// Form keeps fields in insertion order.
type Form struct {
	fields []*Field
	index  map[string]*Field
}

// New returns an empty form.
func New() *Form {
	return &Form{index: make(map[string]*Field)}
}

// FromValues builds a form from submitted values. Names listed in structured
// are marked as structured fields; the first value of each key is used.
func FromValues(values url.Values, structured ...string) *Form {
	marked := make(map[string]struct{}, len(structured))
	for _, name := range structured {
		marked[strings.TrimSpace(name)] = struct{}{}
	}

	f := New()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		field := f.Set(key, values.Get(key))
		if _, ok := marked[field.name]; ok {
			field.structured = true
		}
	}
	return f
}

// Set adds a plain field or updates the value of an existing one.
func (f *Form) Set(name, value string) *Field {
	name = strings.TrimSpace(name)
	if existing, ok := f.index[name]; ok {
		existing.value = value
		return existing
	}
	field := &Field{name: name, value: value}
	f.fields = append(f.fields, field)
	f.index[name] = field
	return field
}

// SetStructured adds or updates a field and marks it as structured.
func (f *Form) SetStructured(name, value string) *Field {
	field := f.Set(name, value)
	field.structured = true
	return field
}

// Field returns the field called name.
func (f *Form) Field(name string) (*Field, bool) {
	if f == nil {
		return nil, false
	}
	field, ok := f.index[strings.TrimSpace(name)]
	return field, ok
}

// Lookup returns the first field present among names.
func (f *Form) Lookup(names ...string) (*Field, bool) {
	for _, name := range names {
		if field, ok := f.Field(name); ok {
			return field, true
		}
	}
	return nil, false
}

// Fields returns every field in insertion order.
func (f *Form) Fields() []*Field {
	if f == nil {
		return nil
	}
	return append([]*Field(nil), f.fields...)
}

// StructuredFields returns the fields marked as structured, in order.
func (f *Form) StructuredFields() []*Field {
	if f == nil {
		return nil
	}
	var out []*Field
	for _, field := range f.fields {
		if field.structured {
			out = append(out, field)
		}
	}
	return out
}

// Values exports the form as submitted values.
func (f *Form) Values() url.Values {
	out := url.Values{}
	if f == nil {
		return out
	}
	for _, field := range f.fields {
		out.Set(field.name, field.value)
	}
	return out
}

// Map exports the form as a name to value map.
func (f *Form) Map() map[string]string {
	if f == nil {
		return nil
	}
	out := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		out[field.name] = field.value
	}
	return out
}
