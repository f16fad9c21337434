package session

import "github.com/goliatone/go-courseform/pkg/matrix"

// Kind selects the editor built for a binding.
type Kind string

const (
	KindRecords Kind = "records"
	KindMatrix  Kind = "matrix"
)

// Binding attaches one editor to a form field. Fields lists accepted field
// names; the first one present in the form is used. Shape names the record
// shape for KindRecords bindings and defaults to Editor.
type Binding struct {
	Editor string
	Kind   Kind
	Shape  string
	Label  string
	Fields []string
}

func (b Binding) shapeName() string {
	if b.Shape != "" {
		return b.Shape
	}
	return b.Editor
}

func (b Binding) fieldNames() []string {
	if len(b.Fields) > 0 {
		return b.Fields
	}
	return []string{b.Editor}
}

// DefaultBindings returns the editors of the product form: six record lists
// and the comparison table. Older course forms used benefits_list and
// faq_items, which are accepted as aliases.
func DefaultBindings() []Binding {
	return []Binding{
		{Editor: "benefits", Kind: KindRecords, Fields: []string{"benefits", "benefits_list"}},
		{Editor: "faq", Kind: KindRecords, Fields: []string{"faq", "faq_items"}},
		{Editor: "testimonials", Kind: KindRecords},
		{Editor: "features", Kind: KindRecords},
		{Editor: "gallery_images", Kind: KindRecords},
		{Editor: "before_after", Kind: KindRecords},
		{Editor: matrix.DefaultName, Kind: KindMatrix, Label: "Product comparison"},
	}
}

// FieldNames returns every field name the bindings may read, aliases
// included, in binding order.
func FieldNames(bindings []Binding) []string {
	var out []string
	for _, b := range bindings {
		out = append(out, b.fieldNames()...)
	}
	return out
}
