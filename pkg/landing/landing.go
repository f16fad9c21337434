// Package landing decodes the stored content columns of a product into the
// typed values a landing page template consumes. Decoding is lenient: a
// column that is empty or malformed yields an empty value and a warning.
package landing

import (
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/shape"
	"github.com/goliatone/go-courseform/pkg/structured"
)

type Benefit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Testimonial struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
	Image   string `json:"image"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type BeforeAfter struct {
	Title  string `json:"title"`
	Before string `json:"before"`
	After  string `json:"after"`
	Image  string `json:"image"`
}

// ComparisonRow is one feature line. Values has one entry per competitor;
// cells missing from storage are filled with the row's zero value.
type ComparisonRow struct {
	Name     string `json:"name"`
	OurValue bool   `json:"our_value"`
	Text     bool   `json:"text"`
	Values   []any  `json:"values"`
}

type Comparison struct {
	Competitors []string        `json:"competitors"`
	Rows        []ComparisonRow `json:"rows"`
}

// Content is everything the landing page renders from structured columns.
// Specs and PricingTiers are free-form and passed through decoded.
type Content struct {
	Benefits     []Benefit      `json:"benefits"`
	FAQ          []FAQItem      `json:"faq"`
	Testimonials []Testimonial  `json:"testimonials"`
	Features     []Feature      `json:"features"`
	Gallery      []GalleryImage `json:"gallery_images"`
	BeforeAfter  []BeforeAfter  `json:"before_after"`
	Comparison   Comparison     `json:"product_comparison"`
	Specs        any            `json:"technical_specs,omitempty"`
	PricingTiers any            `json:"pricing_tiers,omitempty"`
}

type decoder struct {
	form   *form.Form
	logger *zap.Logger
}

// FromForm decodes every known column present in f.
func FromForm(f *form.Form, logger *zap.Logger) Content {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := decoder{form: f, logger: logger}

	var c Content
	for _, item := range d.list("benefits", "benefits_list") {
		c.Benefits = append(c.Benefits, Benefit{
			Title:       text(item["title"]),
			Description: text(item["description"]),
		})
	}
	for _, item := range d.list("faq", "faq_items") {
		c.FAQ = append(c.FAQ, FAQItem{
			Question: text(item["question"]),
			Answer:   text(item["answer"]),
		})
	}
	for _, item := range d.list("testimonials") {
		c.Testimonials = append(c.Testimonials, Testimonial{
			Name:    text(item["name"]),
			Title:   text(item["title"]),
			Content: text(item["content"]),
			Rating:  rating(item["rating"]),
			Image:   text(item["image"]),
		})
	}
	for _, item := range d.list("features") {
		icon := text(item["icon"])
		if icon == "" {
			icon = "check"
		}
		c.Features = append(c.Features, Feature{
			Title:       text(item["title"]),
			Description: text(item["description"]),
			Icon:        icon,
		})
	}
	for _, item := range d.list("gallery_images") {
		c.Gallery = append(c.Gallery, GalleryImage{
			URL:     text(item["url"]),
			Caption: text(item["caption"]),
		})
	}
	for _, item := range d.list("before_after") {
		c.BeforeAfter = append(c.BeforeAfter, BeforeAfter{
			Title:  text(item["title"]),
			Before: text(item["before"]),
			After:  text(item["after"]),
			Image:  text(item["image"]),
		})
	}
	c.Comparison = d.comparison("product_comparison")
	c.Specs = d.value("technical_specs")
	c.PricingTiers = d.value("pricing_tiers")
	return c
}

func (d decoder) field(names ...string) (*form.Field, bool) {
	field, ok := d.form.Lookup(names...)
	if !ok || field.Value() == "" {
		return nil, false
	}
	return field, true
}

func (d decoder) warn(field *form.Field, err error) {
	if errors.Is(err, structured.ErrEmpty) {
		return
	}
	d.logger.Warn("landing: column ignored",
		zap.String("field", field.Name()),
		zap.Error(err),
	)
}

func (d decoder) list(names ...string) []map[string]any {
	field, ok := d.field(names...)
	if !ok {
		return nil
	}
	items, err := structured.DecodeList(field.Value())
	if err != nil {
		d.warn(field, err)
		return nil
	}
	return items
}

func (d decoder) value(name string) any {
	field, ok := d.field(name)
	if !ok {
		return nil
	}
	value, err := structured.Decode(field.Value())
	if err != nil {
		d.warn(field, err)
		return nil
	}
	return value
}

func (d decoder) comparison(name string) Comparison {
	field, ok := d.field(name)
	if !ok {
		return Comparison{}
	}
	obj, err := structured.DecodeObject(field.Value())
	if err != nil {
		d.warn(field, err)
		return Comparison{}
	}

	var out Comparison
	competitors, _ := obj["competitors"].([]any)
	for _, raw := range competitors {
		entry, _ := raw.(map[string]any)
		out.Competitors = append(out.Competitors, text(entry["name"]))
	}

	features, _ := obj["features"].([]any)
	for _, raw := range features {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		values, _ := entry["competitor_values"].([]any)
		row := ComparisonRow{
			Name:     text(entry["name"]),
			OurValue: truthy(entry["our_value"]),
			Text:     isText(entry, values),
		}
		row.Values = make([]any, len(out.Competitors))
		for idx := range row.Values {
			var cell any
			if idx < len(values) {
				cell = values[idx]
			}
			if row.Text {
				row.Values[idx] = text(cell)
			} else {
				row.Values[idx] = truthy(cell)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func isText(entry map[string]any, values []any) bool {
	if tag, ok := entry["cell_type"].(string); ok {
		return tag == "text"
	}
	for _, value := range values {
		if value == nil {
			continue
		}
		_, ok := value.(string)
		return ok
	}
	return false
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

func rating(value any) int {
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return shape.ClampRating(int(f))
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return shape.ClampRating(n)
		}
	}
	return shape.RatingMax
}
