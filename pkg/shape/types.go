package shape

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind selects how an attribute is edited and coerced.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindURL      Kind = "url"
	KindImage    Kind = "image"
	KindRating   Kind = "rating"
)

const (
	RatingMin = 1
	RatingMax = 5
)

// ErrInvalidValue is returned when raw input cannot be coerced for an attribute.
var ErrInvalidValue = errors.New("shape: invalid value")

// Attribute is one named member of a record.
type Attribute struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label,omitempty" yaml:"label"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	Default     any    `json:"default,omitempty" yaml:"default"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder"`
}

// Shape is the ordered attribute list shared by every record of one editor.
type Shape struct {
	Name       string      `json:"name" yaml:"-"`
	Label      string      `json:"label,omitempty" yaml:"label"`
	ItemLabel  string      `json:"itemLabel,omitempty" yaml:"itemLabel"`
	AddLabel   string      `json:"addLabel,omitempty" yaml:"addLabel"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
}

// Attribute looks up an attribute by name.
func (s Shape) Attribute(name string) (Attribute, bool) {
	for _, attr := range s.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Names lists attribute names in declaration order.
func (s Shape) Names() []string {
	out := make([]string, 0, len(s.Attributes))
	for _, attr := range s.Attributes {
		out = append(out, attr.Name)
	}
	return out
}

// Defaults returns a fresh value map for a newly added record.
func (s Shape) Defaults() map[string]any {
	out := make(map[string]any, len(s.Attributes))
	for _, attr := range s.Attributes {
		out[attr.Name] = attr.defaultValue()
	}
	return out
}

// Coerce converts raw control input into the stored value for attribute name.
// Ratings are parsed as integers and clamped to [RatingMin, RatingMax];
// input with no leading number is rejected with ErrInvalidValue.
func (s Shape) Coerce(name, raw string) (any, error) {
	attr, ok := s.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown attribute %q in shape %q", ErrInvalidValue, name, s.Name)
	}
	return attr.Coerce(raw)
}

// Coerce converts raw control input for this attribute.
func (a Attribute) Coerce(raw string) (any, error) {
	if a.Kind != KindRating {
		return raw, nil
	}
	rating, err := parseRating(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, a.Name, raw, err)
	}
	return rating, nil
}

// Normalize maps a decoded stored value onto the attribute's kind for
// display. Stored ratings arrive as numbers or numeric strings; anything else
// is returned as is.
func (a Attribute) Normalize(value any) any {
	if a.Kind != KindRating {
		return value
	}
	switch v := value.(type) {
	case string:
		if rating, err := parseRating(v); err == nil {
			return rating
		}
	case fmt.Stringer:
		if rating, err := parseRating(v.String()); err == nil {
			return rating
		}
	case float64:
		return ClampRating(int(v))
	case int:
		return ClampRating(v)
	}
	return value
}

// ClampRating pins value into [RatingMin, RatingMax].
func ClampRating(value int) int {
	if value < RatingMin {
		return RatingMin
	}
	if value > RatingMax {
		return RatingMax
	}
	return value
}

func parseRating(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, errors.New("empty rating")
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return ClampRating(n), nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a number")
	}
	return ClampRating(int(math.Trunc(f))), nil
}

func (a Attribute) defaultValue() any {
	switch a.Kind {
	case KindRating:
		if a.Default == nil {
			return RatingMax
		}
		return a.Normalize(a.Default)
	default:
		if a.Default == nil {
			return ""
		}
		if s, ok := a.Default.(string); ok {
			return s
		}
		return fmt.Sprint(a.Default)
	}
}

func validKind(kind Kind) bool {
	switch kind {
	case KindText, KindTextArea, KindURL, KindImage, KindRating:
		return true
	default:
		return false
	}
}
