package matrix

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CellKind is the value type shared by every cell of a feature row.
type CellKind string

const (
	CellBoolean CellKind = "boolean"
	CellText    CellKind = "text"
)

const (
	keyCompetitors      = "competitors"
	keyFeatures         = "features"
	keyName             = "name"
	keyOurValue         = "our_value"
	keyCompetitorValues = "competitor_values"
	keyCellType         = "cell_type"
)

var (
	// ErrUnknownCompetitor is returned when a competitor ID does not resolve.
	ErrUnknownCompetitor = errors.New("matrix: unknown competitor")
	// ErrUnknownFeature is returned when a feature ID does not resolve.
	ErrUnknownFeature = errors.New("matrix: unknown feature")
	// ErrIndexOutOfRange is returned by positional operations past the end.
	ErrIndexOutOfRange = errors.New("matrix: index out of range")
	// ErrInvalidCell is returned when input cannot be stored in a cell.
	ErrInvalidCell = errors.New("matrix: invalid cell value")
	// ErrInvalidKind is returned for cell kinds other than boolean and text.
	ErrInvalidKind = errors.New("matrix: invalid cell kind")
	// ErrNoField is returned when an editor is constructed without a bound field.
	ErrNoField = errors.New("matrix: bound field is required")
)

// ParseCellKind validates a cell kind name.
func ParseCellKind(raw string) (CellKind, error) {
	switch CellKind(strings.ToLower(strings.TrimSpace(raw))) {
	case CellBoolean:
		return CellBoolean, nil
	case CellText:
		return CellText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
	}
}

// Competitor is one comparison column.
type Competitor struct {
	ID    string
	Name  string
	Extra map[string]any
}

// Feature is one comparison row. Values is aligned with the competitor list
// and may be shorter than it.
type Feature struct {
	ID       string
	Name     string
	OurValue bool
	Kind     CellKind
	Values   []any
	Extra    map[string]any
}

// Cell returns the value at column as stored, or the kind's zero value when
// the row is shorter than column or the cell is null.
func (f Feature) Cell(column int) any {
	if column >= 0 && column < len(f.Values) && f.Values[column] != nil {
		return f.Values[column]
	}
	return zeroValue(f.Kind)
}

// display returns the cell at column in the form its control shows. Stored
// values are left untouched.
func (f Feature) display(column int) any {
	value := f.Cell(column)
	if f.Kind == CellText {
		return stringValue(value)
	}
	flag, _ := parseFlag(value)
	return flag
}

// Model is a snapshot of the comparison state.
type Model struct {
	Competitors []Competitor
	Features    []Feature
}

func (c Competitor) clone() Competitor {
	c.Extra = cloneMap(c.Extra)
	return c
}

func (f Feature) clone() Feature {
	f.Values = append([]any(nil), f.Values...)
	f.Extra = cloneMap(f.Extra)
	return f
}

func (c Competitor) encode() map[string]any {
	out := cloneMap(c.Extra)
	if out == nil {
		out = make(map[string]any, 1)
	}
	out[keyName] = c.Name
	return out
}

func (f Feature) encode() map[string]any {
	out := cloneMap(f.Extra)
	if out == nil {
		out = make(map[string]any, 4)
	}
	values := make([]any, len(f.Values))
	copy(values, f.Values)
	out[keyName] = f.Name
	out[keyOurValue] = f.OurValue
	out[keyCompetitorValues] = values
	out[keyCellType] = string(f.Kind)
	return out
}

func decodeCompetitor(raw any) (Competitor, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Competitor{}, fmt.Errorf("competitor is %T, want object", raw)
	}
	c := Competitor{Name: stringValue(obj[keyName])}
	c.Extra = without(obj, keyName)
	return c, nil
}

func decodeFeature(raw any) (Feature, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Feature{}, fmt.Errorf("feature is %T, want object", raw)
	}

	f := Feature{Name: stringValue(obj[keyName])}
	our, _ := parseFlag(obj[keyOurValue])
	f.OurValue = our

	var values []any
	switch typed := obj[keyCompetitorValues].(type) {
	case nil:
	case []any:
		values = typed
	default:
		return Feature{}, fmt.Errorf("feature %q competitor_values is %T, want array", f.Name, typed)
	}

	if tag, ok := obj[keyCellType].(string); ok {
		kind, err := ParseCellKind(tag)
		if err != nil {
			return Feature{}, err
		}
		f.Kind = kind
	} else {
		f.Kind = inferKind(values)
	}

	if values != nil {
		f.Values = append(make([]any, 0, len(values)), values...)
	}
	f.Extra = without(obj, keyName, keyOurValue, keyCompetitorValues, keyCellType)
	return f, nil
}

// inferKind classifies legacy rows without a cell_type tag. A row is boolean
// only when every non-null value is a bool.
func inferKind(values []any) CellKind {
	for _, value := range values {
		if value == nil {
			continue
		}
		if _, ok := value.(bool); !ok {
			return CellText
		}
	}
	return CellBoolean
}

func coerceInput(kind CellKind, raw string) (any, error) {
	if kind == CellText {
		return raw, nil
	}
	flag, ok := parseFlag(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidCell, raw)
	}
	return flag, nil
}

// convertCell rewrites a stored cell for a new kind. It only runs when the
// operator switches a row's kind.
func convertCell(kind CellKind, value any) any {
	if kind == CellText {
		switch v := value.(type) {
		case nil:
			return ""
		case bool:
			return strconv.FormatBool(v)
		default:
			return stringValue(v)
		}
	}
	flag, _ := parseFlag(value)
	return flag
}

func zeroValue(kind CellKind) any {
	if kind == CellText {
		return ""
	}
	return false
}

// parseFlag reads checkbox-style values. The second result is false when
// value does not look like a boolean; the flag is then false.
func parseFlag(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, true
	case bool:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0, err == nil
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "on", "yes", "checked", "y":
			return true, true
		case "false", "0", "off", "no", "", "n":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func without(obj map[string]any, keys ...string) map[string]any {
	var out map[string]any
	for key, value := range obj {
		skip := false
		for _, k := range keys {
			if key == k {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[key] = value
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
