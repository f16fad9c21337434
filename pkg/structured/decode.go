package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmpty reports blank field content.
	ErrEmpty = errors.New("structured: empty input")
	// ErrNotList reports content that decodes to something other than a sequence.
	ErrNotList = errors.New("structured: not a sequence")
	// ErrNotRecord reports a sequence item that is not a mapping.
	ErrNotRecord = errors.New("structured: not a mapping")
	// ErrNotObject reports content that decodes to something other than a mapping.
	ErrNotObject = errors.New("structured: not an object")

	errInvalid = errors.New("invalid structured data")
)

// DecodeError describes field content that could not be decoded. Offset is
// the byte position reported by the decoder, zero when unknown.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "structured: decode error"
	}
	if e.Offset > 0 {
		return fmt.Sprintf("structured: decode at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("structured: decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Valid reports whether text holds exactly one well-formed value.
func Valid(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return gjson.Valid(trimmed)
}

// Decode parses text into maps, slices and scalars. Numbers are kept as
// json.Number so their textual form survives a round trip.
func Decode(text string) (any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &DecodeError{Err: ErrEmpty}
	}

	value, err := decodeJSON(trimmed)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// DecodeList parses text as an ordered sequence of mappings.
func DecodeList(text string) ([]map[string]any, error) {
	if trimmed := strings.TrimSpace(text); trimmed != "" && gjson.Valid(trimmed) {
		if parsed := gjson.Parse(trimmed); !parsed.IsArray() {
			return nil, &DecodeError{Err: fmt.Errorf("%w: got %s", ErrNotList, resultKind(parsed))}
		}
	}

	value, err := Decode(text)
	if err != nil {
		return nil, err
	}

	items, ok := value.([]any)
	if !ok {
		return nil, &DecodeError{Err: fmt.Errorf("%w: got %s", ErrNotList, kindOf(value))}
	}

	out := make([]map[string]any, 0, len(items))
	for idx, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, &DecodeError{Err: fmt.Errorf("%w: item %d is %s", ErrNotRecord, idx, kindOf(item))}
		}
		out = append(out, record)
	}
	return out, nil
}

// DecodeObject parses text as a single mapping.
func DecodeObject(text string) (map[string]any, error) {
	value, err := Decode(text)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &DecodeError{Err: fmt.Errorf("%w: got %s", ErrNotObject, kindOf(value))}
	}
	return obj, nil
}

func decodeJSON(text string) (any, error) {
	if !gjson.Valid(text) {
		// gjson only answers yes/no; run the full decoder for a positioned error.
		if _, err := decodeStrict(text); err != nil {
			return nil, err
		}
		return nil, &DecodeError{Err: errInvalid}
	}
	return decodeStrict(text)
}

func decodeStrict(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, wrapDecodeError(err, dec.InputOffset())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Offset: dec.InputOffset(), Err: errors.New("trailing data after value")}
	}
	return out, nil
}

func wrapDecodeError(err error, fallback int64) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DecodeError{Offset: syntaxErr.Offset, Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecodeError{Offset: fallback, Err: io.ErrUnexpectedEOF}
	}
	return &DecodeError{Offset: fallback, Err: err}
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func resultKind(result gjson.Result) string {
	switch {
	case result.IsObject():
		return "object"
	case result.IsArray():
		return "array"
	}
	switch result.Type {
	case gjson.Null:
		return "null"
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	default:
		return "value"
	}
}
