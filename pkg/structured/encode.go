package structured

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const indentUnit = "  "

// Compact encodes value in the single-line form written to bound fields.
// HTML-sensitive characters are left as typed.
func Compact(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("structured: encode: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Format decodes text and re-encodes it in the canonical layout: keys
// sorted, two-space indentation, one member per line, empty containers kept
// inline. Formatting already formatted text returns it unchanged.
func Format(text string) (string, error) {
	value, err := Decode(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := encodeStable(&buf, value, 0); err != nil {
		return "", fmt.Errorf("structured: format: %w", err)
	}
	return buf.String(), nil
}

func encodeStable(buf *bytes.Buffer, value any, depth int) error {
	switch typed := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		if len(keys) > 0 {
			buf.WriteByte('\n')
			indent := strings.Repeat(indentUnit, depth+1)
			for idx, key := range keys {
				buf.WriteString(indent)
				if err := encodeScalar(buf, key); err != nil {
					return err
				}
				buf.WriteString(": ")
				if err := encodeStable(buf, typed[key], depth+1); err != nil {
					return err
				}
				if idx < len(keys)-1 {
					buf.WriteByte(',')
				}
				buf.WriteByte('\n')
			}
			buf.WriteString(strings.Repeat(indentUnit, depth))
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		if len(typed) > 0 {
			buf.WriteByte('\n')
			indent := strings.Repeat(indentUnit, depth+1)
			for idx, item := range typed {
				buf.WriteString(indent)
				if err := encodeStable(buf, item, depth+1); err != nil {
					return err
				}
				if idx < len(typed)-1 {
					buf.WriteByte(',')
				}
				buf.WriteByte('\n')
			}
			buf.WriteString(strings.Repeat(indentUnit, depth))
		}
		buf.WriteByte(']')
		return nil
	case nil:
		buf.WriteString("null")
		return nil
	case json.Number:
		buf.WriteString(typed.String())
		return nil
	default:
		return encodeScalar(buf, typed)
	}
}

func encodeScalar(buf *bytes.Buffer, value any) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
	return nil
}
