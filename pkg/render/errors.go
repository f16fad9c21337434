package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-courseform/pkg/view"
)

// ErrorMapping splits a validation payload into field-level and form-level
// messages keyed by the dotted paths renderers look up.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload maps server error payloads onto the paths of page. Keys may
// be dotted ("faq.0.answer"), bracketed ("faq[0].answer") or slash separated
// ("/faq/0/answer"); the longest known prefix wins. Keys matching nothing
// become form-level errors so messages are not lost.
func MapErrorPayload(page view.Page, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	fieldPaths := make(map[string]struct{})
	collectFieldPaths(page, fieldPaths)

	for rawPath, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		path, ok := mapErrorPath(rawPath, fieldPaths)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func mapErrorPath(raw string, fieldPaths map[string]struct{}) (string, bool) {
	clean := strings.NewReplacer("[", ".", "]", "").Replace(raw)
	segments := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/' || r == ' '
	})
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := fieldPaths[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// collectFieldPaths registers every addressable path on the page: editor
// names, bound field names, "editor.index.attr" for record controls and
// "editor.index" for feature rows, plus the loose structured fields.
func collectFieldPaths(page view.Page, dest map[string]struct{}) {
	for _, section := range page.Sections {
		dest[section.Editor] = struct{}{}
		if section.Field != "" {
			dest[section.Field] = struct{}{}
		}
		for _, block := range section.Blocks {
			blockPath := joinPath(section.Editor, strconv.Itoa(block.Index))
			dest[blockPath] = struct{}{}
			for _, control := range block.Controls {
				dest[joinPath(blockPath, control.Name)] = struct{}{}
			}
		}
		if section.Table != nil {
			for _, row := range section.Table.Rows {
				dest[joinPath(section.Editor, strconv.Itoa(row.Index))] = struct{}{}
			}
		}
	}
	for _, field := range page.Fields {
		dest[field.Name] = struct{}{}
	}
}

func joinPath(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
