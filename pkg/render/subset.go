package render

import (
	"strings"

	"github.com/goliatone/go-courseform/pkg/view"
)

// ApplySubset keeps only the sections whose editor name is listed, in page
// order. Loose structured fields are kept only when their name is listed.
// An empty list leaves the page unchanged.
func ApplySubset(page *view.Page, editors []string) {
	if page == nil {
		return
	}
	wanted := normaliseTokens(editors)
	if len(wanted) == 0 {
		return
	}

	sections := page.Sections[:0]
	for _, section := range page.Sections {
		if _, ok := wanted[normaliseToken(section.Editor)]; ok {
			sections = append(sections, section)
		}
	}
	page.Sections = sections
	if len(page.Sections) == 0 {
		page.Sections = nil
	}

	fields := page.Fields[:0]
	for _, field := range page.Fields {
		if _, ok := wanted[normaliseToken(field.Name)]; ok {
			fields = append(fields, field)
		}
	}
	page.Fields = fields
	if len(page.Fields) == 0 {
		page.Fields = nil
	}
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if token := normaliseToken(part); token != "" {
				result[token] = struct{}{}
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
