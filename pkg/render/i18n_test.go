package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-courseform/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestLocalizePage_UsesKeysAndFallbacks(t *testing.T) {
	page := samplePage()

	render.LocalizePage(&page, render.RenderOptions{
		Locale:     "es",
		Translator: stubTranslator{
			"sections.faq.label":            "Preguntas frecuentes",
			"sections.faq.item":             "Pregunta",
			"fields.faq.answer":             "Respuesta",
			"fields.faq.answer.placeholder": "Escribe la respuesta",
			"actions.delete":                "Eliminar",
			"actions.add_competitor":        "Agregar competidor",
		},
	})

	faq := page.Sections[0]
	checks := map[string][2]string{
		"title":       {"Edit product", page.Title},
		"label":       {"Preguntas frecuentes", faq.Label},
		"block":       {"Pregunta 1", faq.Blocks[0].Title},
		"question":    {"Question", faq.Blocks[0].Controls[0].Label},
		"answer":      {"Respuesta", faq.Blocks[0].Controls[1].Label},
		"placeholder": {"Escribe la respuesta", faq.Blocks[0].Controls[1].Placeholder},
		"delete":      {"Eliminar", faq.Blocks[0].Delete.Label},
		"add":         {"Add question", faq.Actions[0].Label},
		"competitor":  {"Agregar competidor", page.Sections[1].Actions[0].Label},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Errorf("%s: want %q, got %q", name, pair[0], pair[1])
		}
	}
}

func TestLocalizePage_MissingHandler(t *testing.T) {
	page := samplePage()
	var missing []string

	render.LocalizePage(&page, render.RenderOptions{
		OnMissing: func(_ string, key string, _ []any, err error) string {
			if !errors.Is(err, render.ErrMissingTranslator) {
				t.Fatalf("expected ErrMissingTranslator, got %v", err)
			}
			missing = append(missing, key)
			return "?" + key
		},
	})

	if page.Title != "?page.title" {
		t.Fatalf("expected handler output, got %q", page.Title)
	}
	if len(missing) == 0 {
		t.Fatal("expected missing keys to be reported")
	}
}

func TestApplySubset(t *testing.T) {
	page := samplePage()
	render.ApplySubset(&page, []string{" FAQ ", "technical_specs"})

	if len(page.Sections) != 1 || page.Sections[0].Editor != "faq" {
		t.Fatalf("expected only faq section, got %+v", page.Sections)
	}
	if len(page.Fields) != 1 {
		t.Fatalf("expected technical_specs field to remain, got %+v", page.Fields)
	}

	page = samplePage()
	render.ApplySubset(&page, nil)
	if len(page.Sections) != 2 {
		t.Fatalf("empty subset should keep all sections, got %d", len(page.Sections))
	}
}
