package courseform_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	courseform "github.com/goliatone/go-courseform"
	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/vanilla"
)

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.ReadFile(courseform.EmbeddedTemplates(), "page.html"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
	css, err := fs.ReadFile(courseform.AssetsFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	if len(css) == 0 {
		t.Fatal("stylesheet is empty")
	}
}

func TestNewRegistry(t *testing.T) {
	registry, err := courseform.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"tui", "vanilla"}, registry.List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	f := form.New()
	f.SetStructured("faq", `[{"question":"Why?","answer":"Because"}]`)

	html, err := courseform.RenderHTML(context.Background(), f, courseform.RenderOptions{})
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if !strings.Contains(string(html), `data-editor="faq"`) {
		t.Fatalf("expected faq section in html:\n%s", html)
	}

	text, err := courseform.Render(context.Background(), f, "tui", courseform.RenderOptions{})
	if err != nil {
		t.Fatalf("render text: %v", err)
	}
	if !strings.Contains(string(text), "Question: Why?") {
		t.Fatalf("expected faq in summary:\n%s", text)
	}

	if _, err := courseform.Render(context.Background(), f, "pdf", courseform.RenderOptions{}); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestLoadShapes(t *testing.T) {
	builtin, err := courseform.LoadShapes("")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	faq, ok := builtin.Get("faq")
	if !ok {
		t.Fatal("expected builtin faq shape")
	}

	dir := t.TempDir()
	doc := "shapes:\n  faq:\n    label: Questions\n    itemLabel: Q\n    addLabel: Add\n    attributes:\n      - name: question\n        label: Question\n        kind: text\n"
	if err := os.WriteFile(filepath.Join(dir, "faq.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write shape: %v", err)
	}
	merged, err := courseform.LoadShapes(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	override, _ := merged.Get("faq")
	if override.Label != "Questions" || faq.Label == override.Label {
		t.Fatalf("expected override label, got %q (builtin %q)", override.Label, faq.Label)
	}
	if _, ok := merged.Get("benefits"); !ok {
		t.Fatal("builtin shapes should survive the merge")
	}
}
