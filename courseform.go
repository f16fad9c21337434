// Package courseform wires the editing pieces together for hosts that want
// a single entry point: build a session over a form, then render it.
package courseform

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/tui"
	"github.com/goliatone/go-courseform/pkg/renderers/vanilla"
	"github.com/goliatone/go-courseform/pkg/session"
	"github.com/goliatone/go-courseform/pkg/shape"
)

// RenderOptions aliases render.RenderOptions for callers of the root package.
type RenderOptions = render.RenderOptions

// DefaultRenderer is used when no renderer name is given.
const DefaultRenderer = "vanilla"

// NewRegistry returns a registry holding the HTML and text renderers.
func NewRegistry(options ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(html, tui.NewRenderer())
}

// LoadShapes returns the built-in shapes with any shape documents found in
// dir layered on top. An empty dir yields the built-ins.
func LoadShapes(dir string) (*shape.Registry, error) {
	builtin := shape.Builtin()
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return builtin, nil
	}
	overrides, err := shape.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("courseform: load shapes from %s: %w", dir, err)
	}
	return builtin.Merge(overrides), nil
}

// Render builds an editing session over f and renders it with the named
// renderer. The form's structured fields are formatted as a side effect.
func Render(ctx context.Context, f *form.Form, rendererName string, opts RenderOptions, sessionOptions ...session.Option) ([]byte, error) {
	if rendererName == "" {
		rendererName = DefaultRenderer
	}
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Get(rendererName)
	if err != nil {
		return nil, err
	}
	s, err := session.New(f, sessionOptions...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, s.View(), opts)
}

// RenderHTML is Render with the HTML renderer.
func RenderHTML(ctx context.Context, f *form.Form, opts RenderOptions, sessionOptions ...session.Option) ([]byte, error) {
	return Render(ctx, f, DefaultRenderer, opts, sessionOptions...)
}
