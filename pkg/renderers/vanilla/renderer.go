// Package vanilla renders an editing page as server-side HTML from embedded
// pongo2 templates. Every interactive element carries data attributes
// describing the event it fires (data-editor, data-action, data-record-id,
// data-index, data-attr, data-column) plus the full event as JSON in
// data-event, so a small host script can post events back without knowing
// the page layout.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-courseform/pkg/render"
	rendertemplate "github.com/goliatone/go-courseform/pkg/render/template"
	"github.com/goliatone/go-courseform/pkg/render/template/pongo"
	"github.com/goliatone/go-courseform/pkg/view"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       *string
}

// WithTemplatesFS supplies an alternate template bundle. It must provide
// page.html and the partials it includes.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet replaces the inline stylesheet. An empty string disables it.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = &css
	}
}

// Renderer is the HTML renderer.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithName("vanilla"),
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	stylesheet := defaultStylesheet()
	if cfg.stylesheet != nil {
		stylesheet = *cfg.stylesheet
	}
	return &Renderer{templates: templates, stylesheet: stylesheet}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML fragment for page.
func (r *Renderer) Render(ctx context.Context, page view.Page, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	page = clonePage(page)
	render.ApplySubset(&page, opts.Editors)
	render.LocalizePage(&page, opts)

	data := buildPage(page, opts)
	data.Stylesheet = r.stylesheet

	result, err := r.templates.RenderTemplate("page", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// clonePage copies the slices that subset filtering and localisation
// rewrite, leaving the caller's page untouched.
func clonePage(page view.Page) view.Page {
	out := page
	out.Sections = make([]view.Section, len(page.Sections))
	for idx, section := range page.Sections {
		s := section
		s.Actions = append([]view.Button(nil), section.Actions...)
		s.Blocks = make([]view.Block, len(section.Blocks))
		for bi, block := range section.Blocks {
			b := block
			b.Controls = append([]view.Control(nil), block.Controls...)
			s.Blocks[bi] = b
		}
		if section.Table != nil {
			table := &view.Table{
				Columns: append([]view.Column(nil), section.Table.Columns...),
				Rows:    append([]view.Row(nil), section.Table.Rows...),
			}
			s.Table = table
		}
		out.Sections[idx] = s
	}
	out.Fields = append([]view.Field(nil), page.Fields...)
	return out
}
