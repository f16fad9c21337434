// Package tui edits a session from the terminal. Editor walks the user
// through menus built from the session view and applies each answer as an
// event; Renderer prints the same view as a plain-text summary.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/view"
)

// Renderer prints a page as text.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer returns the text renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render applies the subset and localisation options and writes the summary.
func (r *Renderer) Render(ctx context.Context, page view.Page, opts render.RenderOptions) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	page = copyPage(page)
	render.ApplySubset(&page, opts.Editors)
	render.LocalizePage(&page, opts)

	var buf bytes.Buffer
	if err := WriteSummary(&buf, page); err != nil {
		return nil, fmt.Errorf("tui renderer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSummary prints every section of page followed by the loose fields.
func WriteSummary(w io.Writer, page view.Page) error {
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "%s\n\n", page.Title); err != nil {
			return err
		}
	}
	for _, section := range page.Sections {
		if err := writeSection(w, section); err != nil {
			return err
		}
	}
	if len(page.Fields) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "== Other fields =="); err != nil {
		return err
	}
	for _, field := range page.Fields {
		value := field.Value
		if value == "" {
			value = "(empty)"
		}
		if _, err := fmt.Fprintf(w, "  %s: %s\n", field.Name, indent(value, "    ")); err != nil {
			return err
		}
	}
	return nil
}

func writeSection(w io.Writer, section view.Section) error {
	if _, err := fmt.Fprintf(w, "== %s (%s) ==\n", section.Label, section.Field); err != nil {
		return err
	}
	if section.Empty() {
		_, err := fmt.Fprint(w, "  (empty)\n\n")
		return err
	}
	if section.Table != nil {
		if err := writeTable(w, *section.Table); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	for _, block := range section.Blocks {
		if _, err := fmt.Fprintf(w, "  %s\n", block.Title); err != nil {
			return err
		}
		for _, control := range block.Controls {
			if _, err := fmt.Fprintf(w, "    %s: %s\n", control.Label, indent(displayValue(control), "      ")); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeTable(w io.Writer, table view.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"Feature", "Ours"}
	for _, column := range table.Columns {
		header = append(header, displayValue(column.Name))
	}
	fmt.Fprintf(tw, "  %s\n", strings.Join(header, "\t"))
	for _, row := range table.Rows {
		line := []string{displayValue(row.Name), displayValue(row.OurValue)}
		for _, cell := range row.Cells {
			line = append(line, displayValue(cell.Control))
		}
		fmt.Fprintf(tw, "  %s\n", strings.Join(line, "\t"))
	}
	return tw.Flush()
}

func displayValue(control view.Control) string {
	switch v := control.Value.(type) {
	case nil:
		if control.Kind == view.ControlCheckbox {
			return "no"
		}
		return "-"
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		if v == "" {
			return "-"
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

func indent(value, prefix string) string {
	return strings.ReplaceAll(value, "\n", "\n"+prefix)
}

// copyPage duplicates the slices subset filtering and localisation rewrite.
func copyPage(page view.Page) view.Page {
	sections := make([]view.Section, len(page.Sections))
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
			s.Table = &view.Table{
				Columns: append([]view.Column(nil), section.Table.Columns...),
				Rows:    append([]view.Row(nil), section.Table.Rows...),
			}
		}
		sections[idx] = s
	}
	page.Sections = sections
	page.Fields = append([]view.Field(nil), page.Fields...)
	return page
}
