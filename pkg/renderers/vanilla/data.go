package vanilla

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/structured"
	"github.com/goliatone/go-courseform/pkg/view"
)

// Template-facing copies of the view model. Values are pre-stringified and
// errors pre-resolved so templates never compare or index dynamically.

type pageData struct {
	Title      string        `json:"title"`
	Action     string        `json:"action"`
	Method     string        `json:"method"`
	Stylesheet string        `json:"stylesheet,omitempty"`
	Hidden     []hiddenData  `json:"hidden"`
	Sections   []sectionData `json:"sections"`
	Fields     []fieldData   `json:"fields"`
	FormErrors []string      `json:"form_errors"`
}

type hiddenData struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sectionData struct {
	Editor  string       `json:"editor"`
	Kind    string       `json:"kind"`
	Label   string       `json:"label"`
	Field   string       `json:"field"`
	Empty   bool         `json:"empty"`
	Errors  []string     `json:"errors"`
	Blocks  []blockData  `json:"blocks"`
	Table   *tableData   `json:"table"`
	Actions []buttonData `json:"actions"`
}

type blockData struct {
	ID       string        `json:"id"`
	Index    string        `json:"index"`
	Title    string        `json:"title"`
	Summary  string        `json:"summary"`
	Errors   []string      `json:"errors"`
	Controls []controlData `json:"controls"`
	Delete   buttonData    `json:"delete"`
}

type controlData struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Kind        string       `json:"kind"`
	Value       string       `json:"value"`
	Checked     bool         `json:"checked"`
	Placeholder string       `json:"placeholder"`
	Options     []optionData `json:"options"`
	Preview     string       `json:"preview"`
	Icon        string       `json:"icon"`
	Errors      []string     `json:"errors"`
	Event       view.Event   `json:"event"`
}

type optionData struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type buttonData struct {
	Label string     `json:"label"`
	Event view.Event `json:"event"`
}

type tableData struct {
	Columns []columnData `json:"columns"`
	Rows    []rowData    `json:"rows"`
}

type columnData struct {
	ID     string      `json:"id"`
	Index  string      `json:"index"`
	Name   controlData `json:"name"`
	Delete buttonData  `json:"delete"`
}

type rowData struct {
	ID       string        `json:"id"`
	Index    string        `json:"index"`
	Errors   []string      `json:"errors"`
	Name     controlData   `json:"name"`
	OurValue controlData   `json:"our_value"`
	CellKind controlData   `json:"cell_kind"`
	Cells    []controlData `json:"cells"`
	Delete   buttonData    `json:"delete"`
}

type fieldData struct {
	Name   string     `json:"name"`
	Value  string     `json:"value"`
	Valid  bool       `json:"valid"`
	Errors []string   `json:"errors"`
	Blur   view.Event `json:"blur"`
}

func buildPage(page view.Page, opts render.RenderOptions) pageData {
	mapping := render.MapErrorPayload(page, opts.Errors)
	errs := mapping.Fields

	hidden := render.MergeHiddenFields(opts.Hidden)
	data := pageData{
		Title:      page.Title,
		Action:     opts.Action,
		Method:     opts.MethodOrDefault(),
		FormErrors: render.MergeFormErrors(opts.FormErrors, mapping.Form...),
	}
	for _, field := range render.SortedHiddenFields(hidden) {
		data.Hidden = append(data.Hidden, hiddenData{Name: field.Name, Value: field.Value})
	}
	for _, field := range render.BoundFields(page) {
		data.Hidden = append(data.Hidden, hiddenData{Name: field.Name, Value: field.Value})
	}

	for _, section := range page.Sections {
		data.Sections = append(data.Sections, buildSection(section, errs))
	}
	for _, field := range page.Fields {
		data.Fields = append(data.Fields, fieldData{
			Name:   field.Name,
			Value:  field.Value,
			Valid:  strings.TrimSpace(field.Value) == "" || structured.Valid(field.Value),
			Errors: errs[field.Name],
			Blur:   field.Blur,
		})
	}
	return data
}

func buildSection(section view.Section, errs map[string][]string) sectionData {
	out := sectionData{
		Editor: section.Editor,
		Kind:   string(section.Kind),
		Label:  section.Label,
		Field:  section.Field,
		Empty:  section.Empty(),
		Errors: append(append([]string(nil), errs[section.Editor]...), fieldErrors(section, errs)...),
	}
	for _, action := range section.Actions {
		out.Actions = append(out.Actions, buttonData(action))
	}

	for _, block := range section.Blocks {
		path := section.Editor + "." + strconv.Itoa(block.Index)
		b := blockData{
			ID:     block.ID,
			Index:  strconv.Itoa(block.Index),
			Title:  block.Title,
			Errors: errs[path],
			Delete: buttonData(block.Delete),
		}
		for _, control := range block.Controls {
			c := buildControl(section.Editor+"-"+block.ID, control)
			c.Errors = errs[path+"."+control.Name]
			if b.Summary == "" && (control.Kind == view.ControlText || control.Kind == view.ControlTextArea) {
				b.Summary = previewText(c.Value)
			}
			b.Controls = append(b.Controls, c)
		}
		out.Blocks = append(out.Blocks, b)
	}

	if section.Table != nil {
		table := &tableData{}
		for _, column := range section.Table.Columns {
			table.Columns = append(table.Columns, columnData{
				ID:     column.ID,
				Index:  strconv.Itoa(column.Index),
				Name:   buildControl(section.Editor+"-"+column.ID, column.Name),
				Delete: buttonData(column.Delete),
			})
		}
		for _, row := range section.Table.Rows {
			prefix := section.Editor + "-" + row.ID
			r := rowData{
				ID:       row.ID,
				Index:    strconv.Itoa(row.Index),
				Errors:   errs[section.Editor+"."+strconv.Itoa(row.Index)],
				Name:     buildControl(prefix, row.Name),
				OurValue: buildControl(prefix, row.OurValue),
				CellKind: buildControl(prefix, row.CellKind),
				Delete:   buttonData(row.Delete),
			}
			for _, cell := range row.Cells {
				r.Cells = append(r.Cells, buildControl(prefix+"-"+cell.Column, cell.Control))
			}
			table.Rows = append(table.Rows, r)
		}
		out.Table = table
	}
	return out
}

func fieldErrors(section view.Section, errs map[string][]string) []string {
	if section.Field == "" || section.Field == section.Editor {
		return nil
	}
	return errs[section.Field]
}

func buildControl(prefix string, control view.Control) controlData {
	out := controlData{
		ID:          "cf-" + prefix + "-" + control.Name,
		Name:        control.Name,
		Label:       control.Label,
		Kind:        string(control.Kind),
		Value:       valueString(control.Value),
		Placeholder: control.Placeholder,
		Event:       control.Event,
	}

	switch control.Kind {
	case view.ControlCheckbox:
		out.Checked = checked(control.Value)
	case view.ControlRating:
		for n := 1; n <= 5; n++ {
			v := strconv.Itoa(n)
			out.Options = append(out.Options, optionData{
				Value:    v,
				Label:    strings.Repeat("★", n),
				Selected: v == out.Value,
			})
		}
	case view.ControlSelect:
		for _, option := range control.Options {
			out.Options = append(out.Options, optionData{
				Value:    option,
				Label:    option,
				Selected: option == out.Value,
			})
		}
	case view.ControlImage:
		out.Preview = previewImage(out.Value)
	}
	if control.Name == "icon" {
		out.Icon = previewIcon(out.Value)
	}
	return out
}

func valueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func checked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}
