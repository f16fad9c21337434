// Package view describes what an editing page looks like as plain data.
// Editors build these values from their in-memory collections; renderers
// turn them into HTML or terminal prompts. Every interactive element carries
// the Event it fires, addressed by stable identifiers rather than positions,
// so a renderer never has to rebind handlers after a list changes.
package view

// Action names an editor operation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"

	ActionAddCompetitor    Action = "add_competitor"
	ActionAddFeature       Action = "add_feature"
	ActionDeleteCompetitor Action = "delete_competitor"
	ActionDeleteFeature    Action = "delete_feature"
	ActionRenameCompetitor Action = "rename_competitor"
	ActionRenameFeature    Action = "rename_feature"
	ActionSetOurValue      Action = "set_our_value"
	ActionSetCell          Action = "set_cell"
	ActionSetCellKind      Action = "set_cell_kind"

	// ActionBlur re-runs the formatter on a structured field.
	ActionBlur Action = "blur"
)

// Event is a UI interaction routed back to an editor. Target is the record
// or feature ID, Column the competitor ID for cell edits. Value carries the
// control's current content and is filled in by the host.
type Event struct {
	Editor string `json:"editor"`
	Action Action `json:"action"`
	Target string `json:"target,omitempty"`
	Column string `json:"column,omitempty"`
	Attr   string `json:"attr,omitempty"`
	Value  string `json:"value,omitempty"`
}

// WithValue returns a copy of e carrying value.
func (e Event) WithValue(value string) Event {
	e.Value = value
	return e
}

// ControlKind selects the input rendered for a control.
type ControlKind string

const (
	ControlText     ControlKind = "text"
	ControlTextArea ControlKind = "textarea"
	ControlURL      ControlKind = "url"
	ControlImage    ControlKind = "image"
	ControlRating   ControlKind = "rating"
	ControlCheckbox ControlKind = "checkbox"
	ControlSelect   ControlKind = "select"
)

// SectionKind distinguishes list editors from the comparison table.
type SectionKind string

const (
	SectionRecords SectionKind = "records"
	SectionMatrix  SectionKind = "matrix"
)

// Control is one editable value.
type Control struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Kind        ControlKind `json:"kind"`
	Value       any         `json:"value"`
	Placeholder string      `json:"placeholder,omitempty"`
	Options     []string    `json:"options,omitempty"`
	Event       Event       `json:"event"`
}

// Button is a control that fires its event without a value.
type Button struct {
	Label string `json:"label"`
	Event Event  `json:"event"`
}

// Block is the rendered form of one record.
type Block struct {
	ID       string    `json:"id"`
	Index    int       `json:"index"`
	Number   int       `json:"number"`
	Title    string    `json:"title"`
	Controls []Control `json:"controls"`
	Delete   Button    `json:"delete"`
}

// Column is one competitor header.
type Column struct {
	ID     string  `json:"id"`
	Index  int     `json:"index"`
	Name   Control `json:"name"`
	Delete Button  `json:"delete"`
}

// Cell is one feature/competitor intersection.
type Cell struct {
	Column  string  `json:"column"`
	Control Control `json:"control"`
}

// Row is one feature line of the comparison table.
type Row struct {
	ID       string  `json:"id"`
	Index    int     `json:"index"`
	Name     Control `json:"name"`
	OurValue Control `json:"our_value"`
	CellKind Control `json:"cell_kind"`
	Cells    []Cell  `json:"cells"`
	Delete   Button  `json:"delete"`
}

// Table is the comparison grid.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Section is everything one editor contributes to the page.
type Section struct {
	Editor  string      `json:"editor"`
	Kind    SectionKind `json:"kind"`
	Label   string      `json:"label"`
	Field   string      `json:"field"`
	Value   string      `json:"value"`
	Blocks  []Block     `json:"blocks,omitempty"`
	Table   *Table      `json:"table,omitempty"`
	Actions []Button    `json:"actions"`
}

// Empty reports whether the section has nothing to show besides its actions.
func (s Section) Empty() bool {
	if s.Table != nil {
		return len(s.Table.Columns) == 0 && len(s.Table.Rows) == 0
	}
	return len(s.Blocks) == 0
}

// Field is a structured form field outside any editor, shown raw.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Blur  Event  `json:"blur"`
}

// Page is the complete editing surface for one form.
type Page struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Fields   []Field   `json:"fields,omitempty"`
}

// Section returns the section for editor.
func (p Page) Section(editor string) (Section, bool) {
	for _, section := range p.Sections {
		if section.Editor == editor {
			return section, true
		}
	}
	return Section{}, false
}
