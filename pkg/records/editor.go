package records

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/shape"
	"github.com/goliatone/go-courseform/pkg/structured"
	"github.com/goliatone/go-courseform/pkg/view"
)

var (
	// ErrUnknownRecord is returned when an ID does not match any record.
	ErrUnknownRecord = errors.New("records: unknown record")
	// ErrIndexOutOfRange is returned by positional operations past the list end.
	ErrIndexOutOfRange = errors.New("records: index out of range")
	// ErrNoField is returned when an editor is constructed without a bound field.
	ErrNoField = errors.New("records: bound field is required")
)

// Record is one entry of the list. Values holds every stored attribute,
// including ones the shape does not declare.
type Record struct {
	ID     string
	Values map[string]any
}

func (r Record) clone() Record {
	values := make(map[string]any, len(r.Values))
	for key, value := range r.Values {
		values[key] = value
	}
	return Record{ID: r.ID, Values: values}
}

// IDFunc generates record identifiers.
type IDFunc func() string

// Option configures an Editor.
type Option func(*Editor)

// WithLogger routes decode diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDFunc overrides the identifier generator (ULIDs by default).
func WithIDFunc(fn IDFunc) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithName sets the editor name used in events. Defaults to the shape name.
func WithName(name string) Option {
	return func(e *Editor) {
		if name != "" {
			e.name = name
		}
	}
}

// Editor owns the record list for one bound field.
type Editor struct {
	name    string
	field   form.BoundField
	shape   shape.Shape
	logger  *zap.Logger
	newID   IDFunc
	records []Record
}

// New builds an editor over field and initializes it from the field's
// current content.
func New(field form.BoundField, s shape.Shape, options ...Option) (*Editor, error) {
	if field == nil {
		return nil, ErrNoField
	}
	if len(s.Attributes) == 0 {
		return nil, fmt.Errorf("records: shape %q has no attributes", s.Name)
	}

	e := &Editor{
		name:   s.Name,
		field:  field,
		shape:  s,
		logger: zap.NewNop(),
		newID:  defaultID,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.name == "" {
		e.name = field.Name()
	}

	e.Initialize()
	return e, nil
}

// Initialize rebuilds the list from the bound field. Empty or undecodable
// content yields an empty list; the failure is logged, never returned.
func (e *Editor) Initialize() {
	e.records = nil

	items, err := structured.DecodeList(e.field.Value())
	if err != nil {
		if errors.Is(err, structured.ErrEmpty) {
			return
		}
		e.logger.Warn("records: bound field content ignored",
			zap.String("editor", e.name),
			zap.String("field", e.field.Name()),
			zap.Error(err),
		)
		return
	}

	e.records = make([]Record, 0, len(items))
	// Stored values are kept as decoded; ratings are clamped for display and
	// on input only, so untouched records serialize unchanged.
	for _, item := range items {
		e.records = append(e.records, Record{ID: e.newID(), Values: item})
	}
}

// Name returns the editor name used in events.
func (e *Editor) Name() string {
	return e.name
}

// Shape returns the record shape.
func (e *Editor) Shape() shape.Shape {
	return e.shape
}

// Field returns the bound field.
func (e *Editor) Field() form.BoundField {
	return e.field
}

// Len returns the number of records.
func (e *Editor) Len() int {
	return len(e.records)
}

// Records returns a copy of the list.
func (e *Editor) Records() []Record {
	out := make([]Record, 0, len(e.records))
	for _, rec := range e.records {
		out = append(out, rec.clone())
	}
	return out
}

// Record returns the record with id and its current position.
func (e *Editor) Record(id string) (Record, int, bool) {
	idx := e.indexOf(id)
	if idx < 0 {
		return Record{}, -1, false
	}
	return e.records[idx].clone(), idx, true
}

// Add appends a record populated with the shape defaults.
func (e *Editor) Add() (Record, error) {
	rec := Record{ID: e.newID(), Values: e.shape.Defaults()}
	e.records = append(e.records, rec)
	if err := e.Serialize(); err != nil {
		return Record{}, err
	}
	return rec.clone(), nil
}

// Edit stores raw input for attr on the record with id. The list structure
// does not change, so only the bound field is rewritten.
func (e *Editor) Edit(id, attr, raw string) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownRecord, id)
	}
	value, err := e.shape.Coerce(attr, raw)
	if err != nil {
		return err
	}
	e.records[idx].Values[attr] = value
	return e.Serialize()
}

// Delete removes the record with id; later records move up one position.
func (e *Editor) Delete(id string) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownRecord, id)
	}
	return e.DeleteAt(idx)
}

// DeleteAt removes the record at index.
func (e *Editor) DeleteAt(index int) error {
	if index < 0 || index >= len(e.records) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(e.records))
	}
	e.records = append(e.records[:index], e.records[index+1:]...)
	return e.Serialize()
}

// Encode returns the compact serialized list.
func (e *Editor) Encode() (string, error) {
	items := make([]any, 0, len(e.records))
	for _, rec := range e.records {
		items = append(items, rec.clone().Values)
	}
	encoded, err := structured.Compact(items)
	if err != nil {
		return "", fmt.Errorf("records: %s: %w", e.name, err)
	}
	return encoded, nil
}

// Serialize writes the compact list to the bound field.
func (e *Editor) Serialize() error {
	encoded, err := e.Encode()
	if err != nil {
		return err
	}
	e.field.SetValue(encoded)
	return nil
}

// View describes the list for rendering. It only reads editor state.
func (e *Editor) View() view.Section {
	encoded, err := e.Encode()
	if err != nil {
		encoded = e.field.Value()
	}

	section := view.Section{
		Editor: e.name,
		Kind:   view.SectionRecords,
		Label:  e.shape.Label,
		Field:  e.field.Name(),
		Value:  encoded,
		Actions: []view.Button{{
			Label: e.shape.AddLabel,
			Event: view.Event{Editor: e.name, Action: view.ActionAdd},
		}},
	}

	for idx, rec := range e.records {
		block := view.Block{
			ID:     rec.ID,
			Index:  idx,
			Number: idx + 1,
			Title:  fmt.Sprintf("%s %d", e.shape.ItemLabel, idx+1),
			Delete: view.Button{
				Label: "Remove",
				Event: view.Event{Editor: e.name, Action: view.ActionDelete, Target: rec.ID},
			},
		}
		for _, attr := range e.shape.Attributes {
			block.Controls = append(block.Controls, view.Control{
				Name:        attr.Name,
				Label:       attr.Label,
				Kind:        controlKind(attr.Kind),
				Value:       displayValue(attr, rec.Values[attr.Name]),
				Placeholder: attr.Placeholder,
				Event: view.Event{
					Editor: e.name,
					Action: view.ActionEdit,
					Target: rec.ID,
					Attr:   attr.Name,
				},
			})
		}
		section.Blocks = append(section.Blocks, block)
	}
	return section
}

func (e *Editor) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for idx, rec := range e.records {
		if rec.ID == id {
			return idx
		}
	}
	return -1
}

func controlKind(kind shape.Kind) view.ControlKind {
	switch kind {
	case shape.KindTextArea:
		return view.ControlTextArea
	case shape.KindURL:
		return view.ControlURL
	case shape.KindImage:
		return view.ControlImage
	case shape.KindRating:
		return view.ControlRating
	default:
		return view.ControlText
	}
}

func displayValue(attr shape.Attribute, value any) any {
	if attr.Kind == shape.KindRating {
		switch v := attr.Normalize(value).(type) {
		case int:
			return v
		case nil:
			if def, ok := attr.Normalize(attr.Default).(int); ok {
				return def
			}
			return shape.RatingMax
		default:
			return fmt.Sprint(v)
		}
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func defaultID() string {
	return ulid.Make().String()
}
