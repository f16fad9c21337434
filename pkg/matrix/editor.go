package matrix

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/structured"
	"github.com/goliatone/go-courseform/pkg/view"
)

// DefaultName is the editor name used when none is configured.
const DefaultName = "product_comparison"

// IDFunc generates competitor and feature identifiers.
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

// WithName sets the editor name used in events.
func WithName(name string) Option {
	return func(e *Editor) {
		if name != "" {
			e.name = name
		}
	}
}

// WithLabel sets the section label shown by renderers.
func WithLabel(label string) Option {
	return func(e *Editor) {
		if label != "" {
			e.label = label
		}
	}
}

// Editor owns the comparison model for one bound field.
type Editor struct {
	name        string
	label       string
	field       form.BoundField
	logger      *zap.Logger
	newID       IDFunc
	competitors []Competitor
	features    []Feature
	extra       map[string]any
}

// New builds an editor over field and initializes it from the field content.
func New(field form.BoundField, options ...Option) (*Editor, error) {
	if field == nil {
		return nil, ErrNoField
	}
	e := &Editor{
		name:   DefaultName,
		label:  "Product comparison",
		field:  field,
		logger: zap.NewNop(),
		newID:  func() string { return ulid.Make().String() },
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	e.Initialize()
	return e, nil
}

// Initialize rebuilds the model from the bound field. Empty or undecodable
// content yields an empty model; failures are logged, never returned.
func (e *Editor) Initialize() {
	e.competitors = nil
	e.features = nil
	e.extra = nil

	obj, err := structured.DecodeObject(e.field.Value())
	if err != nil {
		if !errors.Is(err, structured.ErrEmpty) {
			e.warn("matrix: bound field content ignored", err)
		}
		return
	}

	competitors, features, err := decodeModel(obj)
	if err != nil {
		e.warn("matrix: bound field content ignored", err)
		return
	}

	for idx := range competitors {
		competitors[idx].ID = e.newID()
	}
	for idx := range features {
		features[idx].ID = e.newID()
		if len(features[idx].Values) > len(competitors) {
			e.logger.Warn("matrix: dropping cells beyond the last competitor",
				zap.String("editor", e.name),
				zap.String("feature", features[idx].Name),
				zap.Int("cells", len(features[idx].Values)),
				zap.Int("competitors", len(competitors)),
			)
			features[idx].Values = features[idx].Values[:len(competitors)]
		}
	}

	e.competitors = competitors
	e.features = features
	e.extra = without(obj, keyCompetitors, keyFeatures)
}

func decodeModel(obj map[string]any) ([]Competitor, []Feature, error) {
	rawCompetitors, err := listValue(obj, keyCompetitors)
	if err != nil {
		return nil, nil, err
	}
	rawFeatures, err := listValue(obj, keyFeatures)
	if err != nil {
		return nil, nil, err
	}

	competitors := make([]Competitor, 0, len(rawCompetitors))
	for idx, raw := range rawCompetitors {
		c, err := decodeCompetitor(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("competitors[%d]: %w", idx, err)
		}
		competitors = append(competitors, c)
	}

	features := make([]Feature, 0, len(rawFeatures))
	for idx, raw := range rawFeatures {
		f, err := decodeFeature(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("features[%d]: %w", idx, err)
		}
		features = append(features, f)
	}
	return competitors, features, nil
}

func listValue(obj map[string]any, key string) ([]any, error) {
	switch typed := obj[key].(type) {
	case nil:
		return nil, nil
	case []any:
		return typed, nil
	default:
		return nil, fmt.Errorf("%s is %T, want array", key, typed)
	}
}

// Name returns the editor name used in events.
func (e *Editor) Name() string {
	return e.name
}

// Field returns the bound field.
func (e *Editor) Field() form.BoundField {
	return e.field
}

// Model returns a copy of the current state.
func (e *Editor) Model() Model {
	m := Model{
		Competitors: make([]Competitor, 0, len(e.competitors)),
		Features:    make([]Feature, 0, len(e.features)),
	}
	for _, c := range e.competitors {
		m.Competitors = append(m.Competitors, c.clone())
	}
	for _, f := range e.features {
		m.Features = append(m.Features, f.clone())
	}
	return m
}

// AddCompetitor appends a column named after the new column count. Existing
// rows are not extended.
func (e *Editor) AddCompetitor() (Competitor, error) {
	c := Competitor{
		ID:   e.newID(),
		Name: fmt.Sprintf("Competitor %d", len(e.competitors)+1),
	}
	e.competitors = append(e.competitors, c)
	return c.clone(), e.Serialize()
}

// AddFeature appends a boolean row with one false cell per competitor.
func (e *Editor) AddFeature() (Feature, error) {
	values := make([]any, len(e.competitors))
	for idx := range values {
		values[idx] = false
	}
	f := Feature{
		ID:       e.newID(),
		Name:     fmt.Sprintf("Feature %d", len(e.features)+1),
		OurValue: true,
		Kind:     CellBoolean,
		Values:   values,
	}
	e.features = append(e.features, f)
	return f.clone(), e.Serialize()
}

// DeleteCompetitor removes the competitor with id and its column.
func (e *Editor) DeleteCompetitor(id string) error {
	idx := e.competitorIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCompetitor, id)
	}
	return e.DeleteCompetitorAt(idx)
}

// DeleteCompetitorAt removes competitor index and splices that position out
// of every row long enough to hold it.
func (e *Editor) DeleteCompetitorAt(index int) error {
	if index < 0 || index >= len(e.competitors) {
		return fmt.Errorf("%w: competitor %d (len %d)", ErrIndexOutOfRange, index, len(e.competitors))
	}
	e.competitors = append(e.competitors[:index], e.competitors[index+1:]...)
	for fi := range e.features {
		values := e.features[fi].Values
		if len(values) > index {
			e.features[fi].Values = append(values[:index], values[index+1:]...)
		}
	}
	return e.Serialize()
}

// DeleteFeature removes the feature with id.
func (e *Editor) DeleteFeature(id string) error {
	idx := e.featureIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	return e.DeleteFeatureAt(idx)
}

// DeleteFeatureAt removes feature index.
func (e *Editor) DeleteFeatureAt(index int) error {
	if index < 0 || index >= len(e.features) {
		return fmt.Errorf("%w: feature %d (len %d)", ErrIndexOutOfRange, index, len(e.features))
	}
	e.features = append(e.features[:index], e.features[index+1:]...)
	return e.Serialize()
}

// RenameCompetitor sets the competitor's name.
func (e *Editor) RenameCompetitor(id, name string) error {
	idx := e.competitorIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCompetitor, id)
	}
	e.competitors[idx].Name = name
	return e.Serialize()
}

// RenameFeature sets the feature's name.
func (e *Editor) RenameFeature(id, name string) error {
	idx := e.featureIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	e.features[idx].Name = name
	return e.Serialize()
}

// SetOurValue sets whether the product itself offers the feature.
func (e *Editor) SetOurValue(id, raw string) error {
	idx := e.featureIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	flag, ok := parseFlag(raw)
	if !ok {
		return fmt.Errorf("%w: %q is not a boolean", ErrInvalidCell, raw)
	}
	e.features[idx].OurValue = flag
	return e.Serialize()
}

// SetCell writes raw into the cell at (feature, competitor), converted to
// the feature's cell kind. Short rows are padded with zero values first.
func (e *Editor) SetCell(featureID, competitorID, raw string) error {
	fi := e.featureIndex(featureID)
	if fi < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, featureID)
	}
	ci := e.competitorIndex(competitorID)
	if ci < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCompetitor, competitorID)
	}

	feature := &e.features[fi]
	value, err := coerceInput(feature.Kind, raw)
	if err != nil {
		return err
	}
	if feature.Values == nil {
		feature.Values = []any{}
	}
	for len(feature.Values) <= ci {
		feature.Values = append(feature.Values, zeroValue(feature.Kind))
	}
	feature.Values[ci] = value
	return e.Serialize()
}

// SetCellKind retags a feature and converts its existing cells.
func (e *Editor) SetCellKind(id string, kind CellKind) error {
	idx := e.featureIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	if _, err := ParseCellKind(string(kind)); err != nil {
		return err
	}
	feature := &e.features[idx]
	if feature.Kind == kind {
		return nil
	}
	feature.Kind = kind
	for ci, value := range feature.Values {
		feature.Values[ci] = convertCell(kind, value)
	}
	return e.Serialize()
}

// Encode returns the compact serialized model.
func (e *Editor) Encode() (string, error) {
	out := cloneMap(e.extra)
	if out == nil {
		out = make(map[string]any, 2)
	}
	competitors := make([]any, 0, len(e.competitors))
	for _, c := range e.competitors {
		competitors = append(competitors, c.encode())
	}
	features := make([]any, 0, len(e.features))
	for _, f := range e.features {
		features = append(features, f.encode())
	}
	out[keyCompetitors] = competitors
	out[keyFeatures] = features

	encoded, err := structured.Compact(out)
	if err != nil {
		return "", fmt.Errorf("matrix: %s: %w", e.name, err)
	}
	return encoded, nil
}

// Serialize writes the compact model to the bound field.
func (e *Editor) Serialize() error {
	encoded, err := e.Encode()
	if err != nil {
		return err
	}
	e.field.SetValue(encoded)
	return nil
}

// View describes the comparison table for rendering.
func (e *Editor) View() view.Section {
	encoded, err := e.Encode()
	if err != nil {
		encoded = e.field.Value()
	}

	table := &view.Table{}
	for ci, c := range e.competitors {
		table.Columns = append(table.Columns, view.Column{
			ID:    c.ID,
			Index: ci,
			Name: view.Control{
				Name:  keyName,
				Label: "Competitor name",
				Kind:  view.ControlText,
				Value: c.Name,
				Event: view.Event{Editor: e.name, Action: view.ActionRenameCompetitor, Target: c.ID},
			},
			Delete: view.Button{
				Label: "Remove competitor",
				Event: view.Event{Editor: e.name, Action: view.ActionDeleteCompetitor, Target: c.ID},
			},
		})
	}

	for fi, f := range e.features {
		row := view.Row{
			ID:    f.ID,
			Index: fi,
			Name: view.Control{
				Name:  keyName,
				Label: "Feature",
				Kind:  view.ControlText,
				Value: f.Name,
				Event: view.Event{Editor: e.name, Action: view.ActionRenameFeature, Target: f.ID},
			},
			OurValue: view.Control{
				Name:  keyOurValue,
				Label: "Ours",
				Kind:  view.ControlCheckbox,
				Value: f.OurValue,
				Event: view.Event{Editor: e.name, Action: view.ActionSetOurValue, Target: f.ID},
			},
			CellKind: view.Control{
				Name:    keyCellType,
				Label:   "Cell type",
				Kind:    view.ControlSelect,
				Value:   string(f.Kind),
				Options: []string{string(CellBoolean), string(CellText)},
				Event:   view.Event{Editor: e.name, Action: view.ActionSetCellKind, Target: f.ID},
			},
			Delete: view.Button{
				Label: "Remove feature",
				Event: view.Event{Editor: e.name, Action: view.ActionDeleteFeature, Target: f.ID},
			},
		}
		kind := view.ControlCheckbox
		if f.Kind == CellText {
			kind = view.ControlText
		}
		for ci, c := range e.competitors {
			row.Cells = append(row.Cells, view.Cell{
				Column: c.ID,
				Control: view.Control{
					Name:  c.Name,
					Label: c.Name,
					Kind:  kind,
					Value: f.display(ci),
					Event: view.Event{
						Editor: e.name,
						Action: view.ActionSetCell,
						Target: f.ID,
						Column: c.ID,
					},
				},
			})
		}
		table.Rows = append(table.Rows, row)
	}

	return view.Section{
		Editor: e.name,
		Kind:   view.SectionMatrix,
		Label:  e.label,
		Field:  e.field.Name(),
		Value:  encoded,
		Table:  table,
		Actions: []view.Button{
			{Label: "Add competitor", Event: view.Event{Editor: e.name, Action: view.ActionAddCompetitor}},
			{Label: "Add feature", Event: view.Event{Editor: e.name, Action: view.ActionAddFeature}},
		},
	}
}

func (e *Editor) competitorIndex(id string) int {
	if id == "" {
		return -1
	}
	for idx, c := range e.competitors {
		if c.ID == id {
			return idx
		}
	}
	return -1
}

func (e *Editor) featureIndex(id string) int {
	if id == "" {
		return -1
	}
	for idx, f := range e.features {
		if f.ID == id {
			return idx
		}
	}
	return -1
}

func (e *Editor) warn(msg string, err error) {
	e.logger.Warn(msg,
		zap.String("editor", e.name),
		zap.String("field", e.field.Name()),
		zap.Error(err),
	)
}
