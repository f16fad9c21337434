package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/matrix"
	"github.com/goliatone/go-courseform/pkg/records"
	"github.com/goliatone/go-courseform/pkg/shape"
	"github.com/goliatone/go-courseform/pkg/structured"
	"github.com/goliatone/go-courseform/pkg/view"
)

var (
	// ErrUnknownEditor is returned for events addressed to an editor the
	// session did not build.
	ErrUnknownEditor = errors.New("session: unknown editor")
	// ErrUnsupportedAction is returned when an editor cannot handle an action.
	ErrUnsupportedAction = errors.New("session: unsupported action")
	// ErrUnknownField is returned when a blur targets a field the form lacks.
	ErrUnknownField = errors.New("session: unknown field")
)

// Option configures a Session.
type Option func(*Session)

// WithLogger routes diagnostics from the session and its editors to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShapes replaces the built-in shape registry.
func WithShapes(registry *shape.Registry) Option {
	return func(s *Session) {
		if registry != nil {
			s.shapes = registry
		}
	}
}

// WithBindings replaces DefaultBindings.
func WithBindings(bindings ...Binding) Option {
	return func(s *Session) {
		if len(bindings) > 0 {
			s.bindings = append([]Binding(nil), bindings...)
		}
	}
}

// WithIDFunc overrides identifier generation in every editor.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Session) {
		s.title = title
	}
}

// Result reports how the host should react to an applied event. Rerender is
// false only for in-place edits, where the control the user is typing into
// must keep its focus. Created holds the ID of an added item.
type Result struct {
	Editor   string
	Rerender bool
	Created  string
}

// Session owns the editors of one form.
type Session struct {
	form      *form.Form
	logger    *zap.Logger
	shapes    *shape.Registry
	bindings  []Binding
	newID     func() string
	title     string
	formatter *structured.Formatter

	order    []string
	bound    map[string]string
	records  map[string]*records.Editor
	matrices map[string]*matrix.Editor
}

// New formats the structured fields of f and builds the configured editors.
func New(f *form.Form, options ...Option) (*Session, error) {
	if f == nil {
		return nil, errors.New("session: form is required")
	}
	s := &Session{
		form:     f,
		logger:   zap.NewNop(),
		shapes:   shape.Builtin(),
		bindings: DefaultBindings(),
		bound:    make(map[string]string),
		records:  make(map[string]*records.Editor),
		matrices: make(map[string]*matrix.Editor),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	s.formatter = structured.NewFormatter(structured.WithLogger(s.logger))
	fields := f.StructuredFields()
	targets := make([]structured.TextField, 0, len(fields))
	for _, field := range fields {
		targets = append(targets, field)
	}
	if changed := s.formatter.NormalizeAll(targets...); changed > 0 {
		s.logger.Debug("session: structured fields formatted", zap.Int("changed", changed))
	}

	for _, binding := range s.bindings {
		if err := s.bind(binding); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) bind(b Binding) error {
	if b.Editor == "" {
		return errors.New("session: binding without editor name")
	}
	if _, exists := s.bound[b.Editor]; exists {
		return fmt.Errorf("session: editor %q bound twice", b.Editor)
	}

	field, ok := s.form.Lookup(b.fieldNames()...)
	if !ok {
		s.logger.Debug("session: editor skipped, field absent",
			zap.String("editor", b.Editor),
			zap.Strings("fields", b.fieldNames()),
		)
		return nil
	}

	switch b.Kind {
	case KindMatrix:
		opts := []matrix.Option{
			matrix.WithName(b.Editor),
			matrix.WithLabel(b.Label),
			matrix.WithLogger(s.logger),
		}
		if s.newID != nil {
			opts = append(opts, matrix.WithIDFunc(s.newID))
		}
		editor, err := matrix.New(field, opts...)
		if err != nil {
			return fmt.Errorf("session: %s: %w", b.Editor, err)
		}
		s.matrices[b.Editor] = editor
	case KindRecords, "":
		sh, ok := s.shapes.Get(b.shapeName())
		if !ok {
			return fmt.Errorf("session: %s: shape %q not registered", b.Editor, b.shapeName())
		}
		if b.Label != "" {
			sh.Label = b.Label
		}
		opts := []records.Option{
			records.WithName(b.Editor),
			records.WithLogger(s.logger),
		}
		if s.newID != nil {
			opts = append(opts, records.WithIDFunc(s.newID))
		}
		editor, err := records.New(field, sh, opts...)
		if err != nil {
			return fmt.Errorf("session: %s: %w", b.Editor, err)
		}
		s.records[b.Editor] = editor
	default:
		return fmt.Errorf("session: %s: unknown editor kind %q", b.Editor, b.Kind)
	}

	s.bound[b.Editor] = field.Name()
	s.order = append(s.order, b.Editor)
	return nil
}

// Form returns the underlying form.
func (s *Session) Form() *form.Form {
	return s.form
}

// Editors lists the names of the editors that were built, in binding order.
func (s *Session) Editors() []string {
	return append([]string(nil), s.order...)
}

// Records returns the records editor called name.
func (s *Session) Records(name string) (*records.Editor, bool) {
	editor, ok := s.records[name]
	return editor, ok
}

// Matrix returns the comparison editor called name.
func (s *Session) Matrix(name string) (*matrix.Editor, bool) {
	editor, ok := s.matrices[name]
	return editor, ok
}

// Blur re-runs the formatter on the structured field name and reports
// whether its content changed.
func (s *Session) Blur(name string) (bool, error) {
	field, ok := s.form.Field(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !field.Structured() {
		return false, nil
	}
	return s.formatter.Normalize(field), nil
}

// Apply routes ev to its editor.
func (s *Session) Apply(ctx context.Context, ev view.Event) (Result, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
	}

	if ev.Action == view.ActionBlur {
		changed, err := s.Blur(ev.Target)
		if err != nil {
			return Result{}, err
		}
		return Result{Rerender: changed}, nil
	}

	if editor, ok := s.records[ev.Editor]; ok {
		return applyRecords(editor, ev)
	}
	if editor, ok := s.matrices[ev.Editor]; ok {
		return applyMatrix(editor, ev)
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownEditor, ev.Editor)
}

func applyRecords(editor *records.Editor, ev view.Event) (Result, error) {
	res := Result{Editor: editor.Name(), Rerender: true}
	switch ev.Action {
	case view.ActionAdd:
		record, err := editor.Add()
		if err != nil {
			return Result{}, err
		}
		res.Created = record.ID
	case view.ActionEdit:
		if err := editor.Edit(ev.Target, ev.Attr, ev.Value); err != nil {
			return Result{}, err
		}
		res.Rerender = false
	case view.ActionDelete:
		if err := editor.Delete(ev.Target); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedAction, ev.Action, editor.Name())
	}
	return res, nil
}

func applyMatrix(editor *matrix.Editor, ev view.Event) (Result, error) {
	res := Result{Editor: editor.Name(), Rerender: true}
	var err error
	switch ev.Action {
	case view.ActionAddCompetitor:
		var c matrix.Competitor
		c, err = editor.AddCompetitor()
		res.Created = c.ID
	case view.ActionAddFeature:
		var f matrix.Feature
		f, err = editor.AddFeature()
		res.Created = f.ID
	case view.ActionDeleteCompetitor:
		err = editor.DeleteCompetitor(ev.Target)
	case view.ActionDeleteFeature:
		err = editor.DeleteFeature(ev.Target)
	case view.ActionRenameCompetitor:
		err = editor.RenameCompetitor(ev.Target, ev.Value)
		res.Rerender = false
	case view.ActionRenameFeature:
		err = editor.RenameFeature(ev.Target, ev.Value)
		res.Rerender = false
	case view.ActionSetOurValue:
		err = editor.SetOurValue(ev.Target, ev.Value)
		res.Rerender = false
	case view.ActionSetCell:
		err = editor.SetCell(ev.Target, ev.Column, ev.Value)
		res.Rerender = false
	case view.ActionSetCellKind:
		var kind matrix.CellKind
		kind, err = matrix.ParseCellKind(ev.Value)
		if err == nil {
			err = editor.SetCellKind(ev.Target, kind)
		}
	default:
		err = fmt.Errorf("%w: %s on %s", ErrUnsupportedAction, ev.Action, editor.Name())
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// View assembles the page: one section per editor in binding order, then
// the structured fields no editor owns.
func (s *Session) View() view.Page {
	page := view.Page{Title: s.title}
	for _, name := range s.order {
		if editor, ok := s.records[name]; ok {
			page.Sections = append(page.Sections, editor.View())
			continue
		}
		if editor, ok := s.matrices[name]; ok {
			page.Sections = append(page.Sections, editor.View())
		}
	}

	owned := make(map[string]struct{}, len(s.bound))
	for _, field := range s.bound {
		owned[field] = struct{}{}
	}
	for _, field := range s.form.StructuredFields() {
		if _, ok := owned[field.Name()]; ok {
			continue
		}
		page.Fields = append(page.Fields, view.Field{
			Name:  field.Name(),
			Value: field.Value(),
			Blur:  view.Event{Action: view.ActionBlur, Target: field.Name()},
		})
	}
	return page
}
