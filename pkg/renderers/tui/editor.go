package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/session"
	"github.com/goliatone/go-courseform/pkg/shape"
	"github.com/goliatone/go-courseform/pkg/structured"
	"github.com/goliatone/go-courseform/pkg/view"
)

const (
	labelBack    = "Back"
	labelDone    = "Done"
	labelSummary = "Show summary"

	summaryWidth = 40
)

// Editor drives a session through terminal prompts.
type Editor struct {
	driver   PromptDriver
	theme    Theme
	logger   *zap.Logger
	out      io.Writer
	pageSize int
}

// New constructs an editor. Without WithPromptDriver it prompts through
// survey on the process terminal.
func New(options ...Option) *Editor {
	e := &Editor{
		logger: zap.NewNop(),
		out:    os.Stdout,
		theme:  Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(e.out)
	}
	return e
}

type menuItem struct {
	label string
	run   func(ctx context.Context) (leave bool, err error)
}

func back() menuItem {
	return menuItem{label: labelBack, run: func(context.Context) (bool, error) { return true, nil }}
}

// Run shows the top-level menu until the user picks Done. Input the editors
// reject is reported and the loop continues; aborts and context errors end
// the run.
func (e *Editor) Run(ctx context.Context, s *session.Session) error {
	if s == nil {
		return errors.New("tui: session is required")
	}
	first := s.View()
	if len(first.Sections) == 0 && len(first.Fields) == 0 {
		return ErrNoEditors
	}

	for {
		page := s.View()
		var items []menuItem
		for _, section := range page.Sections {
			section := section // per-iteration copy for go1.21 loop semantics
			items = append(items, menuItem{
				label: fmt.Sprintf("%s (%s)", section.Label, sectionCount(section)),
				run: func(ctx context.Context) (bool, error) {
					return false, e.editSection(ctx, s, section.Editor)
				},
			})
		}
		for _, field := range page.Fields {
			field := field // per-iteration copy for go1.21 loop semantics
			items = append(items, menuItem{
				label: "Edit " + field.Name,
				run: func(ctx context.Context) (bool, error) {
					return false, e.editField(ctx, s, field)
				},
			})
		}
		items = append(items,
			menuItem{label: labelSummary, run: func(ctx context.Context) (bool, error) {
				return false, e.showSummary(ctx, s)
			}},
			menuItem{label: labelDone, run: func(context.Context) (bool, error) { return true, nil }},
		)

		title := page.Title
		if title == "" {
			title = "Edit"
		}
		leave, err := e.menu(ctx, title, items)
		if err != nil {
			return err
		}
		if leave {
			return nil
		}
	}
}

func (e *Editor) menu(ctx context.Context, message string, items []menuItem) (bool, error) {
	labels := make([]string, len(items))
	for idx, item := range items {
		labels[idx] = item.label
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:  message,
		Options:  labels,
		PageSize: e.pageSize,
	})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx >= len(items) {
		return false, fmt.Errorf("tui: selection %d out of range", idx)
	}
	return items[idx].run(ctx)
}

func (e *Editor) editSection(ctx context.Context, s *session.Session, editor string) error {
	for {
		section, ok := s.View().Section(editor)
		if !ok {
			return fmt.Errorf("%w: %q", session.ErrUnknownEditor, editor)
		}
		var items []menuItem
		if section.Kind == view.SectionMatrix {
			items = e.matrixItems(s, section)
		} else {
			items = e.recordItems(s, section)
		}
		items = append(items, back())

		leave, err := e.menu(ctx, section.Label, items)
		if err != nil {
			return err
		}
		if leave {
			return nil
		}
	}
}

func (e *Editor) recordItems(s *session.Session, section view.Section) []menuItem {
	var items []menuItem
	for _, action := range section.Actions {
		action := action // per-iteration copy for go1.21 loop semantics
		items = append(items, menuItem{
			label: action.Label,
			run: func(ctx context.Context) (bool, error) {
				res, err := e.apply(ctx, s, action.Event)
				if err != nil || res.Created == "" {
					return false, err
				}
				return false, e.editRecord(ctx, s, section.Editor, res.Created)
			},
		})
	}
	for _, block := range section.Blocks {
		block := block // per-iteration copy for go1.21 loop semantics
		items = append(items, menuItem{
			label: "Edit " + block.Title,
			run: func(ctx context.Context) (bool, error) {
				return false, e.editRecord(ctx, s, section.Editor, block.ID)
			},
		})
	}
	for _, block := range section.Blocks {
		items = append(items, e.removeItem(s, block.Delete, block.Title))
	}
	return items
}

func (e *Editor) editRecord(ctx context.Context, s *session.Session, editor, id string) error {
	for {
		section, _ := s.View().Section(editor)
		block, ok := findBlock(section, id)
		if !ok {
			return nil
		}
		items := make([]menuItem, 0, len(block.Controls)+1)
		for _, control := range block.Controls {
			items = append(items, e.controlItem(s, control, control.Label))
		}
		items = append(items, back())

		leave, err := e.menu(ctx, block.Title, items)
		if err != nil {
			return err
		}
		if leave {
			return nil
		}
	}
}

func (e *Editor) matrixItems(s *session.Session, section view.Section) []menuItem {
	var items []menuItem
	for _, action := range section.Actions {
		action := action // per-iteration copy for go1.21 loop semantics
		items = append(items, menuItem{
			label: action.Label,
			run: func(ctx context.Context) (bool, error) {
				res, err := e.apply(ctx, s, action.Event)
				if err != nil || res.Created == "" {
					return false, err
				}
				if action.Event.Action == view.ActionAddCompetitor {
					return false, e.nameCompetitor(ctx, s, section.Editor, res.Created)
				}
				return false, e.editFeature(ctx, s, section.Editor, res.Created)
			},
		})
	}
	if section.Table == nil {
		return items
	}
	for _, column := range section.Table.Columns {
		column := column // per-iteration copy for go1.21 loop semantics
		name := competitorLabel(column)
		items = append(items, menuItem{
			label: "Rename competitor " + name,
			run: func(ctx context.Context) (bool, error) {
				return false, e.editControl(ctx, s, column.Name)
			},
		})
		items = append(items, e.removeItem(s, column.Delete, name))
	}
	for _, row := range section.Table.Rows {
		row := row // per-iteration copy for go1.21 loop semantics
		name := featureLabel(row)
		items = append(items, menuItem{
			label: "Edit feature " + name,
			run: func(ctx context.Context) (bool, error) {
				return false, e.editFeature(ctx, s, section.Editor, row.ID)
			},
		})
		items = append(items, e.removeItem(s, row.Delete, name))
	}
	return items
}

func (e *Editor) nameCompetitor(ctx context.Context, s *session.Session, editor, id string) error {
	section, _ := s.View().Section(editor)
	if section.Table == nil {
		return nil
	}
	for _, column := range section.Table.Columns {
		if column.ID == id {
			return e.editControl(ctx, s, column.Name)
		}
	}
	return nil
}

func (e *Editor) editFeature(ctx context.Context, s *session.Session, editor, id string) error {
	for {
		section, _ := s.View().Section(editor)
		row, ok := findRow(section, id)
		if !ok {
			return nil
		}
		items := []menuItem{
			e.controlItem(s, row.Name, row.Name.Label),
			e.controlItem(s, row.OurValue, row.OurValue.Label),
			e.controlItem(s, row.CellKind, row.CellKind.Label),
		}
		for idx, cell := range row.Cells {
			label := cell.Control.Label
			if label == "" {
				label = fmt.Sprintf("Competitor %d", idx+1)
			}
			items = append(items, e.controlItem(s, cell.Control, label))
		}
		items = append(items, back())

		leave, err := e.menu(ctx, "Feature "+featureLabel(row), items)
		if err != nil {
			return err
		}
		if leave {
			return nil
		}
	}
}

func (e *Editor) controlItem(s *session.Session, control view.Control, label string) menuItem {
	return menuItem{
		label: fmt.Sprintf("%s: %s", label, summarize(displayValue(control))),
		run: func(ctx context.Context) (bool, error) {
			return false, e.editControl(ctx, s, control)
		},
	}
}

func (e *Editor) removeItem(s *session.Session, button view.Button, name string) menuItem {
	return menuItem{
		label: button.Label + " " + name,
		run: func(ctx context.Context) (bool, error) {
			ok, err := e.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("%s %s?", button.Label, name),
			})
			if err != nil || !ok {
				return false, err
			}
			_, err = e.apply(ctx, s, button.Event)
			return false, err
		},
	}
}

func (e *Editor) editControl(ctx context.Context, s *session.Session, control view.Control) error {
	value, err := e.prompt(ctx, control)
	if err != nil {
		return err
	}
	_, err = e.apply(ctx, s, control.Event.WithValue(value))
	return err
}

// prompt asks for a new value for control and returns it as the raw text an
// editor expects in Event.Value.
func (e *Editor) prompt(ctx context.Context, control view.Control) (string, error) {
	current := rawValue(control.Value)
	switch control.Kind {
	case view.ControlTextArea:
		return e.driver.TextArea(ctx, TextAreaConfig{
			Message: control.Label,
			Default: current,
			Help:    control.Placeholder,
		})
	case view.ControlCheckbox:
		on, _ := control.Value.(bool)
		answer, err := e.driver.Confirm(ctx, ConfirmConfig{Message: control.Label, Default: on})
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(answer), nil
	case view.ControlRating:
		options := make([]string, 0, shape.RatingMax-shape.RatingMin+1)
		for n := shape.RatingMin; n <= shape.RatingMax; n++ {
			options = append(options, strconv.Itoa(n))
		}
		return e.selectValue(ctx, control.Label, options, current)
	case view.ControlSelect:
		return e.selectValue(ctx, control.Label, control.Options, current)
	default:
		return e.driver.Input(ctx, InputConfig{
			Message: control.Label,
			Default: current,
			Help:    control.Placeholder,
		})
	}
}

func (e *Editor) selectValue(ctx context.Context, message string, options []string, current string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("tui: %s has no options", message)
	}
	def := 0
	for idx, option := range options {
		if option == current {
			def = idx
			break
		}
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      options,
		DefaultIndex: def,
		PageSize:     e.pageSize,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("tui: selection %d out of range", idx)
	}
	return options[idx], nil
}

func (e *Editor) editField(ctx context.Context, s *session.Session, field view.Field) error {
	value, err := e.driver.TextArea(ctx, TextAreaConfig{
		Message: field.Name,
		Default: field.Value,
	})
	if err != nil {
		return err
	}
	target, ok := s.Form().Field(field.Name)
	if !ok {
		return fmt.Errorf("%w: %q", session.ErrUnknownField, field.Name)
	}
	target.SetValue(value)
	if _, err := e.apply(ctx, s, field.Blur); err != nil {
		return err
	}
	if strings.TrimSpace(value) != "" && !structured.Valid(value) {
		return e.notify(ctx, e.theme.ErrorPrefix+field.Name+": not valid JSON, kept as typed")
	}
	return nil
}

func (e *Editor) showSummary(ctx context.Context, s *session.Session) error {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, s.View()); err != nil {
		return err
	}
	return e.notify(ctx, strings.TrimRight(buf.String(), "\n"))
}

// apply routes ev through the session. Rejected input is reported to the
// user and swallowed so the menu loop can continue.
func (e *Editor) apply(ctx context.Context, s *session.Session, ev view.Event) (session.Result, error) {
	res, err := s.Apply(ctx, ev)
	if err == nil {
		e.logger.Debug("tui: event applied",
			zap.String("editor", ev.Editor),
			zap.String("action", string(ev.Action)),
			zap.String("target", ev.Target),
		)
		return res, nil
	}
	if fatal(err) {
		return session.Result{}, err
	}
	e.logger.Info("tui: event rejected",
		zap.String("editor", ev.Editor),
		zap.String("action", string(ev.Action)),
		zap.Error(err),
	)
	return session.Result{}, e.notify(ctx, e.theme.ErrorPrefix+err.Error())
}

func (e *Editor) notify(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, e.theme.InfoPrefix+msg)
}

func fatal(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func findBlock(section view.Section, id string) (view.Block, bool) {
	for _, block := range section.Blocks {
		if block.ID == id {
			return block, true
		}
	}
	return view.Block{}, false
}

func findRow(section view.Section, id string) (view.Row, bool) {
	if section.Table == nil {
		return view.Row{}, false
	}
	for _, row := range section.Table.Rows {
		if row.ID == id {
			return row, true
		}
	}
	return view.Row{}, false
}

func sectionCount(section view.Section) string {
	if section.Table != nil {
		return fmt.Sprintf("%d features, %d competitors", len(section.Table.Rows), len(section.Table.Columns))
	}
	return strconv.Itoa(len(section.Blocks))
}

func competitorLabel(column view.Column) string {
	if name := rawValue(column.Name.Value); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", column.Index+1)
}

func featureLabel(row view.Row) string {
	if name := rawValue(row.Name.Value); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", row.Index+1)
}

func rawValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func summarize(value string) string {
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		value = value[:idx] + " ..."
	}
	if utf8.RuneCountInString(value) <= summaryWidth {
		return value
	}
	runes := []rune(value)
	return string(runes[:summaryWidth-3]) + "..."
}
