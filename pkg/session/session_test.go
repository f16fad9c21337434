package session_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/matrix"
	"github.com/goliatone/go-courseform/pkg/records"
	"github.com/goliatone/go-courseform/pkg/session"
	"github.com/goliatone/go-courseform/pkg/view"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newSession(t *testing.T, f *form.Form, opts ...session.Option) *session.Session {
	t.Helper()
	opts = append([]session.Option{session.WithIDFunc(sequentialIDs())}, opts...)
	s, err := session.New(f, opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestNew_FormatsStructuredFields(t *testing.T) {
	f := form.New()
	f.SetStructured("metadata", `{"b":1,"a":[]}`)
	f.SetStructured("broken", `{"a":`)
	f.Set("title", `{"b":1}`)

	newSession(t, f)

	metadata, _ := f.Field("metadata")
	want := "{\n  \"a\": [],\n  \"b\": 1\n}"
	if diff := cmp.Diff(want, metadata.Value()); diff != "" {
		t.Fatalf("formatted mismatch (-want +got):\n%s", diff)
	}
	broken, _ := f.Field("broken")
	if broken.Value() != `{"a":` {
		t.Fatalf("malformed field should be untouched, got %q", broken.Value())
	}
	title, _ := f.Field("title")
	if title.Value() != `{"b":1}` {
		t.Fatalf("plain field should be untouched, got %q", title.Value())
	}
}

func TestNew_SkipsEditorsWithoutField(t *testing.T) {
	f := form.New()
	f.SetStructured("faq_items", `[{"question":"Q","answer":"A"}]`)
	f.SetStructured("product_comparison", "")

	s := newSession(t, f)

	if diff := cmp.Diff([]string{"faq", matrix.DefaultName}, s.Editors()); diff != "" {
		t.Fatalf("editors mismatch (-want +got):\n%s", diff)
	}
	faq, ok := s.Records("faq")
	if !ok {
		t.Fatal("expected faq editor bound through alias")
	}
	if faq.Field().Name() != "faq_items" {
		t.Fatalf("expected faq_items field, got %s", faq.Field().Name())
	}
	if faq.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", faq.Len())
	}
	if _, ok := s.Records("benefits"); ok {
		t.Fatal("benefits editor should be skipped")
	}
}

func TestApply_RecordsEvents(t *testing.T) {
	f := form.New()
	f.SetStructured("benefits", `[{"title":"A","description":"B"}]`)
	s := newSession(t, f)
	ctx := context.Background()

	res, err := s.Apply(ctx, view.Event{Editor: "benefits", Action: view.ActionAdd})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if diff := cmp.Diff(session.Result{Editor: "benefits", Rerender: true, Created: "id2"}, res); diff != "" {
		t.Fatalf("add result mismatch (-want +got):\n%s", diff)
	}

	res, err = s.Apply(ctx, view.Event{Editor: "benefits", Action: view.ActionEdit, Target: "id2", Attr: "title"}.WithValue("C"))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if res.Rerender {
		t.Fatal("attribute edits must not request a rerender")
	}

	if _, err := s.Apply(ctx, view.Event{Editor: "benefits", Action: view.ActionDelete, Target: "id1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	field, _ := f.Field("benefits")
	want := `[{"description":"","title":"C"}]`
	if diff := cmp.Diff(want, field.Value()); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Apply(ctx, view.Event{Editor: "benefits", Action: view.ActionDelete, Target: "id1"})
	if !errors.Is(err, records.ErrUnknownRecord) {
		t.Fatalf("expected ErrUnknownRecord for stale id, got %v", err)
	}
}

func TestApply_MatrixEvents(t *testing.T) {
	f := form.New()
	f.SetStructured(matrix.DefaultName, "")
	s := newSession(t, f)
	ctx := context.Background()

	comp, err := s.Apply(ctx, view.Event{Editor: matrix.DefaultName, Action: view.ActionAddCompetitor})
	if err != nil {
		t.Fatalf("add competitor: %v", err)
	}
	feat, err := s.Apply(ctx, view.Event{Editor: matrix.DefaultName, Action: view.ActionAddFeature})
	if err != nil {
		t.Fatalf("add feature: %v", err)
	}

	events := []view.Event{
		{Editor: matrix.DefaultName, Action: view.ActionSetCellKind, Target: feat.Created, Value: "text"},
		{Editor: matrix.DefaultName, Action: view.ActionSetCell, Target: feat.Created, Column: comp.Created, Value: "Email only"},
		{Editor: matrix.DefaultName, Action: view.ActionRenameCompetitor, Target: comp.Created, Value: "Acme"},
		{Editor: matrix.DefaultName, Action: view.ActionRenameFeature, Target: feat.Created, Value: "Support"},
	}
	for _, ev := range events {
		if _, err := s.Apply(ctx, ev); err != nil {
			t.Fatalf("%s: %v", ev.Action, err)
		}
	}

	field, _ := f.Field(matrix.DefaultName)
	want := `{"competitors":[{"name":"Acme"}],"features":[{"cell_type":"text","competitor_values":["Email only"],"name":"Support","our_value":true}]}`
	if diff := cmp.Diff(want, field.Value()); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Apply(ctx, view.Event{Editor: matrix.DefaultName, Action: view.ActionDeleteCompetitor, Target: comp.Created}); err != nil {
		t.Fatalf("delete competitor: %v", err)
	}
	want = `{"competitors":[],"features":[{"cell_type":"text","competitor_values":[],"name":"Support","our_value":true}]}`
	if diff := cmp.Diff(want, field.Value()); diff != "" {
		t.Fatalf("field after delete mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_Errors(t *testing.T) {
	f := form.New()
	f.SetStructured("benefits", "")
	s := newSession(t, f)

	if _, err := s.Apply(context.Background(), view.Event{Editor: "nope", Action: view.ActionAdd}); !errors.Is(err, session.ErrUnknownEditor) {
		t.Fatalf("expected ErrUnknownEditor, got %v", err)
	}
	if _, err := s.Apply(context.Background(), view.Event{Editor: "benefits", Action: view.ActionAddFeature}); !errors.Is(err, session.ErrUnsupportedAction) {
		t.Fatalf("expected ErrUnsupportedAction, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Apply(ctx, view.Event{Editor: "benefits", Action: view.ActionAdd}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBlur(t *testing.T) {
	f := form.New()
	f.SetStructured("metadata", "")
	s := newSession(t, f)

	field, _ := f.Field("metadata")
	field.SetValue(`{"z":true,"a":"x"}`)

	res, err := s.Apply(context.Background(), view.Event{Action: view.ActionBlur, Target: "metadata"})
	if err != nil {
		t.Fatalf("blur: %v", err)
	}
	if !res.Rerender {
		t.Fatal("expected rerender after reformatting")
	}
	want := "{\n  \"a\": \"x\",\n  \"z\": true\n}"
	if diff := cmp.Diff(want, field.Value()); diff != "" {
		t.Fatalf("formatted mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Blur("missing"); !errors.Is(err, session.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestView_ListsSectionsAndLooseFields(t *testing.T) {
	f := form.New()
	f.SetStructured("testimonials", `[{"name":"Ana","content":"Great","rating":4}]`)
	f.SetStructured("metadata", `{}`)
	s := newSession(t, f, session.WithTitle("Edit product"))

	page := s.View()
	if page.Title != "Edit product" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if len(page.Sections) != 1 || page.Sections[0].Editor != "testimonials" {
		t.Fatalf("unexpected sections %+v", page.Sections)
	}
	wantFields := []view.Field{{
		Name:  "metadata",
		Value: "{}",
		Blur:  view.Event{Action: view.ActionBlur, Target: "metadata"},
	}}
	if diff := cmp.Diff(wantFields, page.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestWithBindings_CustomEditor(t *testing.T) {
	f := form.New()
	f.SetStructured("course_faq", "")
	s := newSession(t, f, session.WithBindings(session.Binding{
		Editor: "course_faq",
		Kind:   session.KindRecords,
		Shape:  "faq",
		Label:  "Course FAQ",
	}))

	page := s.View()
	section, ok := page.Section("course_faq")
	if !ok {
		t.Fatal("expected course_faq section")
	}
	if section.Label != "Course FAQ" {
		t.Fatalf("unexpected label %q", section.Label)
	}

	_, err := session.New(f, session.WithBindings(session.Binding{Editor: "x", Shape: "unknown", Fields: []string{"course_faq"}}))
	if err == nil {
		t.Fatal("expected error for unregistered shape")
	}
}
