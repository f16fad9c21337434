package records_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/records"
	"github.com/goliatone/go-courseform/pkg/shape"
	"github.com/goliatone/go-courseform/pkg/structured"
	"github.com/goliatone/go-courseform/pkg/view"
)

func sequentialIDs() records.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("r%d", n)
	}
}

func mustShape(t *testing.T, name string) shape.Shape {
	t.Helper()
	s, ok := shape.Builtin().Get(name)
	if !ok {
		t.Fatalf("shape %q missing", name)
	}
	return s
}

func newEditor(t *testing.T, shapeName, content string, opts ...records.Option) (*records.Editor, *form.Field) {
	t.Helper()
	field := form.New().SetStructured(shapeName, content)
	opts = append([]records.Option{records.WithIDFunc(sequentialIDs())}, opts...)
	editor, err := records.New(field, mustShape(t, shapeName), opts...)
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	return editor, field
}

func decodeField(t *testing.T, field *form.Field) []map[string]any {
	t.Helper()
	items, err := structured.DecodeList(field.Value())
	if err != nil {
		t.Fatalf("decode field %q: %v", field.Value(), err)
	}
	return items
}

func TestEditor_AddDeleteScenario(t *testing.T) {
	editor, field := newEditor(t, "benefits", `[{"title":"A","description":"B"}]`)

	want := []records.Record{{ID: "r1", Values: map[string]any{"title": "A", "description": "B"}}}
	if diff := cmp.Diff(want, editor.Records()); diff != "" {
		t.Fatalf("initial records mismatch (-want +got):\n%s", diff)
	}

	added, err := editor.Add()
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if editor.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", editor.Len())
	}
	if added.ID != "r2" {
		t.Fatalf("expected appended record r2, got %s", added.ID)
	}

	if err := editor.DeleteAt(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantAfter := []records.Record{{ID: "r2", Values: map[string]any{"title": "", "description": ""}}}
	if diff := cmp.Diff(wantAfter, editor.Records()); diff != "" {
		t.Fatalf("records after delete mismatch (-want +got):\n%s", diff)
	}

	wantField := []map[string]any{{"title": "", "description": ""}}
	if diff := cmp.Diff(wantField, decodeField(t, field)); diff != "" {
		t.Fatalf("bound field mismatch (-want +got):\n%s", diff)
	}

	section := editor.View()
	if len(section.Blocks) != 1 || section.Blocks[0].Index != 0 || section.Blocks[0].ID != "r2" {
		t.Fatalf("view not renumbered: %+v", section.Blocks)
	}
	for _, control := range section.Blocks[0].Controls {
		if control.Event.Target != "r2" {
			t.Fatalf("control %s targets %q", control.Name, control.Event.Target)
		}
	}
}

func TestEditor_FixedPoint(t *testing.T) {
	inputs := []string{
		`[]`,
		`[{"title":"A","description":"B"}]`,
		`[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":""}]`,
		`[{"name":"Ann","content":"Great","rating":4,"image":"uploads/a.jpg","company":"Acme"}]`,
	}
	shapes := []string{"benefits", "benefits", "faq", "testimonials"}

	for idx, input := range inputs {
		editor, field := newEditor(t, shapes[idx], input)
		before, err := structured.DecodeList(input)
		if err != nil {
			t.Fatalf("decode input: %v", err)
		}
		if err := editor.Serialize(); err != nil {
			t.Fatalf("serialize: %v", err)
		}
		after := decodeField(t, field)
		if diff := cmp.Diff(before, after); diff != "" {
			t.Fatalf("round trip of %s changed (-before +after):\n%s", input, diff)
		}
	}
}

func TestEditor_AddAppendsAtEnd(t *testing.T) {
	editor, _ := newEditor(t, "faq", `[{"question":"Q1"},{"question":"Q2"}]`)
	for i := 0; i < 3; i++ {
		before := editor.Records()
		if _, err := editor.Add(); err != nil {
			t.Fatalf("add: %v", err)
		}
		after := editor.Records()
		if len(after) != len(before)+1 {
			t.Fatalf("add changed length from %d to %d", len(before), len(after))
		}
		if diff := cmp.Diff(before, after[:len(before)]); diff != "" {
			t.Fatalf("add disturbed existing records (-want +got):\n%s", diff)
		}
	}
}

func TestEditor_DeletePreservesOrder(t *testing.T) {
	content := `[{"question":"0"},{"question":"1"},{"question":"2"},{"question":"3"}]`
	for i := 0; i < 4; i++ {
		editor, field := newEditor(t, "faq", content)
		if err := editor.DeleteAt(i); err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
		var got []string
		for _, item := range decodeField(t, field) {
			got = append(got, item["question"].(string))
		}
		var want []string
		for j := 0; j < 4; j++ {
			if j != i {
				want = append(want, fmt.Sprint(j))
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("delete %d mismatch (-want +got):\n%s", i, diff)
		}
		for idx, block := range editor.View().Blocks {
			if block.Index != idx || block.Number != idx+1 {
				t.Fatalf("block %s has index %d number %d at position %d", block.ID, block.Index, block.Number, idx)
			}
		}
	}

	editor, _ := newEditor(t, "faq", content)
	if err := editor.DeleteAt(4); !errors.Is(err, records.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestEditor_StaleIDCannotHitNeighbour(t *testing.T) {
	editor, field := newEditor(t, "faq", `[{"question":"first"},{"question":"second"}]`)
	stale := editor.View().Blocks[0].Controls[0].Event

	if err := editor.Delete(stale.Target); err != nil {
		t.Fatalf("delete: %v", err)
	}
	before := field.Value()

	err := editor.Edit(stale.Target, stale.Attr, "overwritten")
	if !errors.Is(err, records.ErrUnknownRecord) {
		t.Fatalf("expected ErrUnknownRecord, got %v", err)
	}
	if field.Value() != before {
		t.Fatalf("stale edit changed the field: %s", field.Value())
	}
	if err := editor.Delete(stale.Target); !errors.Is(err, records.ErrUnknownRecord) {
		t.Fatalf("expected ErrUnknownRecord on second delete, got %v", err)
	}
}

func TestEditor_EditKeepsUnknownAttributes(t *testing.T) {
	editor, field := newEditor(t, "benefits", `[{"title":"A","description":"B","icon":"star"}]`)
	id := editor.View().Blocks[0].ID

	if err := editor.Edit(id, "title", "Faster onboarding"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	want := []map[string]any{{"title": "Faster onboarding", "description": "B", "icon": "star"}}
	if diff := cmp.Diff(want, decodeField(t, field)); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}

	if err := editor.Edit(id, "icon", "bolt"); !errors.Is(err, shape.ErrInvalidValue) {
		t.Fatalf("editing an undeclared attribute should fail, got %v", err)
	}
}

func TestEditor_RatingCoercion(t *testing.T) {
	editor, field := newEditor(t, "testimonials", `[{"name":"Ann","rating":3}]`)
	id := editor.View().Blocks[0].ID

	if err := editor.Edit(id, "rating", "7"); err != nil {
		t.Fatalf("edit rating: %v", err)
	}
	if got := decodeField(t, field)[0]["rating"]; fmt.Sprint(got) != "5" {
		t.Fatalf("expected clamped rating 5, got %v", got)
	}

	before := field.Value()
	if err := editor.Edit(id, "rating", "great"); !errors.Is(err, shape.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if field.Value() != before {
		t.Fatalf("rejected rating changed the field")
	}
}

func TestEditor_StoredRatingsKeptUntilEdited(t *testing.T) {
	editor, field := newEditor(t, "testimonials", `[{"name":"A","rating":"4"},{"name":"B","rating":9},{"name":"C","rating":0}]`)

	ratings := func() []any {
		var out []any
		for _, block := range editor.View().Blocks {
			for _, control := range block.Controls {
				if control.Name == "rating" {
					out = append(out, control.Value)
				}
			}
		}
		return out
	}
	if diff := cmp.Diff([]any{4, 5, 1}, ratings()); diff != "" {
		t.Fatalf("displayed ratings mismatch (-want +got):\n%s", diff)
	}

	if _, err := editor.Add(); err != nil {
		t.Fatalf("add: %v", err)
	}
	items := decodeField(t, field)
	var stored []string
	for _, item := range items[:3] {
		stored = append(stored, fmt.Sprint(item["rating"]))
	}
	if diff := cmp.Diff([]string{"4", "9", "0"}, stored); diff != "" {
		t.Fatalf("untouched ratings rewritten (-want +got):\n%s", diff)
	}
	if _, ok := items[0]["rating"].(string); !ok {
		t.Fatalf("string rating should stay a string, got %T", items[0]["rating"])
	}
}

func TestEditor_LenientDecode(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	cases := []struct {
		name    string
		content string
		logged  int
	}{
		{name: "empty", content: "", logged: 0},
		{name: "blank", content: "  \n", logged: 0},
		{name: "malformed", content: `[{"title":`, logged: 1},
		{name: "object", content: `{"title":"A"}`, logged: 1},
		{name: "scalars", content: `["A","B"]`, logged: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := logs.Len()
			editor, field := newEditor(t, "benefits", tc.content, records.WithLogger(logger))
			if editor.Len() != 0 {
				t.Fatalf("expected empty editor, got %d records", editor.Len())
			}
			if field.Value() != tc.content {
				t.Fatalf("initialize must not write the field")
			}
			if got := logs.Len() - start; got != tc.logged {
				t.Fatalf("expected %d warnings, got %d", tc.logged, got)
			}
			if _, err := editor.Add(); err != nil {
				t.Fatalf("add after lenient decode: %v", err)
			}
			if editor.Len() != 1 {
				t.Fatalf("expected one record after add")
			}
		})
	}
}

func TestEditor_View(t *testing.T) {
	editor, _ := newEditor(t, "testimonials", `[{"name":"Ann","content":"Great"}]`)
	section := editor.View()

	if section.Kind != view.SectionRecords || section.Field != "testimonials" {
		t.Fatalf("unexpected section header %+v", section)
	}
	if diff := cmp.Diff([]view.Button{{
		Label: "Add testimonial",
		Event: view.Event{Editor: "testimonials", Action: view.ActionAdd},
	}}, section.Actions); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}

	block := section.Blocks[0]
	if block.Title != "Testimonial 1" {
		t.Fatalf("unexpected block title %q", block.Title)
	}
	values := map[string]any{}
	kinds := map[string]view.ControlKind{}
	for _, control := range block.Controls {
		values[control.Name] = control.Value
		kinds[control.Name] = control.Kind
	}
	wantValues := map[string]any{"name": "Ann", "title": "", "content": "Great", "rating": 5, "image": ""}
	if diff := cmp.Diff(wantValues, values); diff != "" {
		t.Fatalf("control values mismatch (-want +got):\n%s", diff)
	}
	if kinds["rating"] != view.ControlRating || kinds["content"] != view.ControlTextArea || kinds["image"] != view.ControlImage {
		t.Fatalf("unexpected control kinds %v", kinds)
	}
}

func TestNew_RequiresField(t *testing.T) {
	if _, err := records.New(nil, mustShape(t, "faq")); !errors.Is(err, records.ErrNoField) {
		t.Fatalf("expected ErrNoField, got %v", err)
	}
}
