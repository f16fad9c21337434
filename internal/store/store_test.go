package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-courseform/internal/store"
	"github.com/goliatone/go-courseform/pkg/form"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestMigrate_Version(t *testing.T) {
	s := openStore(t)
	version, err := s.Version(context.Background())
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected schema version 1, got %d", version)
	}
}

func TestCreateProduct_LoadFields(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.CreateProduct(ctx, store.Product{
		Title: "Course bundle",
		Slug:  "bundle",
		Price: 49,
		Fields: map[string]string{
			"benefits":           `[{"title":"Fast"}]`,
			"product_comparison": `{"competitors":[],"features":[]}`,
			"usp":                "Only one",
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f, err := s.LoadFields(ctx, store.EntityProduct, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	benefits, ok := f.Field("benefits")
	if !ok || !benefits.Structured() {
		t.Fatalf("expected structured benefits field, got %+v", benefits)
	}
	if diff := cmp.Diff(`[{"title":"Fast"}]`, benefits.Value()); diff != "" {
		t.Fatalf("benefits mismatch (-want +got):\n%s", diff)
	}
	faq, ok := f.Field("faq")
	if !ok || faq.Value() != "" {
		t.Fatalf("NULL column should load as empty field, got %+v", faq)
	}
	usp, ok := f.Field("usp")
	if !ok || usp.Structured() || usp.Value() != "Only one" {
		t.Fatalf("unexpected usp field %+v", usp)
	}

	var structured []string
	for _, field := range f.StructuredFields() {
		structured = append(structured, field.Name())
	}
	if diff := cmp.Diff(store.StructuredColumns(store.EntityProduct), structured); diff != "" {
		t.Fatalf("structured columns mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFields(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.CreateCourse(ctx, store.Course{Title: "Go basics"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f := form.New()
	f.SetStructured("benefits_list", `[{"title":"Alias"}]`)
	f.SetStructured("faq_items", `[{"question":"Alias"}]`)
	f.SetStructured("faq", `[{"question":"Canonical"}]`)
	f.SetStructured("testimonials", "  ")
	f.Set("title", "Go fundamentals")
	f.Set("csrf_token", "ignored")

	if err := s.SaveFields(ctx, store.EntityCourse, id, f); err != nil {
		t.Fatalf("save: %v", err)
	}

	var row struct {
		Title        string  `db:"title"`
		Benefits     *string `db:"benefits"`
		FAQ          *string `db:"faq"`
		Testimonials *string `db:"testimonials"`
	}
	if err := s.DB().GetContext(ctx, &row, "SELECT title, benefits, faq, testimonials FROM courses WHERE id = ?", id); err != nil {
		t.Fatalf("select: %v", err)
	}
	if row.Title != "Go fundamentals" {
		t.Fatalf("title not saved: %q", row.Title)
	}
	if row.Benefits == nil || *row.Benefits != `[{"title":"Alias"}]` {
		t.Fatalf("alias should map onto benefits, got %v", row.Benefits)
	}
	if row.FAQ == nil || *row.FAQ != `[{"question":"Canonical"}]` {
		t.Fatalf("canonical name should win over alias, got %v", row.FAQ)
	}
	if row.Testimonials != nil {
		t.Fatalf("blank structured column should be NULL, got %q", *row.Testimonials)
	}
}

func TestStore_Errors(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, err := s.LoadFields(ctx, store.EntityProduct, 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on load, got %v", err)
	}

	f := form.New()
	f.SetStructured("benefits", "[]")
	if err := s.SaveFields(ctx, store.EntityProduct, 42, f); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on save, got %v", err)
	}

	id, err := s.CreateProduct(ctx, store.Product{Title: "P"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	empty := form.New()
	empty.Set("unknown", "x")
	if err := s.SaveFields(ctx, store.EntityProduct, id, empty); !errors.Is(err, store.ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}

	if _, err := s.LoadFields(ctx, store.Entity("videos"), 1); !errors.Is(err, store.ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
	if _, err := s.CreateCourse(ctx, store.Course{}); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestSchema_Uniqueness(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	db := s.DB()

	courseID, err := s.CreateCourse(ctx, store.Course{Title: "C"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	res, err := db.ExecContext(ctx, "INSERT INTO users (name, email, password_hash) VALUES ('U', 'u@example.com', 'x')")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	userID, _ := res.LastInsertId()

	cases := []struct {
		name  string
		query string
		args  []any
	}{
		{"enrollment", "INSERT INTO user_courses (user_id, course_id) VALUES (?, ?)", []any{userID, courseID}},
		{"certificate", "INSERT INTO certificates (user_id, course_id, certificate_id, file_path, issue_date) VALUES (?, ?, 'CERT', 'c.pdf', '2024-01-01')", []any{userID, courseID}},
		{"video order", "INSERT INTO videos (course_id, title, video_path, sequence_order) VALUES (?, 'V', 'v.mp4', 1)", []any{courseID}},
		{"quiz", "INSERT INTO quizzes (course_id, title) VALUES (?, 'Q')", []any{courseID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := db.ExecContext(ctx, tc.query, tc.args...); err != nil {
				t.Fatalf("first insert: %v", err)
			}
			if _, err := db.ExecContext(ctx, tc.query, tc.args...); err == nil {
				t.Fatal("expected uniqueness violation on second insert")
			}
		})
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO user_courses (user_id, course_id) VALUES (999, ?)", courseID); err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestListAndParseEntity(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	for _, title := range []string{"A", "B"} {
		if _, err := s.CreateProduct(ctx, store.Product{Title: title, Slug: "slug-" + title}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	got, err := s.List(ctx, store.EntityProduct)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []store.Listing{{ID: 1, Title: "A", Slug: "slug-A"}, {ID: 2, Title: "B", Slug: "slug-B"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}

	for raw, want := range map[string]store.Entity{"product": store.EntityProduct, "Courses": store.EntityCourse} {
		got, err := store.ParseEntity(raw)
		if err != nil || got != want {
			t.Fatalf("ParseEntity(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := store.ParseEntity("videos"); !errors.Is(err, store.ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}
