package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-courseform/pkg/render"
)

func TestMapErrorPayload(t *testing.T) {
	page := samplePage()

	payload := map[string][]string{
		"/faq/0/answer":               {"Answer is required"},
		"faq[0].question":             {"Too short", "Too short"},
		"faq_items":                   {"Invalid list"},
		"faq.7.answer":                {"Out of range"},
		"product_comparison/features": {"Need at least one feature"},
		"technical_specs":             {"Not an object"},
		"form":                        {"Form level error"},
		"unknown-field":               {"Should fall back to form errors"},
		"":                            {"Unscoped form error", " "},
	}

	mapped := render.MapErrorPayload(page, payload)

	wantFields := map[string][]string{
		"faq.0.answer":       {"Answer is required"},
		"faq.0.question":     {"Too short"},
		"faq_items":          {"Invalid list"},
		"faq":                {"Out of range"},
		"product_comparison": {"Need at least one feature"},
		"technical_specs":    {"Not an object"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
