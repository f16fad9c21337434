package landing_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/landing"
)

func TestFromForm(t *testing.T) {
	f := form.New()
	f.SetStructured("benefits_list", `[{"title":"Fast","description":"Ships today"}]`)
	f.SetStructured("testimonials", `[{"name":"Ana","content":"Great","rating":9},{"name":"Bo","content":"Ok","rating":"2"},{"name":"Cy"}]`)
	f.SetStructured("features", `[{"title":"Docs"}]`)
	f.SetStructured("product_comparison", `{"competitors":[{"name":"X"},{"name":"Y"}],"features":[
		{"name":"Support","our_value":true,"competitor_values":[true]},
		{"name":"SLA","our_value":"true","cell_type":"text","competitor_values":["24h",null]}
	]}`)
	f.SetStructured("technical_specs", `{"weight":"1kg"}`)

	got := landing.FromForm(f, nil)

	want := landing.Content{
		Benefits: []landing.Benefit{{Title: "Fast", Description: "Ships today"}},
		Testimonials: []landing.Testimonial{
			{Name: "Ana", Content: "Great", Rating: 5},
			{Name: "Bo", Content: "Ok", Rating: 2},
			{Name: "Cy", Rating: 5},
		},
		Features: []landing.Feature{{Title: "Docs", Icon: "check"}},
		Comparison: landing.Comparison{
			Competitors: []string{"X", "Y"},
			Rows: []landing.ComparisonRow{
				{Name: "Support", OurValue: true, Values: []any{true, false}},
				{Name: "SLA", OurValue: true, Text: true, Values: []any{"24h", ""}},
			},
		},
		Specs: map[string]any{"weight": "1kg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestFromForm_MalformedColumnsAreEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	f := form.New()
	f.SetStructured("faq", `[{"question":`)
	f.SetStructured("gallery_images", `{"url":"x"}`)
	f.SetStructured("before_after", "")
	f.SetStructured("product_comparison", `[1,2]`)

	got := landing.FromForm(f, zap.New(core))

	if diff := cmp.Diff(landing.Content{}, got); diff != "" {
		t.Fatalf("expected empty content (-want +got):\n%s", diff)
	}
	if logs.Len() != 3 {
		t.Fatalf("expected 3 warnings, got %d", logs.Len())
	}
}
